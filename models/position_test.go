package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestShortPosition_CoverPnL(t *testing.T) {
	tests := []struct {
		name         string
		position     ShortPosition
		currentPrice decimal.Decimal
		coverAmount  decimal.Decimal
		want         decimal.Decimal
	}{
		{
			name: "profit when price falls",
			position: ShortPosition{
				EntryPrice: decimal.NewFromInt(100),
				Amount:     decimal.NewFromInt(1),
			},
			currentPrice: decimal.NewFromInt(90),
			coverAmount:  decimal.NewFromInt(1),
			want:         decimal.NewFromInt(10),
		},
		{
			name: "loss when price rises",
			position: ShortPosition{
				EntryPrice: decimal.NewFromInt(100),
				Amount:     decimal.NewFromInt(1),
			},
			currentPrice: decimal.NewFromInt(120),
			coverAmount:  decimal.NewFromInt(1),
			want:         decimal.NewFromInt(-20),
		},
		{
			name: "partial cover scales by amount",
			position: ShortPosition{
				EntryPrice: decimal.NewFromInt(110),
				Amount:     decimal.NewFromInt(1),
			},
			currentPrice: decimal.NewFromInt(90),
			coverAmount:  decimal.NewFromFloat(0.5),
			want:         decimal.NewFromInt(10),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.position.CoverPnL(tt.currentPrice, tt.coverAmount)
			if !got.Equal(tt.want) {
				t.Errorf("CoverPnL() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShortPosition_MarginShare(t *testing.T) {
	pos := ShortPosition{
		Amount:       decimal.NewFromInt(2),
		MarginLocked: decimal.NewFromInt(100),
	}

	got := pos.MarginShare(decimal.NewFromFloat(0.5))
	if !got.Equal(decimal.NewFromInt(25)) {
		t.Errorf("MarginShare(0.5) = %v, want 25", got)
	}

	got = pos.MarginShare(pos.Amount)
	if !got.Equal(pos.MarginLocked) {
		t.Errorf("MarginShare(full) = %v, want %v", got, pos.MarginLocked)
	}
}

func TestLeveragedPosition_BorrowedPart(t *testing.T) {
	pos := LeveragedPosition{
		EntryPrice: decimal.NewFromInt(100),
		Leverage:   decimal.NewFromInt(2),
	}

	// 100 * 1 * (2-1)/2 = 50
	got := pos.BorrowedPart(decimal.NewFromInt(1))
	if !got.Equal(decimal.NewFromInt(50)) {
		t.Errorf("BorrowedPart(1) = %v, want 50", got)
	}

	// unleveraged position borrows nothing
	spot := LeveragedPosition{
		EntryPrice: decimal.NewFromInt(100),
		Leverage:   decimal.NewFromInt(1),
	}
	got = spot.BorrowedPart(decimal.NewFromInt(1))
	if !got.IsZero() {
		t.Errorf("BorrowedPart(1) at 1x = %v, want 0", got)
	}
}
