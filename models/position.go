package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LeveragedPosition is a margin long opened with borrowed capital. Leverage is
// fixed at open time and is not renegotiated on partial close.
type LeveragedPosition struct {
	ID         uuid.UUID       `json:"id"`
	AssetID    string          `json:"asset_id"`
	Amount     decimal.Decimal `json:"amount"`
	EntryPrice decimal.Decimal `json:"entry_price"`
	Leverage   decimal.Decimal `json:"leverage"`
	CreatedAt  time.Time       `json:"created_at"`
}

// NewLeveragedPosition opens a margin long position.
func NewLeveragedPosition(assetID string, amount, entryPrice, leverage decimal.Decimal) LeveragedPosition {
	return LeveragedPosition{
		ID:         uuid.New(),
		AssetID:    assetID,
		Amount:     amount,
		EntryPrice: entryPrice,
		Leverage:   leverage,
		CreatedAt:  time.Now(),
	}
}

// BorrowedPart returns the loan principal backing sellAmount units of the position:
// entryPrice * sellAmount * (leverage-1) / leverage.
func (p *LeveragedPosition) BorrowedPart(sellAmount decimal.Decimal) decimal.Decimal {
	return p.EntryPrice.Mul(sellAmount).
		Mul(p.Leverage.Sub(decimal.NewFromInt(1))).
		Div(p.Leverage)
}

// ShortPosition is a bet that price will fall. MarginLocked is the cash reserved
// from balance at open time and is released proportionally as the short is covered.
type ShortPosition struct {
	ID           uuid.UUID       `json:"id"`
	AssetID      string          `json:"asset_id"`
	Amount       decimal.Decimal `json:"amount"`
	EntryPrice   decimal.Decimal `json:"entry_price"`
	Leverage     decimal.Decimal `json:"leverage"`
	MarginLocked decimal.Decimal `json:"margin_locked"`
	CreatedAt    time.Time       `json:"created_at"`
}

// NewShortPosition opens a short with margin reserved from balance.
func NewShortPosition(assetID string, amount, entryPrice, leverage, margin decimal.Decimal) ShortPosition {
	return ShortPosition{
		ID:           uuid.New(),
		AssetID:      assetID,
		Amount:       amount,
		EntryPrice:   entryPrice,
		Leverage:     leverage,
		MarginLocked: margin,
		CreatedAt:    time.Now(),
	}
}

// CoverPnL returns the realized profit or loss for covering coverAmount units
// at currentPrice: (entry - current) * amount.
func (p *ShortPosition) CoverPnL(currentPrice, coverAmount decimal.Decimal) decimal.Decimal {
	return p.EntryPrice.Sub(currentPrice).Mul(coverAmount)
}

// MarginShare returns the slice of locked margin released when coverAmount
// units of the position are covered.
func (p *ShortPosition) MarginShare(coverAmount decimal.Decimal) decimal.Decimal {
	return coverAmount.Div(p.Amount).Mul(p.MarginLocked)
}
