package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradequest/models"
)

func TestBuy_SpotWeightedAverage(t *testing.T) {
	e := newTestEngine(t)

	require.True(t, e.Buy("bitcoin", dec(100), dec(1), dec(1)))
	require.True(t, e.Buy("bitcoin", dec(200), dec(1), dec(1)))

	require.Len(t, e.state.Portfolio, 1)
	holding := e.state.Portfolio[0]
	assert.True(t, holding.Amount.Equal(dec(2)))
	assert.True(t, holding.AvgPrice.Equal(dec(150)), "AvgPrice = %s", holding.AvgPrice)
	assert.True(t, e.state.Balance.Equal(dec(9700)))
}

func TestBuy_RejectsNonPositiveInputs(t *testing.T) {
	e := newTestEngine(t)

	assert.False(t, e.Buy("bitcoin", dec(0), dec(1), dec(1)))
	assert.False(t, e.Buy("bitcoin", dec(100), dec(0), dec(1)))
	assert.False(t, e.Buy("bitcoin", dec(100), dec(-1), dec(1)))
	assert.True(t, e.state.Balance.Equal(models.StartingBalance))
	assert.Empty(t, e.state.Portfolio)
}

func TestBuy_InsufficientBalanceIsNoOp(t *testing.T) {
	e := newTestEngine(t)

	require.False(t, e.Buy("bitcoin", dec(20000), dec(1), dec(1)))
	assert.True(t, e.state.Balance.Equal(models.StartingBalance))
	assert.Empty(t, e.state.Portfolio)
	assert.Equal(t, 0, e.state.TradesToday)
}

func TestBuy_LeverageRequiresSkill(t *testing.T) {
	e := newTestEngine(t)

	require.False(t, e.Buy("bitcoin", dec(100), dec(1), dec(2)))
	assert.Empty(t, e.state.LeveragedPositions)
	assert.True(t, e.state.Balance.Equal(models.StartingBalance))
}

func TestBuy_LeveragedLoanAccounting(t *testing.T) {
	e := newTestEngine(t, models.SkillLeverageTrading)

	require.True(t, e.Buy("bitcoin", dec(100), dec(1), dec(2)))

	require.Len(t, e.state.LeveragedPositions, 1)
	pos := e.state.LeveragedPositions[0]
	assert.True(t, pos.EntryPrice.Equal(dec(100)))
	assert.True(t, pos.Leverage.Equal(dec(2)))
	// 2x on a 100 notional: 50 cash down, 50 borrowed
	assert.True(t, e.state.Balance.Equal(dec(9950)), "Balance = %s", e.state.Balance)
	assert.True(t, e.state.Loan.Equal(dec(50)), "Loan = %s", e.state.Loan)

	// full close at 120 returns equity 120-50=70 and retires the loan
	require.True(t, e.Sell("bitcoin", dec(120), dec(1), SellOptions{PositionID: &pos.ID}))
	assert.True(t, e.state.Balance.Equal(dec(10020)), "Balance = %s", e.state.Balance)
	assert.True(t, e.state.Loan.IsZero())
	assert.Empty(t, e.state.LeveragedPositions)
}

func TestBuy_AutoCoverFIFO(t *testing.T) {
	e := newTestEngine(t, models.SkillShortSelling)

	// two shorts, oldest first: entry 100 then entry 110, one unit each at 1x
	require.True(t, e.Sell("bitcoin", dec(100), dec(1), SellOptions{Short: true, Leverage: dec(1)}))
	require.True(t, e.Sell("bitcoin", dec(110), dec(1), SellOptions{Short: true, Leverage: dec(1)}))
	require.True(t, e.state.Balance.Equal(dec(9790)), "Balance = %s", e.state.Balance)

	// buying 1.5 at 90 covers the first short fully and half of the second
	require.True(t, e.Buy("bitcoin", dec(90), dec(1.5), dec(1)))

	require.Len(t, e.state.ShortPositions, 1)
	left := e.state.ShortPositions[0]
	assert.True(t, left.EntryPrice.Equal(dec(110)))
	assert.True(t, left.Amount.Equal(dec(0.5)), "Amount = %s", left.Amount)
	assert.True(t, left.MarginLocked.Equal(dec(55)), "MarginLocked = %s", left.MarginLocked)

	// first short: pnl 10 + margin 100; second: pnl 10 + margin 55
	assert.True(t, e.state.Balance.Equal(dec(9965)), "Balance = %s", e.state.Balance)
	// nothing left over, so no long was opened
	assert.Empty(t, e.state.Portfolio)
}

func TestBuy_AutoCoverRemainderOpensLong(t *testing.T) {
	e := newTestEngine(t, models.SkillShortSelling)

	require.True(t, e.Sell("bitcoin", dec(100), dec(1), SellOptions{Short: true, Leverage: dec(1)}))
	require.True(t, e.Buy("bitcoin", dec(90), dec(1.5), dec(1)))

	assert.Empty(t, e.state.ShortPositions)
	require.Len(t, e.state.Portfolio, 1)
	holding := e.state.Portfolio[0]
	assert.True(t, holding.Amount.Equal(dec(0.5)))
	assert.True(t, holding.AvgPrice.Equal(dec(90)))
	// 10000 - 100 margin + (10 pnl + 100 margin) - 45 spot cost
	assert.True(t, e.state.Balance.Equal(dec(9965)), "Balance = %s", e.state.Balance)
}

func TestBuy_AutoCoverLeavesOtherAssetsAlone(t *testing.T) {
	e := newTestEngine(t, models.SkillShortSelling)

	require.True(t, e.Sell("ethereum", dec(100), dec(1), SellOptions{Short: true, Leverage: dec(1)}))
	require.True(t, e.Buy("bitcoin", dec(50), dec(1), dec(1)))

	require.Len(t, e.state.ShortPositions, 1)
	assert.Equal(t, "ethereum", e.state.ShortPositions[0].AssetID)
	require.Len(t, e.state.Portfolio, 1)
	assert.Equal(t, "bitcoin", e.state.Portfolio[0].AssetID)
}

func TestBuy_BalanceNeverNegative(t *testing.T) {
	e := newTestEngine(t, models.SkillLeverageTrading, models.SkillShortSelling)

	e.Buy("bitcoin", dec(3000), dec(3), dec(1))
	e.Buy("ethereum", dec(500), dec(4), dec(2))
	e.Sell("solana", dec(100), dec(5), SellOptions{Short: true, Leverage: dec(1)})
	e.Buy("cardano", dec(9999), dec(2), dec(1))
	e.Sell("bitcoin", dec(2000), dec(10), SellOptions{})

	assert.False(t, e.state.Balance.IsNegative(), "Balance = %s", e.state.Balance)
}
