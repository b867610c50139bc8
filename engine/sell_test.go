package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradequest/models"
)

func TestSell_SpotFullAndPartial(t *testing.T) {
	e := newTestEngine(t)
	require.True(t, e.Buy("bitcoin", dec(100), dec(2), dec(1)))

	require.True(t, e.Sell("bitcoin", dec(110), dec(1), SellOptions{}))
	require.Len(t, e.state.Portfolio, 1)
	assert.True(t, e.state.Portfolio[0].Amount.Equal(dec(1)))
	assert.True(t, e.state.Balance.Equal(dec(9910)), "Balance = %s", e.state.Balance)

	// selling more than held caps at the holding and prunes it
	require.True(t, e.Sell("bitcoin", dec(110), dec(5), SellOptions{}))
	assert.Empty(t, e.state.Portfolio)
	assert.True(t, e.state.Balance.Equal(dec(10020)), "Balance = %s", e.state.Balance)
}

func TestSell_NothingHeldIsNoOp(t *testing.T) {
	e := newTestEngine(t)

	require.False(t, e.Sell("bitcoin", dec(100), dec(1), SellOptions{}))
	assert.True(t, e.state.Balance.Equal(models.StartingBalance))
	assert.Empty(t, e.state.ShortPositions, "a bare sell must never open a short")
	assert.Equal(t, 0, e.state.TradesToday)
}

func TestSell_RiskManagerSoftensLoss(t *testing.T) {
	e := newTestEngine(t, models.SkillRiskManager)
	require.True(t, e.Buy("bitcoin", dec(100), dec(1), dec(1)))
	require.True(t, e.state.Balance.Equal(dec(9900)))

	// avg 100, sell at 80: loss 20 reduced to 16, revenue 84
	require.True(t, e.Sell("bitcoin", dec(80), dec(1), SellOptions{}))
	assert.True(t, e.state.Balance.Equal(dec(9984)), "Balance = %s", e.state.Balance)
}

func TestSell_RiskManagerIgnoredOnProfit(t *testing.T) {
	e := newTestEngine(t, models.SkillRiskManager)
	require.True(t, e.Buy("bitcoin", dec(100), dec(1), dec(1)))

	require.True(t, e.Sell("bitcoin", dec(120), dec(1), SellOptions{}))
	assert.True(t, e.state.Balance.Equal(dec(10020)), "Balance = %s", e.state.Balance)
}

func TestSell_ShortRequiresSkill(t *testing.T) {
	e := newTestEngine(t)

	require.False(t, e.Sell("bitcoin", dec(100), dec(1), SellOptions{Short: true, Leverage: dec(1)}))
	assert.Empty(t, e.state.ShortPositions)
	assert.True(t, e.state.Balance.Equal(models.StartingBalance))
}

func TestSell_ShortLocksMargin(t *testing.T) {
	e := newTestEngine(t, models.SkillShortSelling)

	require.True(t, e.Sell("bitcoin", dec(100), dec(2), SellOptions{Short: true, Leverage: dec(2)}))

	require.Len(t, e.state.ShortPositions, 1)
	pos := e.state.ShortPositions[0]
	assert.True(t, pos.EntryPrice.Equal(dec(100)))
	assert.True(t, pos.Amount.Equal(dec(2)))
	// notional 200 at 2x margin
	assert.True(t, pos.MarginLocked.Equal(dec(100)), "MarginLocked = %s", pos.MarginLocked)
	assert.True(t, e.state.Balance.Equal(dec(9900)))
}

func TestSell_ShortInsufficientMargin(t *testing.T) {
	e := newTestEngine(t, models.SkillShortSelling)

	require.False(t, e.Sell("bitcoin", dec(20000), dec(1), SellOptions{Short: true, Leverage: dec(1)}))
	assert.Empty(t, e.state.ShortPositions)
	assert.True(t, e.state.Balance.Equal(models.StartingBalance))
}

func TestSell_LeveragedPartialClose(t *testing.T) {
	e := newTestEngine(t, models.SkillLeverageTrading)
	require.True(t, e.Buy("bitcoin", dec(100), dec(2), dec(2)))
	// notional 200: 100 cash down, 100 borrowed
	require.True(t, e.state.Balance.Equal(dec(9900)))
	require.True(t, e.state.Loan.Equal(dec(100)))
	pos := e.state.LeveragedPositions[0]

	require.True(t, e.Sell("bitcoin", dec(120), dec(1), SellOptions{PositionID: &pos.ID}))

	// half the position: borrowed part 50, equity 120-50=70
	assert.True(t, e.state.Balance.Equal(dec(9970)), "Balance = %s", e.state.Balance)
	assert.True(t, e.state.Loan.Equal(dec(50)), "Loan = %s", e.state.Loan)
	require.Len(t, e.state.LeveragedPositions, 1)
	assert.True(t, e.state.LeveragedPositions[0].Amount.Equal(dec(1)))
}

func TestSell_UnknownPositionIDIsNoOp(t *testing.T) {
	e := newTestEngine(t, models.SkillLeverageTrading)
	require.True(t, e.Buy("bitcoin", dec(100), dec(1), dec(2)))
	stray := models.NewLeveragedPosition("bitcoin", dec(1), dec(100), dec(2))

	require.False(t, e.Sell("bitcoin", dec(120), dec(1), SellOptions{PositionID: &stray.ID}))
	require.Len(t, e.state.LeveragedPositions, 1)
}

func TestSell_FallsBackToOldestLeveraged(t *testing.T) {
	e := newTestEngine(t, models.SkillLeverageTrading)
	older := models.NewLeveragedPosition("bitcoin", dec(1), dec(100), dec(2))
	older.CreatedAt = testClock().Add(-2 * time.Hour)
	newer := models.NewLeveragedPosition("bitcoin", dec(1), dec(200), dec(2))
	newer.CreatedAt = testClock().Add(-1 * time.Hour)
	// insert newest first to prove ordering is by CreatedAt, not slice position
	e.state.LeveragedPositions = []models.LeveragedPosition{newer, older}
	e.state.Loan = dec(150)

	require.True(t, e.Sell("bitcoin", dec(120), dec(1), SellOptions{}))

	require.Len(t, e.state.LeveragedPositions, 1)
	assert.Equal(t, newer.ID, e.state.LeveragedPositions[0].ID)
	// older closed: borrowed 50, equity 70, loan 150-50
	assert.True(t, e.state.Balance.Equal(dec(10070)), "Balance = %s", e.state.Balance)
	assert.True(t, e.state.Loan.Equal(dec(100)))
}

func TestSell_SpotPreferredOverLeveraged(t *testing.T) {
	e := newTestEngine(t, models.SkillLeverageTrading)
	require.True(t, e.Buy("bitcoin", dec(100), dec(1), dec(1)))
	require.True(t, e.Buy("bitcoin", dec(100), dec(1), dec(2)))

	require.True(t, e.Sell("bitcoin", dec(110), dec(1), SellOptions{}))

	assert.Empty(t, e.state.Portfolio, "the spot holding is consumed first")
	require.Len(t, e.state.LeveragedPositions, 1)
}
