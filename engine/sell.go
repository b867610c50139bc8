package engine

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tradequest/models"
	"tradequest/observability"
)

// SellOptions selects the sell path. Zero value is a normal auto-detect sell.
type SellOptions struct {
	// PositionID closes (part of) a specific leveraged position.
	PositionID *uuid.UUID
	// Short opens a short position instead of selling holdings.
	Short bool
	// Leverage applies to short opens only. Values below 1 are treated as 1.
	Leverage decimal.Decimal
}

var riskReductionFactor = decimal.NewFromFloat(0.8)

// Sell disposes of amount units of an asset at price. Without options it sells
// spot holdings first, then falls back to the oldest leveraged position, and
// is a silent no-op when the player holds nothing. Returns true if the ledger
// was mutated.
func (e *Engine) Sell(assetID string, price, amount decimal.Decimal, opts SellOptions) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sellLocked(assetID, price, amount, opts)
}

func (e *Engine) sellLocked(assetID string, price, amount decimal.Decimal, opts SellOptions) bool {
	if !amount.IsPositive() || !price.IsPositive() {
		return false
	}
	if !e.canTrade() {
		observability.Warn("sell rejected: daily trade limit reached", "user", e.username, "asset", assetID)
		observability.GetMetrics().RecordTradeRejected("daily_limit")
		return false
	}

	if opts.Short {
		return e.openShort(assetID, price, amount, opts.Leverage)
	}
	if opts.PositionID != nil {
		return e.closeLeveraged(*opts.PositionID, price, amount)
	}

	// Auto-detect: spot holdings first.
	if holding := e.state.FindHolding(assetID); holding != nil && holding.Amount.IsPositive() {
		return e.sellSpot(holding, price, amount)
	}

	// Fall back to the oldest leveraged position on this asset.
	if pos := e.oldestLeveraged(assetID); pos != nil {
		return e.closeLeveraged(pos.ID, price, amount)
	}

	// Nothing to sell. A bare sell never opens a short.
	return false
}

func (e *Engine) openShort(assetID string, price, amount, leverage decimal.Decimal) bool {
	if !e.state.Skills.Has(models.SkillShortSelling) {
		observability.Warn("short rejected: short selling not unlocked", "user", e.username, "asset", assetID)
		observability.GetMetrics().RecordTradeRejected("skill_locked")
		return false
	}
	if leverage.LessThan(one) {
		leverage = one
	}

	margin := price.Mul(amount).Div(leverage)
	if e.state.Balance.LessThan(margin) {
		observability.Warn("short rejected: insufficient margin",
			"user", e.username, "asset", assetID,
			"required", margin.String(), "balance", e.state.Balance.String())
		observability.GetMetrics().RecordTradeRejected("insufficient_margin")
		return false
	}

	e.state.ShortPositions = append(e.state.ShortPositions,
		models.NewShortPosition(assetID, amount, price, leverage, margin))
	e.state.Balance = e.state.Balance.Sub(margin)
	e.incrementTrades()
	observability.GetMetrics().RecordTrade("short", assetID)
	e.requestSync()
	return true
}

func (e *Engine) sellSpot(holding *models.PortfolioItem, price, amount decimal.Decimal) bool {
	soldAmount := decimal.Min(amount, holding.Amount)

	revenue := price.Mul(soldAmount)
	if e.state.Skills.Has(models.SkillRiskManager) && price.LessThan(holding.AvgPrice) {
		// Losing sell with the risk manager active: the loss shrinks by 20%.
		reducedLoss := holding.AvgPrice.Sub(price).Mul(soldAmount).Mul(riskReductionFactor)
		revenue = holding.AvgPrice.Mul(soldAmount).Sub(reducedLoss)
	}

	assetID := holding.AssetID
	e.state.Balance = e.state.Balance.Add(revenue)
	holding.Amount = holding.Amount.Sub(soldAmount)
	if !holding.Amount.IsPositive() {
		e.pruneHolding(assetID)
	}
	e.incrementTrades()
	observability.GetMetrics().RecordTrade("sell", assetID)
	e.requestSync()
	return true
}

func (e *Engine) closeLeveraged(id uuid.UUID, price, amount decimal.Decimal) bool {
	idx := -1
	for i := range e.state.LeveragedPositions {
		if e.state.LeveragedPositions[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		observability.Warn("sell rejected: unknown leveraged position", "user", e.username, "position", id.String())
		return false
	}

	pos := &e.state.LeveragedPositions[idx]
	sellAmount := decimal.Min(amount, pos.Amount)
	borrowedPart := pos.BorrowedPart(sellAmount)
	equity := price.Mul(sellAmount).Sub(borrowedPart)
	assetID := pos.AssetID

	e.state.Balance = e.state.Balance.Add(equity)
	e.state.Loan = decimal.Max(decimal.Zero, e.state.Loan.Sub(borrowedPart))

	if sellAmount.Equal(pos.Amount) {
		e.state.LeveragedPositions = append(
			e.state.LeveragedPositions[:idx],
			e.state.LeveragedPositions[idx+1:]...)
	} else {
		pos.Amount = pos.Amount.Sub(sellAmount)
	}

	e.incrementTrades()
	observability.GetMetrics().RecordTrade("close_leveraged", assetID)
	e.requestSync()
	return true
}

// oldestLeveraged returns the earliest-opened leveraged position on an asset.
// FIFO is explicit by creation time rather than relying on slice order
// surviving partial-close rewrites.
func (e *Engine) oldestLeveraged(assetID string) *models.LeveragedPosition {
	var candidates []*models.LeveragedPosition
	for i := range e.state.LeveragedPositions {
		if e.state.LeveragedPositions[i].AssetID == assetID {
			candidates = append(candidates, &e.state.LeveragedPositions[i])
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].CreatedAt.Before(candidates[j].CreatedAt)
	})
	return candidates[0]
}

func (e *Engine) pruneHolding(assetID string) {
	kept := e.state.Portfolio[:0]
	for _, item := range e.state.Portfolio {
		if item.AssetID != assetID {
			kept = append(kept, item)
		}
	}
	e.state.Portfolio = kept
}
