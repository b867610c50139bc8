package engine

import (
	"github.com/shopspring/decimal"

	"tradequest/models"
	"tradequest/observability"
)

var one = decimal.NewFromInt(1)

// Buy purchases amount units of an asset at price. Leverage of 1 buys spot;
// higher leverage opens an independent margin position and requires the
// leverage-trading skill. Open shorts on the asset are covered first, oldest
// first, before any long is opened. Returns true if the ledger was mutated.
func (e *Engine) Buy(assetID string, price, amount, leverage decimal.Decimal) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buyLocked(assetID, price, amount, leverage)
}

func (e *Engine) buyLocked(assetID string, price, amount, leverage decimal.Decimal) bool {
	if !amount.IsPositive() || !price.IsPositive() {
		return false
	}
	if leverage.GreaterThan(one) && !e.state.Skills.Has(models.SkillLeverageTrading) {
		observability.Warn("buy rejected: leverage trading not unlocked", "user", e.username, "asset", assetID)
		observability.GetMetrics().RecordTradeRejected("skill_locked")
		return false
	}
	if !e.canTrade() {
		observability.Warn("buy rejected: daily trade limit reached", "user", e.username, "asset", assetID)
		observability.GetMetrics().RecordTradeRejected("daily_limit")
		return false
	}

	// Drain open shorts on this asset before opening any long. Each covered
	// slice realizes PnL against its own entry price and releases its share
	// of the locked margin.
	remaining := amount
	covered := false
	kept := e.state.ShortPositions[:0]
	for i := range e.state.ShortPositions {
		pos := e.state.ShortPositions[i]
		if pos.AssetID != assetID || !remaining.IsPositive() {
			kept = append(kept, pos)
			continue
		}

		coverAmount := decimal.Min(remaining, pos.Amount)
		pnl := pos.CoverPnL(price, coverAmount)
		marginReturned := pos.MarginShare(coverAmount)
		e.state.Balance = e.state.Balance.Add(pnl).Add(marginReturned)
		remaining = remaining.Sub(coverAmount)
		covered = true

		if coverAmount.Equal(pos.Amount) {
			continue // fully covered, drop the position
		}
		pos.Amount = pos.Amount.Sub(coverAmount)
		pos.MarginLocked = pos.MarginLocked.Sub(marginReturned)
		kept = append(kept, pos)
	}

	if covered {
		e.state.ShortPositions = kept
		e.incrementTrades()
		if remaining.IsPositive() {
			// Leftover buys a long at the original leverage. This is its own
			// sub-operation: it re-checks the cap and counts its own trade.
			e.openLong(assetID, price, remaining, leverage)
		}
		observability.GetMetrics().RecordTrade("cover", assetID)
		e.requestSync()
		return true
	}

	if !e.openLong(assetID, price, amount, leverage) {
		return false
	}
	observability.GetMetrics().RecordTrade("buy", assetID)
	e.requestSync()
	return true
}

// openLong opens or adds to a long position. Spot buys merge into the
// weighted-average holding; leveraged buys create an independent position and
// borrow the uncovered part.
func (e *Engine) openLong(assetID string, price, amount, leverage decimal.Decimal) bool {
	if !e.canTrade() {
		observability.Warn("buy rejected: daily trade limit reached", "user", e.username, "asset", assetID)
		return false
	}

	requiredCash := price.Mul(amount).Div(leverage)
	if e.state.Balance.LessThan(requiredCash) {
		observability.Warn("buy rejected: insufficient balance",
			"user", e.username, "asset", assetID,
			"required", requiredCash.String(), "balance", e.state.Balance.String())
		observability.GetMetrics().RecordTradeRejected("insufficient_balance")
		return false
	}

	if leverage.GreaterThan(one) {
		e.state.LeveragedPositions = append(e.state.LeveragedPositions,
			models.NewLeveragedPosition(assetID, amount, price, leverage))
		e.state.Balance = e.state.Balance.Sub(requiredCash)
		e.state.Loan = e.state.Loan.Add(price.Mul(amount).Sub(requiredCash))
		e.incrementTrades()
		return true
	}

	if holding := e.state.FindHolding(assetID); holding != nil {
		newAmount := holding.Amount.Add(amount)
		holding.AvgPrice = holding.AvgPrice.Mul(holding.Amount).
			Add(price.Mul(amount)).
			Div(newAmount)
		holding.Amount = newAmount
	} else {
		e.state.Portfolio = append(e.state.Portfolio, models.PortfolioItem{
			AssetID:  assetID,
			Amount:   amount,
			AvgPrice: price,
		})
	}
	e.state.Balance = e.state.Balance.Sub(requiredCash)
	e.incrementTrades()
	return true
}
