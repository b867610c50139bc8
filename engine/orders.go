package engine

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tradequest/models"
	"tradequest/observability"
)

// CreateOrder places a conditional sell order. The whole conditional-order
// feature is gated by the stop-loss-master skill.
func (e *Engine) CreateOrder(assetID string, orderType models.OrderType, triggerPrice, amount decimal.Decimal) (*models.Order, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.Skills.Has(models.SkillStopLossMaster) {
		observability.Warn("order rejected: conditional orders not unlocked", "user", e.username, "asset", assetID)
		return nil, false
	}
	if !triggerPrice.IsPositive() || !amount.IsPositive() {
		return nil, false
	}
	if orderType != models.OrderTypeStopLoss && orderType != models.OrderTypeTakeProfit {
		return nil, false
	}

	order := models.NewOrder(assetID, orderType, triggerPrice, amount)
	e.state.Orders = append(e.state.Orders, order)
	e.requestSync()
	return &order, true
}

// CancelOrder removes an open order.
func (e *Engine) CancelOrder(id uuid.UUID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	kept := e.state.Orders[:0]
	removed := false
	for _, o := range e.state.Orders {
		if o.ID == id {
			removed = true
			continue
		}
		kept = append(kept, o)
	}
	e.state.Orders = kept
	if removed {
		e.requestSync()
	}
	return removed
}

// CheckOrders evaluates all open orders on an asset against the current price
// and executes the triggered ones as normal auto-detect sells. Called on every
// price tick for every asset that updated. Orders are binary: open until
// triggered or cancelled, then gone. A removed order can never re-fire.
//
// When the stop-loss-master skill is disabled the whole pass is skipped and
// existing orders stay dormant.
func (e *Engine) CheckOrders(assetID string, currentPrice decimal.Decimal) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.Skills.Has(models.SkillStopLossMaster) {
		return 0
	}

	var triggered []models.Order
	kept := e.state.Orders[:0]
	for _, o := range e.state.Orders {
		if o.AssetID == assetID && o.Triggered(currentPrice) {
			triggered = append(triggered, o)
			continue
		}
		kept = append(kept, o)
	}
	e.state.Orders = kept

	for _, o := range triggered {
		e.sellLocked(o.AssetID, currentPrice, o.Amount, SellOptions{})
		observability.GetMetrics().RecordOrderTriggered(string(o.Type), o.AssetID)
		observability.Info("conditional order triggered",
			"user", e.username, "asset", o.AssetID,
			"type", string(o.Type), "price", currentPrice.String())
	}
	if len(triggered) > 0 {
		e.requestSync()
	}
	return len(triggered)
}
