package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is a conditional sell order. Orders are independent of positions: they
// fire against price, not against a specific position's remaining size.
type Order struct {
	ID           uuid.UUID       `json:"id"`
	AssetID      string          `json:"asset_id"`
	Type         OrderType       `json:"type"`
	TriggerPrice decimal.Decimal `json:"trigger_price"`
	Amount       decimal.Decimal `json:"amount"`
	CreatedAt    time.Time       `json:"created_at"`
}

type OrderType string

const (
	OrderTypeStopLoss   OrderType = "stop_loss"
	OrderTypeTakeProfit OrderType = "take_profit"
)

// NewOrder creates an open conditional order.
func NewOrder(assetID string, orderType OrderType, triggerPrice, amount decimal.Decimal) Order {
	return Order{
		ID:           uuid.New(),
		AssetID:      assetID,
		Type:         orderType,
		TriggerPrice: triggerPrice,
		Amount:       amount,
		CreatedAt:    time.Now(),
	}
}

// Triggered reports whether the order fires at the given price.
func (o *Order) Triggered(currentPrice decimal.Decimal) bool {
	switch o.Type {
	case OrderTypeStopLoss:
		return currentPrice.LessThanOrEqual(o.TriggerPrice)
	case OrderTypeTakeProfit:
		return currentPrice.GreaterThanOrEqual(o.TriggerPrice)
	default:
		return false
	}
}
