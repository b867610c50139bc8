package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is one asset snapshot from the market-data provider.
type Quote struct {
	AssetID   string          `json:"id"`
	Symbol    string          `json:"symbol"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Change24h float64         `json:"change_24h"`
	UpdatedAt time.Time       `json:"updated_at"`
}
