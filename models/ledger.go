package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ledger is the single source of truth for one player's simulated account.
// All mutation goes through the engine's command methods; nothing else writes it.
type Ledger struct {
	Balance            decimal.Decimal     `json:"balance"`
	Loan               decimal.Decimal     `json:"loan"`
	Portfolio          []PortfolioItem     `json:"portfolio"`
	LeveragedPositions []LeveragedPosition `json:"leveraged_positions"`
	ShortPositions     []ShortPosition     `json:"short_positions"`
	Orders             []Order             `json:"orders"`
	Skills             Skills              `json:"skills"`
	SkillPoints        int                 `json:"skill_points"`
	TradesToday        int                 `json:"trades_today"`
	LastTradeDate      string              `json:"last_trade_date"`
	LastLogin          time.Time           `json:"last_login"`
}

// PortfolioItem is an unleveraged spot holding tracked by weighted-average cost.
// At most one entry exists per asset; zero-amount entries are pruned.
type PortfolioItem struct {
	AssetID  string          `json:"asset_id"`
	Amount   decimal.Decimal `json:"amount"`
	AvgPrice decimal.Decimal `json:"avg_price"`
}

// StartingBalance is the cash a fresh ledger begins with.
var StartingBalance = decimal.NewFromInt(10000)

// DailyTradeLimit caps trades per calendar day unless the day-trader skill is unlocked.
const DailyTradeLimit = 50

// NewLedger returns a fresh ledger for a new session.
func NewLedger() *Ledger {
	return &Ledger{
		Balance:            StartingBalance,
		Loan:               decimal.Zero,
		Portfolio:          []PortfolioItem{},
		LeveragedPositions: []LeveragedPosition{},
		ShortPositions:     []ShortPosition{},
		Orders:             []Order{},
		Skills:             Skills{},
		LastLogin:          time.Now(),
	}
}

// Clone returns a deep copy safe to hand to the sync worker while the
// original keeps mutating.
func (l *Ledger) Clone() *Ledger {
	c := *l
	c.Portfolio = append([]PortfolioItem(nil), l.Portfolio...)
	c.LeveragedPositions = append([]LeveragedPosition(nil), l.LeveragedPositions...)
	c.ShortPositions = append([]ShortPosition(nil), l.ShortPositions...)
	c.Orders = append([]Order(nil), l.Orders...)
	c.Skills = make(Skills, len(l.Skills))
	for k, v := range l.Skills {
		c.Skills[k] = v
	}
	return &c
}

// FindHolding returns the spot holding for an asset, or nil.
func (l *Ledger) FindHolding(assetID string) *PortfolioItem {
	for i := range l.Portfolio {
		if l.Portfolio[i].AssetID == assetID {
			return &l.Portfolio[i]
		}
	}
	return nil
}

// DistinctAssets counts distinct spot holdings with a positive amount.
func (l *Ledger) DistinctAssets() int {
	n := 0
	for i := range l.Portfolio {
		if l.Portfolio[i].Amount.IsPositive() {
			n++
		}
	}
	return n
}
