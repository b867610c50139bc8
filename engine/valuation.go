package engine

import (
	"github.com/shopspring/decimal"

	"tradequest/models"
)

var diversificationBonus = decimal.NewFromFloat(1.05)

// diversificationThreshold is the distinct spot asset count that earns the
// portfolio-manager valuation bonus.
const diversificationThreshold = 5

// Valuation is a read-only summary of the ledger at current prices. It never
// feeds back into the ledger; the diversification bonus exists only here.
type Valuation struct {
	Cash           decimal.Decimal `json:"cash"`
	SpotValue      decimal.Decimal `json:"spot_value"`
	LeveragedValue decimal.Decimal `json:"leveraged_value"`
	ShortValue     decimal.Decimal `json:"short_value"`
	Loan           decimal.Decimal `json:"loan"`
	NetWorth       decimal.Decimal `json:"net_worth"`
	BonusApplied   bool            `json:"bonus_applied"`
}

// Valuate prices the ledger with the given quotes. Assets without a quote
// contribute their cost basis for spot and entry price for positions.
func (e *Engine) Valuate(prices map[string]decimal.Decimal) Valuation {
	e.mu.Lock()
	defer e.mu.Unlock()

	priceOf := func(assetID string, fallback decimal.Decimal) decimal.Decimal {
		if p, ok := prices[assetID]; ok && p.IsPositive() {
			return p
		}
		return fallback
	}

	spot := decimal.Zero
	for _, item := range e.state.Portfolio {
		spot = spot.Add(priceOf(item.AssetID, item.AvgPrice).Mul(item.Amount))
	}

	bonus := e.state.Skills.Has(models.SkillPortfolioManager) &&
		e.state.DistinctAssets() >= diversificationThreshold
	if bonus {
		spot = spot.Mul(diversificationBonus)
	}

	// Leveraged equity is current value minus the borrowed principal, so the
	// outstanding loan is not subtracted again below.
	leveraged := decimal.Zero
	for i := range e.state.LeveragedPositions {
		pos := &e.state.LeveragedPositions[i]
		current := priceOf(pos.AssetID, pos.EntryPrice)
		leveraged = leveraged.Add(current.Mul(pos.Amount).Sub(pos.BorrowedPart(pos.Amount)))
	}

	// Short equity is the locked margin plus unrealized PnL at current price.
	short := decimal.Zero
	for i := range e.state.ShortPositions {
		pos := &e.state.ShortPositions[i]
		current := priceOf(pos.AssetID, pos.EntryPrice)
		short = short.Add(pos.MarginLocked).Add(pos.CoverPnL(current, pos.Amount))
	}

	return Valuation{
		Cash:           e.state.Balance,
		SpotValue:      spot,
		LeveragedValue: leveraged,
		ShortValue:     short,
		Loan:           e.state.Loan,
		NetWorth:       e.state.Balance.Add(spot).Add(leveraged).Add(short),
		BonusApplied:   bonus,
	}
}
