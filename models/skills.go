package models

// SkillID names one of the fixed capability flags.
type SkillID string

const (
	SkillLeverageTrading    SkillID = "leverage_trading"
	SkillShortSelling       SkillID = "short_selling"
	SkillStopLossMaster     SkillID = "stop_loss_master"
	SkillDayTrader          SkillID = "day_trader"
	SkillRiskManager        SkillID = "risk_manager"
	SkillPortfolioManager   SkillID = "portfolio_manager"
	SkillChartReading       SkillID = "chart_reading"
	SkillNewsTrader         SkillID = "news_trader"
	SkillTaxOptimizer       SkillID = "tax_optimizer"
	SkillGlobalMarkets      SkillID = "global_markets"
	SkillDividendCollector  SkillID = "dividend_collector"
)

// Skills holds the unlocked capability flags for a player.
type Skills map[SkillID]bool

// Has reports whether a skill is unlocked.
func (s Skills) Has(id SkillID) bool {
	return s[id]
}

// SkillInfo describes one entry of the skill tree.
type SkillInfo struct {
	ID   SkillID `json:"id"`
	Name string  `json:"name"`
	Cost int     `json:"cost"`
}

// SkillCatalog is the fixed 11-entry skill tree with unlock costs in skill points.
// Order matters for display; lookups go through SkillByID.
var SkillCatalog = []SkillInfo{
	{ID: SkillChartReading, Name: "Chart Reading", Cost: 1},
	{ID: SkillNewsTrader, Name: "News Trader", Cost: 1},
	{ID: SkillDividendCollector, Name: "Dividend Collector", Cost: 1},
	{ID: SkillStopLossMaster, Name: "Stop-Loss Master", Cost: 2},
	{ID: SkillPortfolioManager, Name: "Portfolio Manager", Cost: 2},
	{ID: SkillTaxOptimizer, Name: "Tax Optimizer", Cost: 2},
	{ID: SkillGlobalMarkets, Name: "Global Markets", Cost: 2},
	{ID: SkillRiskManager, Name: "Risk Manager", Cost: 3},
	{ID: SkillLeverageTrading, Name: "Leverage Trading", Cost: 3},
	{ID: SkillShortSelling, Name: "Short Selling", Cost: 3},
	{ID: SkillDayTrader, Name: "Day Trader", Cost: 4},
}

// SkillByID returns the catalog entry for id, or nil if unknown.
func SkillByID(id SkillID) *SkillInfo {
	for i := range SkillCatalog {
		if SkillCatalog[i].ID == id {
			return &SkillCatalog[i]
		}
	}
	return nil
}
