package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"tradequest/models"
	"tradequest/observability"
)

// QuoteSource is the market-data surface the feed polls. Satisfied by
// MarketDataService and by fakes in tests.
type QuoteSource interface {
	GetQuotes(ctx context.Context, assetIDs []string) ([]models.Quote, error)
}

// PriceHandler receives each fresh price tick, typically to run conditional
// orders against open sessions.
type PriceHandler func(assetID string, price decimal.Decimal)

// PriceFeed polls the market on an interval and fans ticks out to a handler.
type PriceFeed struct {
	source   QuoteSource
	assets   []string
	interval time.Duration
	handler  PriceHandler
}

// NewPriceFeed creates a feed for the given tracked assets.
func NewPriceFeed(source QuoteSource, assets []string, interval time.Duration, handler PriceHandler) *PriceFeed {
	return &PriceFeed{
		source:   source,
		assets:   assets,
		interval: interval,
		handler:  handler,
	}
}

// Run polls until ctx is cancelled. Call it from its own goroutine.
func (f *PriceFeed) Run(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	// one immediate poll so sessions have prices before the first interval
	f.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.poll(ctx)
		}
	}
}

func (f *PriceFeed) poll(ctx context.Context) {
	quotes, err := f.source.GetQuotes(ctx, f.assets)
	if err != nil {
		observability.Warn("price poll failed", "error", err.Error())
		return
	}

	for _, q := range quotes {
		observability.GetMetrics().RecordPriceTick(q.AssetID)
		f.handler(q.AssetID, q.Price)
	}
}
