package services

import (
	"context"

	"tradequest/engine"
	"tradequest/models"
)

// MarketDataInterface defines the quote surface handlers depend on.
type MarketDataInterface interface {
	GetQuotes(ctx context.Context, assetIDs []string) ([]models.Quote, error)
	GetQuote(ctx context.Context, assetID string) (*models.Quote, error)
}

// Compile-time interface verification
var _ MarketDataInterface = (*MarketDataService)(nil)
var _ QuoteSource = (*MarketDataService)(nil)
var _ engine.Syncer = (*SyncWorker)(nil)
var _ SnapshotPusher = (*HTTPPusher)(nil)
