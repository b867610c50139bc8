package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"tradequest/models"
)

// GetCachedQuote retrieves an unexpired cached quote for an asset.
func (r *Repository) GetCachedQuote(ctx context.Context, assetID string) (*models.Quote, error) {
	var data []byte

	// Let the database handle expiry check to avoid timezone issues
	err := r.db.QueryRow(ctx, `
		SELECT data FROM quote_cache
		WHERE asset_id = $1 AND expires_at > NOW()
	`, assetID).Scan(&data)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query quote cache: %w", err)
	}

	var quote models.Quote
	if err := json.Unmarshal(data, &quote); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached quote: %w", err)
	}

	return &quote, nil
}

// SetCachedQuote stores a quote with a TTL.
func (r *Repository) SetCachedQuote(ctx context.Context, quote *models.Quote, ttl time.Duration) error {
	data, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("failed to marshal quote: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO quote_cache (asset_id, data, expires_at)
		VALUES ($1, $2, NOW() + $3::interval)
		ON CONFLICT (asset_id)
		DO UPDATE SET data = EXCLUDED.data, expires_at = NOW() + $3::interval, created_at = NOW()
	`, quote.AssetID, data, ttl.String())

	if err != nil {
		return fmt.Errorf("failed to set quote cache: %w", err)
	}

	return nil
}

// InvalidateQuote removes the cached quote for an asset.
func (r *Repository) InvalidateQuote(ctx context.Context, assetID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM quote_cache WHERE asset_id = $1`, assetID)
	if err != nil {
		return fmt.Errorf("failed to invalidate quote cache: %w", err)
	}
	return nil
}

// CleanExpiredQuotes removes all expired cache entries.
func (r *Repository) CleanExpiredQuotes(ctx context.Context) (int64, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM quote_cache WHERE expires_at < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to clean quote cache: %w", err)
	}
	return result.RowsAffected(), nil
}
