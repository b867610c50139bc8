package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"tradequest/models"
	"tradequest/observability"
)

// SaveGameState upserts the serialized ledger for a user. The snapshot is
// stored as JSONB alongside its schema version so old rows stay loadable
// after the format evolves.
func (r *Repository) SaveGameState(ctx context.Context, username string, state *models.Ledger) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal game state: %w", err)
	}

	timer := observability.GetMetrics().NewTimer()
	_, err = r.db.Exec(ctx, `
		INSERT INTO game_states (username, version, state, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (username)
		DO UPDATE SET version = EXCLUDED.version, state = EXCLUDED.state, updated_at = NOW()
	`, username, models.SchemaVersion, raw)
	timer.ObserveDB("upsert", "game_states")

	if err != nil {
		observability.GetMetrics().RecordDBError("upsert", "game_states")
		return fmt.Errorf("failed to save game state: %w", err)
	}

	return nil
}

// LoadGameState returns the stored ledger for a user, migrated to the current
// schema. A missing row returns (nil, nil).
func (r *Repository) LoadGameState(ctx context.Context, username string) (*models.Ledger, error) {
	var version int
	var raw []byte

	timer := observability.GetMetrics().NewTimer()
	err := r.db.QueryRow(ctx, `
		SELECT version, state FROM game_states WHERE username = $1
	`, username).Scan(&version, &raw)
	timer.ObserveDB("select", "game_states")

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		observability.GetMetrics().RecordDBError("select", "game_states")
		return nil, fmt.Errorf("failed to query game state: %w", err)
	}

	state, err := models.Migrate(version, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate game state for %s: %w", username, err)
	}

	return state, nil
}

// DeleteGameState removes a user's stored ledger.
func (r *Repository) DeleteGameState(ctx context.Context, username string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM game_states WHERE username = $1`, username)
	if err != nil {
		observability.GetMetrics().RecordDBError("delete", "game_states")
		return fmt.Errorf("failed to delete game state: %w", err)
	}
	return nil
}
