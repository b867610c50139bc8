package repository

import (
	"context"
	"fmt"

	"tradequest/models"
	"tradequest/observability"
)

// UpsertLeaderboardEntry records a user's latest net worth.
func (r *Repository) UpsertLeaderboardEntry(ctx context.Context, username string, netWorth float64) error {
	timer := observability.GetMetrics().NewTimer()
	_, err := r.db.Exec(ctx, `
		INSERT INTO leaderboard (username, net_worth, synced_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (username)
		DO UPDATE SET net_worth = EXCLUDED.net_worth, synced_at = NOW()
	`, username, netWorth)
	timer.ObserveDB("upsert", "leaderboard")

	if err != nil {
		observability.GetMetrics().RecordDBError("upsert", "leaderboard")
		return fmt.Errorf("failed to upsert leaderboard entry: %w", err)
	}

	return nil
}

// TopLeaderboard returns the highest net-worth entries, best first.
func (r *Repository) TopLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	timer := observability.GetMetrics().NewTimer()
	rows, err := r.db.Query(ctx, `
		SELECT username, net_worth, synced_at
		FROM leaderboard
		ORDER BY net_worth DESC, username
		LIMIT $1
	`, limit)
	timer.ObserveDB("select", "leaderboard")

	if err != nil {
		observability.GetMetrics().RecordDBError("select", "leaderboard")
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.Username, &e.NetWorth, &e.SyncedAt); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, nil
}
