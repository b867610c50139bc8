package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tradequest/models"
)

// RepositoryInterface defines all repository operations
type RepositoryInterface interface {
	// Health and lifecycle
	Close()
	Health(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	// Users
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)

	// Game states
	SaveGameState(ctx context.Context, username string, state *models.Ledger) error
	LoadGameState(ctx context.Context, username string) (*models.Ledger, error)
	DeleteGameState(ctx context.Context, username string) error

	// Leaderboard
	UpsertLeaderboardEntry(ctx context.Context, username string, netWorth float64) error
	TopLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)

	// Quote cache
	GetCachedQuote(ctx context.Context, assetID string) (*models.Quote, error)
	SetCachedQuote(ctx context.Context, quote *models.Quote, ttl time.Duration) error
	InvalidateQuote(ctx context.Context, assetID string) error
	CleanExpiredQuotes(ctx context.Context) (int64, error)
}

// Compile-time interface verification
var _ RepositoryInterface = (*Repository)(nil)
