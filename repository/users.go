package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"tradequest/models"
	"tradequest/observability"
)

// CreateUser inserts a new user row.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	timer := observability.GetMetrics().NewTimer()
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, username, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`, user.ID, user.Username, user.PasswordHash, user.CreatedAt)
	timer.ObserveDB("insert", "users")

	if err != nil {
		observability.GetMetrics().RecordDBError("insert", "users")
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByUsername returns the user with the given username, or nil when absent.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	timer := observability.GetMetrics().NewTimer()
	err := r.db.QueryRow(ctx, `
		SELECT id, username, password_hash, created_at
		FROM users WHERE username = $1
	`, username).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	timer.ObserveDB("select", "users")

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		observability.GetMetrics().RecordDBError("select", "users")
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, nil
}

// GetUser returns the user with the given ID, or nil when absent.
func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.QueryRow(ctx, `
		SELECT id, username, password_hash, created_at
		FROM users WHERE id = $1
	`, id).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		observability.GetMetrics().RecordDBError("select", "users")
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, nil
}
