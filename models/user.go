package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered player.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewUser creates a user with a fresh ID. The password must already be hashed.
func NewUser(username, passwordHash string) *User {
	return &User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
}

// LeaderboardEntry is one row of the net-worth leaderboard, derived from the
// last synced snapshot of each player.
type LeaderboardEntry struct {
	Username string    `json:"username"`
	NetWorth float64   `json:"net_worth"`
	SyncedAt time.Time `json:"synced_at"`
}
