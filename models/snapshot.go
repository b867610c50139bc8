package models

import (
	"encoding/json"
	"fmt"
)

// SchemaVersion is the current persisted snapshot schema.
//
// Version history:
//
//	1: balance + spot portfolio only
//	2: adds loan, leveraged and short positions, conditional orders
//	3: adds skills, skill points and the daily trade counter
const SchemaVersion = 3

// Snapshot is the versioned, serializable form of a ledger, as persisted and
// as pushed to the sync backend.
type Snapshot struct {
	Version  int     `json:"version"`
	Username string  `json:"username"`
	State    *Ledger `json:"game_state"`
}

// NewSnapshot wraps a ledger in the current schema version.
func NewSnapshot(username string, state *Ledger) *Snapshot {
	return &Snapshot{Version: SchemaVersion, Username: username, State: state}
}

// Migrate upgrades a stored snapshot body to the current schema, filling new
// fields with safe defaults. It is a pure function of (version, raw) so the
// upgrade path can be tested without a running store.
func Migrate(version int, raw []byte) (*Ledger, error) {
	if version > SchemaVersion {
		return nil, fmt.Errorf("snapshot version %d is newer than supported version %d", version, SchemaVersion)
	}

	var state Ledger
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}

	// Older versions are missing whole fields; json leaves them zero-valued.
	// Decimal zero values already decode as 0, so only reference types need filling.
	if state.Portfolio == nil {
		state.Portfolio = []PortfolioItem{}
	}
	if version < 2 {
		state.LeveragedPositions = []LeveragedPosition{}
		state.ShortPositions = []ShortPosition{}
		state.Orders = []Order{}
	}
	if state.LeveragedPositions == nil {
		state.LeveragedPositions = []LeveragedPosition{}
	}
	if state.ShortPositions == nil {
		state.ShortPositions = []ShortPosition{}
	}
	if state.Orders == nil {
		state.Orders = []Order{}
	}
	if version < 3 || state.Skills == nil {
		state.Skills = Skills{}
	}

	return &state, nil
}
