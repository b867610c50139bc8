// Package engine implements the portfolio state machine: the ledger command
// methods for buying, selling, shorting and covering, the conditional-order
// monitor and the skill gate. One Engine owns one player's ledger; every
// mutation happens under its lock and is followed by a fire-and-forget sync.
package engine

import (
	"sync"
	"time"

	"tradequest/models"
)

// Syncer receives ledger snapshots after successful mutations. Enqueue must
// never block; replication is best-effort and the local ledger stays
// authoritative.
type Syncer interface {
	Enqueue(username string, state *models.Ledger)
}

// Engine is the state container for one player's ledger.
type Engine struct {
	mu       sync.Mutex
	username string
	state    *models.Ledger
	syncer   Syncer
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithSyncer attaches a sync collaborator.
func WithSyncer(s Syncer) Option {
	return func(e *Engine) { e.syncer = s }
}

// WithClock overrides the wall clock, used by the daily trade counter.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an engine around an existing ledger. A nil ledger starts fresh.
func New(username string, state *models.Ledger, opts ...Option) *Engine {
	if state == nil {
		state = models.NewLedger()
	}
	e := &Engine{
		username: username,
		state:    state,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Username returns the owner of this ledger.
func (e *Engine) Username() string {
	return e.username
}

// State returns a deep copy of the current ledger for read-only consumers.
func (e *Engine) State() *models.Ledger {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Replace swaps in a hydrated ledger wholesale, e.g. after login when a
// remote snapshot exists.
func (e *Engine) Replace(state *models.Ledger) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = state
}

// TouchLogin stamps the last-login time on the ledger.
func (e *Engine) TouchLogin(t time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.LastLogin = t
	e.requestSync()
}

// requestSync hands a snapshot to the sync collaborator. Called with the lock
// held, after a successful mutation. Never blocks, never fails the caller.
func (e *Engine) requestSync() {
	if e.syncer == nil {
		return
	}
	e.syncer.Enqueue(e.username, e.state.Clone())
}

// today returns the date-only string the daily trade counter compares against.
func (e *Engine) today() string {
	return e.now().Format("2006-01-02")
}

// canTrade reports whether the daily cap allows another trade. The cap only
// counts trades made today; a counter carried over from a previous day does
// not block.
func (e *Engine) canTrade() bool {
	if e.state.Skills.Has(models.SkillDayTrader) {
		return true
	}
	if e.state.LastTradeDate != e.today() {
		return true
	}
	return e.state.TradesToday < models.DailyTradeLimit
}

// incrementTrades bumps the daily counter, resetting it on a date change.
func (e *Engine) incrementTrades() {
	today := e.today()
	if e.state.LastTradeDate == today {
		e.state.TradesToday++
		return
	}
	e.state.TradesToday = 1
	e.state.LastTradeDate = today
}
