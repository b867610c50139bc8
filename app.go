package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"tradequest/config"
	"tradequest/engine"
	"tradequest/internal/auth"
	"tradequest/models"
	"tradequest/observability"
	"tradequest/repository"
	"tradequest/services"
)

// App wires the live player sessions to the repository, market data and
// the sync worker. One engine exists per logged-in player.
type App struct {
	cfg        *config.Config
	repo       repository.RepositoryInterface
	marketData services.MarketDataInterface
	syncer     engine.Syncer
	jwt        *auth.JWTManager

	mu       sync.RWMutex
	sessions map[string]*engine.Engine

	priceMu sync.RWMutex
	prices  map[string]decimal.Decimal
}

// NewApp creates the application core.
func NewApp(cfg *config.Config, repo repository.RepositoryInterface, marketData services.MarketDataInterface, syncer engine.Syncer) *App {
	return &App{
		cfg:        cfg,
		repo:       repo,
		marketData: marketData,
		syncer:     syncer,
		jwt:        auth.NewJWTManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour),
		sessions:   make(map[string]*engine.Engine),
		prices:     make(map[string]decimal.Decimal),
	}
}

// SetSyncer installs the sync collaborator. Must be called before any
// session is attached.
func (a *App) SetSyncer(syncer engine.Syncer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.syncer = syncer
}

// Register creates a user with a fresh ledger and returns a session token.
func (a *App) Register(ctx context.Context, username, password string) (string, error) {
	if username == "" {
		return "", fmt.Errorf("username is required")
	}
	if a.repo == nil {
		return "", fmt.Errorf("database not initialized")
	}

	existing, err := a.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "", fmt.Errorf("username %s is taken", username)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}

	user := models.NewUser(username, hash)
	if err := a.repo.CreateUser(ctx, user); err != nil {
		return "", err
	}

	state := models.NewLedger()
	if err := a.repo.SaveGameState(ctx, username, state); err != nil {
		return "", err
	}

	a.attachSession(username, state)
	observability.Info("user registered", "user", username)

	return a.jwt.GenerateToken(user.ID, username)
}

// Login verifies credentials, hydrates the player's session from the stored
// snapshot and returns a session token.
func (a *App) Login(ctx context.Context, username, password string) (string, error) {
	if a.repo == nil {
		return "", fmt.Errorf("database not initialized")
	}

	user, err := a.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, password) {
		return "", fmt.Errorf("invalid credentials")
	}

	state, err := a.repo.LoadGameState(ctx, username)
	if err != nil {
		return "", err
	}
	if state == nil {
		state = models.NewLedger()
	}

	eng := a.attachSession(username, state)

	// one skill point per calendar day of play
	last := state.LastLogin
	now := time.Now()
	if last.IsZero() || last.Format("2006-01-02") != now.Format("2006-01-02") {
		eng.GrantSkillPoints(1)
	}
	eng.TouchLogin(now)

	observability.Info("user logged in", "user", username)
	return a.jwt.GenerateToken(user.ID, username)
}

// attachSession replaces or creates the in-memory engine for a user.
func (a *App) attachSession(username string, state *models.Ledger) *engine.Engine {
	a.mu.Lock()
	defer a.mu.Unlock()

	if eng, ok := a.sessions[username]; ok {
		eng.Replace(state)
		return eng
	}

	eng := engine.New(username, state, engine.WithSyncer(a.syncer))
	a.sessions[username] = eng
	return eng
}

// Session returns the engine for a logged-in user.
func (a *App) Session(username string) (*engine.Engine, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	eng, ok := a.sessions[username]
	if !ok {
		return nil, fmt.Errorf("no active session for %s", username)
	}
	return eng, nil
}

// ValidateToken resolves a session token to its username.
func (a *App) ValidateToken(token string) (string, error) {
	claims, err := a.jwt.ValidateToken(token)
	if err != nil {
		return "", err
	}
	return claims.Username, nil
}

// OnPriceTick records the latest price and runs conditional orders for
// every live session. Wired as the price feed handler.
func (a *App) OnPriceTick(assetID string, price decimal.Decimal) {
	a.priceMu.Lock()
	a.prices[assetID] = price
	a.priceMu.Unlock()

	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, eng := range a.sessions {
		eng.CheckOrders(assetID, price)
	}
}

// LatestPrices returns a copy of the last observed price per asset.
func (a *App) LatestPrices() map[string]decimal.Decimal {
	a.priceMu.RLock()
	defer a.priceMu.RUnlock()

	out := make(map[string]decimal.Decimal, len(a.prices))
	for k, v := range a.prices {
		out[k] = v
	}
	return out
}

// Quotes returns current quotes for the tracked assets, serving from the
// repository cache when fresh.
func (a *App) Quotes(ctx context.Context) ([]models.Quote, error) {
	if a.marketData == nil {
		return nil, fmt.Errorf("market data not initialized")
	}

	assets := a.cfg.MarketData.TrackedAssets
	ttl := time.Duration(a.cfg.MarketData.CacheTTLSeconds) * time.Second

	var quotes []models.Quote
	var missing []string
	for _, assetID := range assets {
		if a.repo != nil {
			cached, err := a.repo.GetCachedQuote(ctx, assetID)
			if err == nil && cached != nil {
				quotes = append(quotes, *cached)
				continue
			}
		}
		missing = append(missing, assetID)
	}

	if len(missing) > 0 {
		fresh, err := a.marketData.GetQuotes(ctx, missing)
		if err != nil {
			if len(quotes) == 0 {
				return nil, err
			}
			// serve what the cache had rather than failing the whole request
			observability.Warn("serving partial quotes after provider error", "error", err.Error())
			return quotes, nil
		}
		for i := range fresh {
			if a.repo != nil {
				if err := a.repo.SetCachedQuote(ctx, &fresh[i], ttl); err != nil {
					observability.Warn("failed to cache quote", "asset", fresh[i].AssetID, "error", err.Error())
				}
			}
		}
		quotes = append(quotes, fresh...)
	}

	return quotes, nil
}

// Leaderboard returns the top players by last synced net worth.
func (a *App) Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	if a.repo == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	return a.repo.TopLeaderboard(ctx, a.cfg.Game.LeaderboardSize)
}

// Health reports database connectivity.
func (a *App) Health(ctx context.Context) error {
	if a.repo == nil {
		return fmt.Errorf("database not configured")
	}
	return a.repo.Health(ctx)
}

// repoPusher persists snapshots to Postgres and keeps the leaderboard
// current with the player's net worth at the latest known prices.
type repoPusher struct {
	repo repository.RepositoryInterface
	app  *App
}

func (p *repoPusher) Push(ctx context.Context, username string, state *models.Ledger) error {
	if err := p.repo.SaveGameState(ctx, username, state); err != nil {
		return err
	}

	eng := engine.New(username, state)
	valuation := eng.Valuate(p.app.LatestPrices())
	netWorth, _ := valuation.NetWorth.Float64()
	return p.repo.UpsertLeaderboardEntry(ctx, username, netWorth)
}
