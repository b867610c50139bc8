package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// Market data configuration
	MarketData MarketDataConfig

	// Snapshot sync configuration
	Sync SyncConfig

	// Authentication configuration
	Auth AuthConfig

	// Game rules configuration
	Game GameConfig

	// HTTP configuration
	HTTP HTTPConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// MarketDataConfig holds quote provider configuration
type MarketDataConfig struct {
	BaseURL             string
	PollIntervalSeconds int
	CacheTTLSeconds     int
	TrackedAssets       []string
}

// SyncConfig holds snapshot sync configuration
type SyncConfig struct {
	BackendURL string
}

// AuthConfig holds session token configuration
type AuthConfig struct {
	JWTSecret     string
	TokenTTLHours int
}

// GameConfig holds tunable game rules
type GameConfig struct {
	LeaderboardSize int
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Port               string
	TimeoutSeconds     int
	CORSAllowedOrigins string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		MarketData: MarketDataConfig{
			BaseURL:             getEnvString("MARKET_DATA_BASE_URL", "https://api.coingecko.com/api/v3"),
			PollIntervalSeconds: getEnvInt("MARKET_DATA_POLL_SECONDS", 30),
			CacheTTLSeconds:     getEnvInt("MARKET_DATA_CACHE_TTL_SECONDS", 60),
			TrackedAssets:       getEnvList("TRACKED_ASSETS", "bitcoin,ethereum,solana,cardano,polkadot,dogecoin,ripple,litecoin"),
		},
		Sync: SyncConfig{
			BackendURL: os.Getenv("SYNC_BACKEND_URL"),
		},
		Auth: AuthConfig{
			JWTSecret:     os.Getenv("JWT_SECRET"),
			TokenTTLHours: getEnvInt("JWT_TTL_HOURS", 72),
		},
		Game: GameConfig{
			LeaderboardSize: getEnvInt("LEADERBOARD_SIZE", 10),
		},
		HTTP: HTTPConfig{
			Port:               getEnvString("HTTP_PORT", "8080"),
			TimeoutSeconds:     getEnvInt("HTTP_TIMEOUT_SECONDS", 30),
			CORSAllowedOrigins: getEnvString("CORS_ALLOWED_ORIGINS", "*"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 bytes, got %d", len(c.Auth.JWTSecret))
	}
	if c.Auth.TokenTTLHours <= 0 {
		return fmt.Errorf("JWT_TTL_HOURS must be positive, got %d", c.Auth.TokenTTLHours)
	}
	if c.MarketData.PollIntervalSeconds <= 0 {
		return fmt.Errorf("MARKET_DATA_POLL_SECONDS must be positive, got %d", c.MarketData.PollIntervalSeconds)
	}
	if len(c.MarketData.TrackedAssets) == 0 {
		return fmt.Errorf("TRACKED_ASSETS must name at least one asset")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT_SECONDS must be positive, got %d", c.HTTP.TimeoutSeconds)
	}
	return nil
}

// HasDatabase returns true if database configuration is available
func (c *Config) HasDatabase() bool {
	return c.Database.URL != ""
}

// HasSyncBackend returns true if a remote snapshot backend is configured
func (c *Config) HasSyncBackend() bool {
	return c.Sync.BackendURL != ""
}

func getEnvString(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getEnvList(key, defaultValue string) []string {
	raw := getEnvString(key, defaultValue)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
