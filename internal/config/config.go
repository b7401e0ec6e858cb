// Package config defines the top-level configuration for the arbitrage
// service and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"crossarb/internal/domain"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by CROSSARB_* environment
// variables.
type Config struct {
	Arbitrage ArbitrageConfig           `toml:"arbitrage"`
	Exchanges map[string]ExchangeConfig `toml:"exchanges"`
	Postgres  PostgresConfig            `toml:"postgres"`
	Redis     RedisConfig               `toml:"redis"`
	Server    ServerConfig              `toml:"server"`
	LogLevel  string                    `toml:"log_level"`
}

// ArbitrageConfig holds detection and execution parameters. Decimal fields
// are TOML strings ("0.5") so thresholds stay exact.
type ArbitrageConfig struct {
	MinProfitPercentage  decimal.Decimal `toml:"min_profit_percentage"`
	WatchedPairs         []string        `toml:"watched_pairs"`
	PriceUpdateInterval  duration        `toml:"price_update_interval"`
	AutoExecute          bool            `toml:"auto_execute"`
	PriceHistoryDays     int             `toml:"price_history_days"`
	TradeAmount          decimal.Decimal `toml:"trade_amount"`
	MaxBalancePercentage decimal.Decimal `toml:"max_balance_percentage"`
}

// ExchangeConfig holds per-exchange parameters, keyed by the lowercase
// exchange name in the TOML file. An empty base_url selects the venue's
// production endpoint.
type ExchangeConfig struct {
	BaseURL string `toml:"base_url"`
	Enabled bool   `toml:"enabled"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters. The cache is optional; when
// disabled, latest-quote reads go straight to PostgreSQL.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5s", "500ms").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5s" or "500ms".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Arbitrage: ArbitrageConfig{
			MinProfitPercentage:  decimal.RequireFromString("0.5"),
			WatchedPairs:         []string{"BTC/USDT", "ETH/USDT", "BNB/USDT"},
			PriceUpdateInterval:  duration{5 * time.Second},
			AutoExecute:          false,
			PriceHistoryDays:     7,
			TradeAmount:          decimal.RequireFromString("0.01"),
			MaxBalancePercentage: decimal.RequireFromString("0.1"),
		},
		Exchanges: map[string]ExchangeConfig{
			"binance":  {Enabled: true},
			"coinbase": {Enabled: true},
			"kraken":   {Enabled: true},
			"kucoin":   {Enabled: true},
			"bybit":    {Enabled: true},
			"okx":      {Enabled: true},
		},
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "crossarb",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8080,
			CORSOrigins: []string{},
		},
		LogLevel: "info",
	}
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Arbitrage
	if c.Arbitrage.MinProfitPercentage.IsNegative() {
		errs = append(errs, "arbitrage: min_profit_percentage must not be negative")
	}
	if len(c.Arbitrage.WatchedPairs) == 0 {
		errs = append(errs, "arbitrage: watched_pairs must not be empty")
	}
	for _, pair := range c.Arbitrage.WatchedPairs {
		if !strings.Contains(pair, "/") {
			errs = append(errs, fmt.Sprintf("arbitrage: watched pair %q must be BASE/QUOTE", pair))
		}
	}
	if c.Arbitrage.PriceUpdateInterval.Duration <= 0 {
		errs = append(errs, "arbitrage: price_update_interval must be positive")
	}
	if c.Arbitrage.PriceHistoryDays < 1 {
		errs = append(errs, "arbitrage: price_history_days must be >= 1")
	}
	if !c.Arbitrage.TradeAmount.IsPositive() {
		errs = append(errs, "arbitrage: trade_amount must be positive")
	}
	if !c.Arbitrage.MaxBalancePercentage.IsPositive() || c.Arbitrage.MaxBalancePercentage.GreaterThan(decimal.NewFromInt(1)) {
		errs = append(errs, "arbitrage: max_balance_percentage must be in (0, 1]")
	}

	// Exchanges
	enabled := 0
	for name, ex := range c.Exchanges {
		if _, err := domain.ParseExchangeType(name); err != nil {
			errs = append(errs, fmt.Sprintf("exchanges: unknown exchange %q", name))
			continue
		}
		if ex.Enabled {
			enabled++
		}
	}
	if enabled < 2 {
		errs = append(errs, "exchanges: at least two exchanges must be enabled")
	}

	// Postgres
	if strings.TrimSpace(c.Postgres.DSN) == "" {
		if c.Postgres.Host == "" {
			errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
		}
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
		}
		if c.Postgres.Database == "" {
			errs = append(errs, "postgres: database must not be empty")
		}
	}
	if c.Postgres.PoolMaxConns < 1 {
		errs = append(errs, "postgres: pool_max_conns must be >= 1")
	}
	if c.Postgres.PoolMinConns < 0 {
		errs = append(errs, "postgres: pool_min_conns must be >= 0")
	}
	if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
		errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty when enabled")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
