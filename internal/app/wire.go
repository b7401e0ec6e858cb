package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"crossarb/internal/cache/redis"
	"crossarb/internal/config"
	"crossarb/internal/domain"
	"crossarb/internal/exchange"
	"crossarb/internal/service"
	"crossarb/internal/store/postgres"
)

// Dependencies bundles every constructed component the application runs with.
type Dependencies struct {
	Registry   *exchange.Registry
	Prices     *service.PriceService
	Detection  *service.DetectionService
	Execution  *service.ExecutionService
	Comparison *service.ComparisonService
}

// Wire constructs all dependencies from the configuration: database, optional
// cache, exchange clients, and services. The returned cleanup function closes
// everything in reverse construction order.
func Wire(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	pg, err := postgres.New(ctx, postgres.ClientConfig{
		DSN:      cfg.Postgres.DSN,
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		Database: cfg.Postgres.Database,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		SSLMode:  cfg.Postgres.SSLMode,
		MaxConns: cfg.Postgres.PoolMaxConns,
		MinConns: cfg.Postgres.PoolMinConns,
	})
	if err != nil {
		return nil, cleanup, fmt.Errorf("app: connect postgres: %w", err)
	}
	closers = append(closers, pg.Close)

	if cfg.Postgres.RunMigrations {
		if err := pg.RunMigrations(ctx); err != nil {
			return nil, cleanup, fmt.Errorf("app: run migrations: %w", err)
		}
	}

	var cache domain.QuoteCache
	if cfg.Redis.Enabled {
		rc, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			return nil, cleanup, fmt.Errorf("app: connect redis: %w", err)
		}
		closers = append(closers, func() { _ = rc.Close() })
		cache = redis.NewQuoteCache(rc)
	}

	registry, err := buildRegistry(cfg.Exchanges, logger)
	if err != nil {
		return nil, cleanup, err
	}

	quoteStore := postgres.NewQuoteStore(pg.Pool())
	oppStore := postgres.NewOpportunityStore(pg.Pool())
	tradeStore := postgres.NewTradeStore(pg.Pool())

	prices := service.NewPriceService(registry, quoteStore, cache, logger)
	detection := service.NewDetectionService(prices, oppStore, logger)
	trader := exchange.NewPaperTrader(registry, logger)
	execution := service.NewExecutionService(oppStore, tradeStore, trader, logger)
	comparison := service.NewComparisonService(prices, logger)

	return &Dependencies{
		Registry:   registry,
		Prices:     prices,
		Detection:  detection,
		Execution:  execution,
		Comparison: comparison,
	}, cleanup, nil
}

// buildRegistry constructs one client per enabled exchange.
func buildRegistry(exchanges map[string]config.ExchangeConfig, logger *slog.Logger) (*exchange.Registry, error) {
	var clients []exchange.Client
	for name, exCfg := range exchanges {
		if !exCfg.Enabled {
			continue
		}
		t, err := domain.ParseExchangeType(name)
		if err != nil {
			return nil, fmt.Errorf("app: configure exchange %q: %w", name, err)
		}
		switch t {
		case domain.ExchangeBinance:
			clients = append(clients, exchange.NewBinanceClient(exCfg.BaseURL, logger))
		case domain.ExchangeCoinbase:
			clients = append(clients, exchange.NewCoinbaseClient(exCfg.BaseURL, logger))
		case domain.ExchangeKraken:
			clients = append(clients, exchange.NewKrakenClient(exCfg.BaseURL, logger))
		case domain.ExchangeKuCoin:
			clients = append(clients, exchange.NewKuCoinClient(exCfg.BaseURL, logger))
		case domain.ExchangeBybit:
			clients = append(clients, exchange.NewBybitClient(exCfg.BaseURL, logger))
		case domain.ExchangeOKX:
			clients = append(clients, exchange.NewOKXClient(exCfg.BaseURL, logger))
		default:
			return nil, fmt.Errorf("app: no client for exchange %q", strings.ToUpper(name))
		}
	}
	return exchange.NewRegistry(clients...), nil
}
