// Package app provides the top-level application lifecycle. It wires the
// database, cache, exchange clients, and services, then runs the scheduler
// loops and the HTTP API until shutdown.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"crossarb/internal/config"
	"crossarb/internal/scheduler"
	"crossarb/internal/server"
	"crossarb/internal/server/handler"
)

// App is the root application object. It owns the configuration, logger, and
// a list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run is the main entry point. It wires all dependencies, starts the
// scheduler and (when enabled) the HTTP server, and blocks until the context
// is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.String("log_level", a.cfg.LogLevel),
		slog.Bool("server_enabled", a.cfg.Server.Enabled),
	)

	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		cleanup()
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	sched := scheduler.New(deps.Prices, deps.Detection, deps.Execution, scheduler.Options{
		Symbols:     a.cfg.Arbitrage.WatchedPairs,
		Interval:    a.cfg.Arbitrage.PriceUpdateInterval.Duration,
		MinProfit:   a.cfg.Arbitrage.MinProfitPercentage,
		AutoExecute: a.cfg.Arbitrage.AutoExecute,
		TradeAmount: a.cfg.Arbitrage.TradeAmount,
		Retention:   time.Duration(a.cfg.Arbitrage.PriceHistoryDays) * 24 * time.Hour,
	}, a.logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sched.Run(ctx) })

	if a.cfg.Server.Enabled {
		srv := server.NewServer(server.Config{
			Port:        a.cfg.Server.Port,
			CORSOrigins: a.cfg.Server.CORSOrigins,
		}, server.Handlers{
			Health:    handler.NewHealthHandler(),
			Prices:    handler.NewPriceHandler(deps.Prices, a.logger),
			Arbitrage: handler.NewArbitrageHandler(deps.Detection, deps.Execution, a.logger),
			Exchanges: handler.NewExchangeHandler(deps.Registry),
			Compare:   handler.NewCompareHandler(deps.Comparison),
		}, a.logger)

		g.Go(srv.Start)
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

// Close tears down all resources in reverse registration order. It is safe
// to call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
