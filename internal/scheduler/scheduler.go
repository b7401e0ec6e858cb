// Package scheduler drives the periodic work: refreshing prices, scanning for
// opportunities, and purging old quote history.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"crossarb/internal/service"
)

// purgeHourUTC is the hour of day the retention purge runs.
const purgeHourUTC = 2

// Options configures the periodic loops.
type Options struct {
	Symbols     []string
	Interval    time.Duration
	MinProfit   decimal.Decimal
	AutoExecute bool
	TradeAmount decimal.Decimal
	Retention   time.Duration
}

// Scheduler owns the background loops. Run blocks until the context is
// cancelled; loops always exit cleanly on cancellation.
type Scheduler struct {
	prices    *service.PriceService
	detection *service.DetectionService
	execution *service.ExecutionService
	opts      Options
	logger    *slog.Logger
}

// New creates a scheduler.
func New(prices *service.PriceService, detection *service.DetectionService, execution *service.ExecutionService, opts Options, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		prices:    prices,
		detection: detection,
		execution: execution,
		opts:      opts,
		logger:    logger.With(slog.String("component", "scheduler")),
	}
}

// Run starts the update, detection, and purge loops and blocks until ctx is
// cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler starting",
		slog.Any("symbols", s.opts.Symbols),
		slog.Duration("interval", s.opts.Interval),
		slog.Bool("auto_execute", s.opts.AutoExecute),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.priceLoop(ctx) })
	g.Go(func() error { return s.detectLoop(ctx) })
	g.Go(func() error { return s.purgeLoop(ctx) })

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	s.logger.Info("scheduler stopped")
	return err
}

// priceLoop refreshes quotes for the watched symbols on every tick. Each pass
// gets its own deadline so a hung exchange cannot stall subsequent ticks.
func (s *Scheduler) priceLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			passCtx, cancel := context.WithTimeout(ctx, s.opts.Interval)
			if err := s.prices.UpdatePrices(passCtx, s.opts.Symbols); err != nil {
				s.logger.Warn("price update pass incomplete",
					slog.String("error", err.Error()),
				)
			}
			cancel()
		}
	}
}

// detectLoop scans each watched symbol for opportunities on every tick and,
// when auto-execution is enabled, executes what it finds.
func (s *Scheduler) detectLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			passCtx, cancel := context.WithTimeout(ctx, s.opts.Interval)
			s.detectPass(passCtx)
			cancel()
		}
	}
}

func (s *Scheduler) detectPass(ctx context.Context) {
	for _, symbol := range s.opts.Symbols {
		if ctx.Err() != nil {
			return
		}
		detected, err := s.detection.DetectSimple(ctx, symbol, s.opts.MinProfit)
		if err != nil {
			s.logger.Error("detection failed",
				slog.String("symbol", symbol),
				slog.String("error", err.Error()),
			)
			continue
		}
		if !s.opts.AutoExecute {
			continue
		}
		for _, opp := range detected {
			if err := s.execution.Execute(ctx, opp.ID, s.opts.TradeAmount); err != nil {
				s.logger.Error("auto-execution failed",
					slog.String("id", opp.ID),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// purgeLoop deletes quote history older than the retention window, once per
// day at the configured UTC hour.
func (s *Scheduler) purgeLoop(ctx context.Context) error {
	for {
		wait := time.Until(nextPurgeTime(time.Now().UTC()))
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			if _, err := s.prices.PurgeOlderThan(ctx, s.opts.Retention); err != nil {
				s.logger.Error("purge failed",
					slog.String("error", err.Error()),
				)
			}
		}
	}
}

// nextPurgeTime returns the next occurrence of the purge hour strictly after
// now.
func nextPurgeTime(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), purgeHourUTC, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next
}
