// Package service implements the application's use cases on top of the
// exchange clients and the persistence layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"crossarb/internal/domain"
	"crossarb/internal/exchange"
)

// PriceService aggregates quotes across exchanges and maintains the quote
// history and the latest-quote cache.
type PriceService struct {
	registry *exchange.Registry
	quotes   domain.QuoteStore
	cache    domain.QuoteCache
	logger   *slog.Logger
}

// NewPriceService creates a price service. cache may be nil; caching is then
// disabled and every read goes to the store.
func NewPriceService(registry *exchange.Registry, quotes domain.QuoteStore, cache domain.QuoteCache, logger *slog.Logger) *PriceService {
	return &PriceService{
		registry: registry,
		quotes:   quotes,
		cache:    cache,
		logger:   logger.With(slog.String("component", "price_service")),
	}
}

// FetchAllExchanges queries every registered exchange for the symbol
// concurrently and returns whatever quotes came back. A failing exchange is
// logged and skipped; the result only shrinks, the call itself never fails.
func (s *PriceService) FetchAllExchanges(ctx context.Context, symbol string) []domain.PriceQuote {
	var (
		mu     sync.Mutex
		quotes []domain.PriceQuote
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, client := range s.registry.All() {
		g.Go(func() error {
			q, err := client.FetchPrice(ctx, symbol)
			if err != nil {
				s.logger.Warn("exchange fetch failed",
					slog.String("exchange", string(client.Type())),
					slog.String("symbol", symbol),
					slog.String("error", err.Error()),
				)
				return nil
			}
			mu.Lock()
			quotes = append(quotes, q)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // goroutines never return errors

	return quotes
}

// UpdatePrices fetches and persists fresh quotes for every symbol. A failure
// on one symbol is contained: the remaining symbols are still processed and
// the first error is returned at the end.
func (s *PriceService) UpdatePrices(ctx context.Context, symbols []string) error {
	var firstErr error
	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			return err
		}
		quotes := s.FetchAllExchanges(ctx, symbol)
		for _, q := range quotes {
			if err := s.storeQuote(ctx, q); err != nil {
				s.logger.Error("store quote failed",
					slog.String("exchange", string(q.Exchange)),
					slog.String("symbol", q.Symbol),
					slog.String("error", err.Error()),
				)
				if firstErr == nil {
					firstErr = err
				}
			}
		}
		s.logger.Debug("prices updated",
			slog.String("symbol", symbol),
			slog.Int("quotes", len(quotes)),
		)
	}
	return firstErr
}

// storeQuote writes through: history first, then the cache. A cache write
// failure is logged but does not fail the update.
func (s *PriceService) storeQuote(ctx context.Context, q domain.PriceQuote) error {
	if err := s.quotes.Insert(ctx, q); err != nil {
		return fmt.Errorf("service: insert quote: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.SetLatest(ctx, q); err != nil {
			s.logger.Warn("cache write failed",
				slog.String("exchange", string(q.Exchange)),
				slog.String("symbol", q.Symbol),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}

// LatestQuotes returns the most recent stored quote per exchange for a symbol.
func (s *PriceService) LatestQuotes(ctx context.Context, symbol string) ([]domain.PriceQuote, error) {
	quotes, err := s.quotes.LatestForSymbol(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("service: latest quotes for %s: %w", symbol, err)
	}
	return quotes, nil
}

// LatestQuote returns the most recent quote for one exchange and symbol,
// consulting the cache first when one is configured.
func (s *PriceService) LatestQuote(ctx context.Context, ex domain.ExchangeType, symbol string) (domain.PriceQuote, error) {
	if s.cache != nil {
		q, err := s.cache.GetLatest(ctx, ex, symbol)
		if err == nil {
			return q, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("cache read failed",
				slog.String("exchange", string(ex)),
				slog.String("symbol", symbol),
				slog.String("error", err.Error()),
			)
		}
	}
	q, err := s.quotes.Latest(ctx, ex, symbol)
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("service: latest quote %s %s: %w", ex, symbol, err)
	}
	return q, nil
}

// PurgeOlderThan deletes quote history older than the retention window and
// returns the number of rows removed.
func (s *PriceService) PurgeOlderThan(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	n, err := s.quotes.PurgeBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("service: purge quotes: %w", err)
	}
	s.logger.Info("quote history purged",
		slog.Int64("deleted", n),
		slog.Time("cutoff", cutoff),
	)
	return n, nil
}
