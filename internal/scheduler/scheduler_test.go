package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crossarb/internal/domain"
	"crossarb/internal/exchange"
	"crossarb/internal/service"
	"crossarb/internal/store/memory"
)

// fakeClient serves a fixed bid/ask; a down client fails every fetch.
type fakeClient struct {
	typ      domain.ExchangeType
	bid, ask string
	down     bool
}

func (f *fakeClient) Type() domain.ExchangeType { return f.typ }

func (f *fakeClient) FetchPrice(_ context.Context, symbol string) (domain.PriceQuote, error) {
	if f.down {
		return domain.PriceQuote{}, errors.New("fake: exchange down")
	}
	bid := decimal.RequireFromString(f.bid)
	ask := decimal.RequireFromString(f.ask)
	return domain.PriceQuote{
		Exchange:   f.typ,
		Symbol:     symbol,
		BidPrice:   bid,
		AskPrice:   ask,
		LastPrice:  bid.Add(ask).Div(decimal.NewFromInt(2)),
		ObservedAt: time.Now().UTC(),
	}, nil
}

func (f *fakeClient) FetchPrices(ctx context.Context, symbols []string) []domain.PriceQuote {
	quotes := make([]domain.PriceQuote, 0, len(symbols))
	for _, symbol := range symbols {
		q, err := f.FetchPrice(ctx, symbol)
		if err != nil {
			continue
		}
		quotes = append(quotes, q)
	}
	return quotes
}

func (f *fakeClient) FetchAllTickers(ctx context.Context) ([]domain.PriceQuote, error) {
	q, err := f.FetchPrice(ctx, exchange.ProbeSymbol)
	if err != nil {
		return nil, err
	}
	return []domain.PriceQuote{q}, nil
}

func (f *fakeClient) Healthy(context.Context) bool { return !f.down }

func TestRunDetectsAndAutoExecutes(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	// One venue is down for the whole run; its fetch errors must not stall
	// the passes that find and execute the Binance/Kraken spread.
	registry := exchange.NewRegistry(
		&fakeClient{typ: domain.ExchangeBinance, bid: "100", ask: "101"},
		&fakeClient{typ: domain.ExchangeKraken, bid: "103", ask: "104"},
		&fakeClient{typ: domain.ExchangeOKX, down: true},
	)
	opps := memory.NewOpportunityStore()
	trades := memory.NewTradeStore()
	prices := service.NewPriceService(registry, memory.NewQuoteStore(), nil, logger)
	detection := service.NewDetectionService(prices, opps, logger)
	execution := service.NewExecutionService(opps, trades, exchange.NewPaperTrader(registry, logger), logger)

	s := New(prices, detection, execution, Options{
		Symbols:     []string{"BTC/USDT"},
		Interval:    10 * time.Millisecond,
		MinProfit:   decimal.RequireFromString("0.5"),
		AutoExecute: true,
		TradeAmount: decimal.RequireFromString("0.01"),
		Retention:   24 * time.Hour,
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	var executed domain.ArbitrageOpportunity
	require.Eventually(t, func() bool {
		found, err := opps.ListProfitable(context.Background(), domain.OpportunityCompleted, decimal.Zero)
		if err != nil || len(found) == 0 {
			return false
		}
		executed = found[0]
		return true
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, domain.ExchangeBinance, executed.BuyExchange)
	assert.Equal(t, domain.ExchangeKraken, executed.SellExchange)
	assert.Contains(t, executed.ExecutionDetails, "buy order")

	legs, err := trades.ListByOpportunity(context.Background(), executed.ID)
	require.NoError(t, err)
	require.Len(t, legs, 2)
	for _, leg := range legs {
		assert.True(t, leg.Quantity.Equal(decimal.RequireFromString("0.01")))
	}
}

func TestNextPurgeTime(t *testing.T) {
	t.Run("before the purge hour", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 1, 30, 0, 0, time.UTC)
		got := nextPurgeTime(now)
		assert.Equal(t, time.Date(2025, 6, 1, 2, 0, 0, 0, time.UTC), got)
	})

	t.Run("after the purge hour rolls to next day", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)
		got := nextPurgeTime(now)
		assert.Equal(t, time.Date(2025, 6, 2, 2, 0, 0, 0, time.UTC), got)
	})

	t.Run("exactly at the purge hour rolls forward", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 2, 0, 0, 0, time.UTC)
		got := nextPurgeTime(now)
		assert.Equal(t, time.Date(2025, 6, 2, 2, 0, 0, 0, time.UTC), got)
	})
}
