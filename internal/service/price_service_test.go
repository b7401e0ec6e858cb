package service

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
	"crossarb/internal/store/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeClient serves canned quotes per symbol, or fails when down.
type fakeClient struct {
	typ    domain.ExchangeType
	quotes map[string]domain.PriceQuote
	down   bool
}

func (f *fakeClient) Type() domain.ExchangeType { return f.typ }

func (f *fakeClient) FetchPrice(_ context.Context, symbol string) (domain.PriceQuote, error) {
	if f.down {
		return domain.PriceQuote{}, errors.New("fake: down")
	}
	q, ok := f.quotes[symbol]
	if !ok {
		return domain.PriceQuote{}, errors.New("fake: no such symbol")
	}
	return q, nil
}

func (f *fakeClient) FetchPrices(ctx context.Context, symbols []string) []domain.PriceQuote {
	var out []domain.PriceQuote
	for _, s := range symbols {
		if q, err := f.FetchPrice(ctx, s); err == nil {
			out = append(out, q)
		}
	}
	return out
}

func (f *fakeClient) FetchAllTickers(context.Context) ([]domain.PriceQuote, error) {
	return nil, nil
}

func (f *fakeClient) Healthy(context.Context) bool { return !f.down }

func fakeQuote(ex domain.ExchangeType, symbol, bid, ask string) domain.PriceQuote {
	b := decimal.RequireFromString(bid)
	a := decimal.RequireFromString(ask)
	return domain.PriceQuote{
		Exchange:   ex,
		Symbol:     symbol,
		BidPrice:   b,
		AskPrice:   a,
		LastPrice:  b.Add(a).Div(decimal.NewFromInt(2)),
		ObservedAt: time.Now().UTC(),
	}
}

func newFakeClient(ex domain.ExchangeType, quotes ...domain.PriceQuote) *fakeClient {
	m := make(map[string]domain.PriceQuote, len(quotes))
	for _, q := range quotes {
		m[q.Symbol] = q
	}
	return &fakeClient{typ: ex, quotes: m}
}

func TestFetchAllExchangesSkipsFailures(t *testing.T) {
	reg := exchange.NewRegistry(
		newFakeClient(domain.ExchangeBinance, fakeQuote(domain.ExchangeBinance, "BTC/USDT", "100", "101")),
		newFakeClient(domain.ExchangeKraken, fakeQuote(domain.ExchangeKraken, "BTC/USDT", "103", "104")),
		&fakeClient{typ: domain.ExchangeCoinbase, down: true},
		&fakeClient{typ: domain.ExchangeKuCoin, down: true},
		newFakeClient(domain.ExchangeOKX, fakeQuote(domain.ExchangeOKX, "BTC/USDT", "99", "100")),
	)
	svc := NewPriceService(reg, memory.NewQuoteStore(), nil, testLogger())

	quotes := svc.FetchAllExchanges(context.Background(), "BTC/USDT")
	assert.Len(t, quotes, 3)
}

func TestUpdatePricesPersistsQuotes(t *testing.T) {
	ctx := context.Background()
	store := memory.NewQuoteStore()
	reg := exchange.NewRegistry(
		newFakeClient(domain.ExchangeBinance,
			fakeQuote(domain.ExchangeBinance, "BTC/USDT", "100", "101"),
			fakeQuote(domain.ExchangeBinance, "ETH/USDT", "30", "31"),
		),
		newFakeClient(domain.ExchangeKraken,
			fakeQuote(domain.ExchangeKraken, "BTC/USDT", "103", "104"),
		),
	)
	svc := NewPriceService(reg, store, nil, testLogger())

	require.NoError(t, svc.UpdatePrices(ctx, []string{"BTC/USDT", "ETH/USDT"}))

	btc, err := store.LatestForSymbol(ctx, "BTC/USDT")
	require.NoError(t, err)
	assert.Len(t, btc, 2)

	eth, err := store.LatestForSymbol(ctx, "ETH/USDT")
	require.NoError(t, err)
	assert.Len(t, eth, 1)
}

// recordingCache tracks writes and serves one canned quote.
type recordingCache struct {
	stored []domain.PriceQuote
	get    map[string]domain.PriceQuote
}

func (c *recordingCache) SetLatest(_ context.Context, q domain.PriceQuote) error {
	c.stored = append(c.stored, q)
	return nil
}

func (c *recordingCache) GetLatest(_ context.Context, ex domain.ExchangeType, symbol string) (domain.PriceQuote, error) {
	q, ok := c.get[string(ex)+symbol]
	if !ok {
		return domain.PriceQuote{}, domain.ErrNotFound
	}
	return q, nil
}

func TestUpdatePricesWritesThroughCache(t *testing.T) {
	ctx := context.Background()
	cache := &recordingCache{}
	reg := exchange.NewRegistry(
		newFakeClient(domain.ExchangeBinance, fakeQuote(domain.ExchangeBinance, "BTC/USDT", "100", "101")),
	)
	svc := NewPriceService(reg, memory.NewQuoteStore(), cache, testLogger())

	require.NoError(t, svc.UpdatePrices(ctx, []string{"BTC/USDT"}))
	require.Len(t, cache.stored, 1)
	assert.Equal(t, domain.ExchangeBinance, cache.stored[0].Exchange)
}

func TestLatestQuotePrefersCache(t *testing.T) {
	ctx := context.Background()
	cached := fakeQuote(domain.ExchangeBinance, "BTC/USDT", "200", "201")
	cache := &recordingCache{get: map[string]domain.PriceQuote{
		"BINANCE" + "BTC/USDT": cached,
	}}
	store := memory.NewQuoteStore()
	require.NoError(t, store.Insert(ctx, fakeQuote(domain.ExchangeBinance, "BTC/USDT", "100", "101")))

	reg := exchange.NewRegistry()
	svc := NewPriceService(reg, store, cache, testLogger())

	q, err := svc.LatestQuote(ctx, domain.ExchangeBinance, "BTC/USDT")
	require.NoError(t, err)
	assert.True(t, q.BidPrice.Equal(cached.BidPrice))
}

func TestLatestQuoteFallsBackToStore(t *testing.T) {
	ctx := context.Background()
	store := memory.NewQuoteStore()
	require.NoError(t, store.Insert(ctx, fakeQuote(domain.ExchangeBinance, "BTC/USDT", "100", "101")))

	svc := NewPriceService(exchange.NewRegistry(), store, &recordingCache{}, testLogger())

	q, err := svc.LatestQuote(ctx, domain.ExchangeBinance, "BTC/USDT")
	require.NoError(t, err)
	assert.True(t, q.BidPrice.Equal(decimal.RequireFromString("100")))

	_, err = svc.LatestQuote(ctx, domain.ExchangeKraken, "BTC/USDT")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPurgeOlderThan(t *testing.T) {
	ctx := context.Background()
	store := memory.NewQuoteStore()
	old := fakeQuote(domain.ExchangeBinance, "BTC/USDT", "90", "91")
	old.ObservedAt = time.Now().UTC().Add(-10 * 24 * time.Hour)
	require.NoError(t, store.Insert(ctx, old))
	require.NoError(t, store.Insert(ctx, fakeQuote(domain.ExchangeBinance, "BTC/USDT", "100", "101")))

	svc := NewPriceService(exchange.NewRegistry(), store, nil, testLogger())

	deleted, err := svc.PurgeOlderThan(ctx, 7*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}
