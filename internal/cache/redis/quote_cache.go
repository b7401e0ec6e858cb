package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"crossarb/internal/domain"
)

// QuoteCache implements domain.QuoteCache using Redis hashes. The latest
// quote per (exchange, symbol) is stored at key "quote:{exchange}:{symbol}"
// with fields bid, ask, last, volume, and ts (Unix nanosecond timestamp).
type QuoteCache struct {
	rdb *redis.Client
}

// NewQuoteCache creates a QuoteCache backed by the given Client.
func NewQuoteCache(c *Client) *QuoteCache {
	return &QuoteCache{rdb: c.rdb}
}

func quoteKey(exchange domain.ExchangeType, symbol string) string {
	return fmt.Sprintf("quote:%s:%s", exchange, symbol)
}

// quoteFields splits a quote into the hash fields to write and the fields to
// clear. A quote without a volume clears any previously written volume so the
// hash never mixes two observations.
func quoteFields(q domain.PriceQuote) (set map[string]interface{}, clear []string) {
	set = map[string]interface{}{
		"bid":  q.BidPrice.String(),
		"ask":  q.AskPrice.String(),
		"last": q.LastPrice.String(),
		"ts":   strconv.FormatInt(q.ObservedAt.UnixNano(), 10),
	}
	if q.Volume24h.Valid {
		set["volume"] = q.Volume24h.Decimal.String()
	} else {
		clear = append(clear, "volume")
	}
	return set, clear
}

// SetLatest stores the quote, replacing any previous value for the pair.
func (qc *QuoteCache) SetLatest(ctx context.Context, q domain.PriceQuote) error {
	key := quoteKey(q.Exchange, q.Symbol)
	set, clear := quoteFields(q)

	pipe := qc.rdb.TxPipeline()
	pipe.HSet(ctx, key, set)
	if len(clear) > 0 {
		pipe.HDel(ctx, key, clear...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: set quote %s %s: %w", q.Exchange, q.Symbol, err)
	}
	return nil
}

// GetLatest retrieves the cached quote for the pair. It returns
// domain.ErrNotFound when the key does not exist.
func (qc *QuoteCache) GetLatest(ctx context.Context, exchange domain.ExchangeType, symbol string) (domain.PriceQuote, error) {
	key := quoteKey(exchange, symbol)
	vals, err := qc.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("redis: get quote %s %s: %w", exchange, symbol, err)
	}
	if len(vals) == 0 {
		return domain.PriceQuote{}, domain.ErrNotFound
	}

	q := domain.PriceQuote{Exchange: exchange, Symbol: symbol}
	if q.BidPrice, err = parseField(vals, "bid"); err != nil {
		return domain.PriceQuote{}, fmt.Errorf("redis: get quote %s %s: %w", exchange, symbol, err)
	}
	if q.AskPrice, err = parseField(vals, "ask"); err != nil {
		return domain.PriceQuote{}, fmt.Errorf("redis: get quote %s %s: %w", exchange, symbol, err)
	}
	if q.LastPrice, err = parseField(vals, "last"); err != nil {
		return domain.PriceQuote{}, fmt.Errorf("redis: get quote %s %s: %w", exchange, symbol, err)
	}
	if volStr, ok := vals["volume"]; ok {
		vol, err := decimal.NewFromString(volStr)
		if err != nil {
			return domain.PriceQuote{}, fmt.Errorf("redis: get quote %s %s: parse volume: %w", exchange, symbol, err)
		}
		q.Volume24h = decimal.NullDecimal{Decimal: vol, Valid: true}
	}

	tsStr, ok := vals["ts"]
	if !ok {
		return domain.PriceQuote{}, domain.ErrNotFound
	}
	tsNano, err := strconv.ParseInt(tsStr, 10, 64)
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("redis: get quote %s %s: parse ts: %w", exchange, symbol, err)
	}
	q.ObservedAt = time.Unix(0, tsNano).UTC()

	return q, nil
}

func parseField(vals map[string]string, field string) (decimal.Decimal, error) {
	s, ok := vals[field]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("missing field %s", field)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse %s: %w", field, err)
	}
	return d, nil
}

// Compile-time interface check.
var _ domain.QuoteCache = (*QuoteCache)(nil)
