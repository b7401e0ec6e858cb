package exchange

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"crossarb/internal/domain"
)

const binanceBaseURL = "https://api.binance.com"

var two = decimal.NewFromInt(2)

// BinanceClient fetches book tickers from the Binance spot API.
// https://binance-docs.github.io/apidocs/spot/en/
type BinanceClient struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewBinanceClient creates a Binance client. An empty baseURL selects the
// production endpoint.
func NewBinanceClient(baseURL string, logger *slog.Logger) *BinanceClient {
	if baseURL == "" {
		baseURL = binanceBaseURL
	}
	return &BinanceClient{
		baseURL: baseURL,
		http:    newHTTPClient(),
		logger:  logger.With(slog.String("exchange", "binance")),
	}
}

func (c *BinanceClient) Type() domain.ExchangeType { return domain.ExchangeBinance }

type binanceTicker struct {
	Symbol   string `json:"symbol"`
	BidPrice string `json:"bidPrice"`
	AskPrice string `json:"askPrice"`
}

// FetchPrice returns the current quote for a canonical symbol. Binance's book
// ticker has no last-trade price, so LastPrice is the bid/ask midpoint.
func (c *BinanceClient) FetchPrice(ctx context.Context, symbol string) (domain.PriceQuote, error) {
	native := binanceToNative(symbol)
	u := fmt.Sprintf("%s/api/v3/ticker/bookTicker?symbol=%s", c.baseURL, url.QueryEscape(native))

	var t binanceTicker
	if err := getJSON(ctx, c.http, u, &t); err != nil {
		return domain.PriceQuote{}, fmt.Errorf("binance: fetch price %s: %w", symbol, err)
	}

	q, err := c.buildQuote(symbol, t)
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("binance: fetch price %s: %w", symbol, err)
	}
	return q, nil
}

func (c *BinanceClient) FetchPrices(ctx context.Context, symbols []string) []domain.PriceQuote {
	return fetchEach(ctx, c, symbols)
}

// FetchAllTickers returns quotes for every pair Binance serves. Entries with
// malformed prices are skipped.
func (c *BinanceClient) FetchAllTickers(ctx context.Context) ([]domain.PriceQuote, error) {
	u := c.baseURL + "/api/v3/ticker/bookTicker"

	var tickers []binanceTicker
	if err := getJSON(ctx, c.http, u, &tickers); err != nil {
		return nil, fmt.Errorf("binance: fetch all tickers: %w", err)
	}

	quotes := make([]domain.PriceQuote, 0, len(tickers))
	for _, t := range tickers {
		q, err := c.buildQuote(binanceFromNative(t.Symbol), t)
		if err != nil {
			c.logger.Debug("skipping malformed ticker",
				slog.String("symbol", t.Symbol),
				slog.String("error", err.Error()),
			)
			continue
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

func (c *BinanceClient) Healthy(ctx context.Context) bool {
	return probe(ctx, c)
}

func (c *BinanceClient) buildQuote(symbol string, t binanceTicker) (domain.PriceQuote, error) {
	bid, err := parsePositive("bidPrice", t.BidPrice)
	if err != nil {
		return domain.PriceQuote{}, err
	}
	ask, err := parsePositive("askPrice", t.AskPrice)
	if err != nil {
		return domain.PriceQuote{}, err
	}
	return domain.PriceQuote{
		Exchange:   domain.ExchangeBinance,
		Symbol:     symbol,
		BidPrice:   bid,
		AskPrice:   ask,
		LastPrice:  bid.Add(ask).Div(two),
		ObservedAt: time.Now().UTC(),
	}, nil
}

// parsePositive parses a decimal wire field and rejects missing, malformed,
// or non-positive values.
func parsePositive(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Decimal{}, fmt.Errorf("missing field %s", field)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parse %s %q: %w", field, s, err)
	}
	if !d.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%s must be positive, got %s", field, s)
	}
	return d, nil
}

// parseOptional parses a decimal wire field that may be absent.
func parseOptional(s string) decimal.NullDecimal {
	if s == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}
