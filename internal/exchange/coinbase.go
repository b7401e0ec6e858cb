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

const coinbaseBaseURL = "https://api.exchange.coinbase.com"

// CoinbaseClient fetches tickers from the Coinbase Exchange API.
// https://docs.cloud.coinbase.com/exchange/reference
type CoinbaseClient struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewCoinbaseClient creates a Coinbase client. An empty baseURL selects the
// production endpoint.
func NewCoinbaseClient(baseURL string, logger *slog.Logger) *CoinbaseClient {
	if baseURL == "" {
		baseURL = coinbaseBaseURL
	}
	return &CoinbaseClient{
		baseURL: baseURL,
		http:    newHTTPClient(),
		logger:  logger.With(slog.String("exchange", "coinbase")),
	}
}

func (c *CoinbaseClient) Type() domain.ExchangeType { return domain.ExchangeCoinbase }

type coinbaseTicker struct {
	Bid    string `json:"bid"`
	Ask    string `json:"ask"`
	Price  string `json:"price"`
	Volume string `json:"volume"`
}

type coinbaseProduct struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (c *CoinbaseClient) FetchPrice(ctx context.Context, symbol string) (domain.PriceQuote, error) {
	native := dashToNative(symbol)
	u := fmt.Sprintf("%s/products/%s/ticker", c.baseURL, url.PathEscape(native))

	var t coinbaseTicker
	if err := getJSON(ctx, c.http, u, &t); err != nil {
		return domain.PriceQuote{}, fmt.Errorf("coinbase: fetch price %s: %w", symbol, err)
	}

	bid, err := parsePositive("bid", t.Bid)
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("coinbase: fetch price %s: %w", symbol, err)
	}
	ask, err := parsePositive("ask", t.Ask)
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("coinbase: fetch price %s: %w", symbol, err)
	}
	last, err := decimal.NewFromString(t.Price)
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("coinbase: fetch price %s: parse price %q: %w", symbol, t.Price, err)
	}

	return domain.PriceQuote{
		Exchange:   domain.ExchangeCoinbase,
		Symbol:     symbol,
		BidPrice:   bid,
		AskPrice:   ask,
		LastPrice:  last,
		Volume24h:  parseOptional(t.Volume),
		ObservedAt: time.Now().UTC(),
	}, nil
}

func (c *CoinbaseClient) FetchPrices(ctx context.Context, symbols []string) []domain.PriceQuote {
	return fetchEach(ctx, c, symbols)
}

// FetchAllTickers lists online products and fetches each one's ticker. The
// API has no bulk ticker endpoint, so this issues one request per product;
// failed products are skipped.
func (c *CoinbaseClient) FetchAllTickers(ctx context.Context) ([]domain.PriceQuote, error) {
	var products []coinbaseProduct
	if err := getJSON(ctx, c.http, c.baseURL+"/products", &products); err != nil {
		return nil, fmt.Errorf("coinbase: fetch products: %w", err)
	}

	var quotes []domain.PriceQuote
	for _, p := range products {
		if p.Status != "online" {
			continue
		}
		q, err := c.FetchPrice(ctx, dashFromNative(p.ID))
		if err != nil {
			c.logger.Debug("skipping product",
				slog.String("product", p.ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

func (c *CoinbaseClient) Healthy(ctx context.Context) bool {
	return probe(ctx, c)
}
