package exchange

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"crossarb/internal/domain"
)

const bybitBaseURL = "https://api.bybit.com"

// BybitClient fetches spot tickers from the Bybit v5 API.
// https://bybit-exchange.github.io/docs/v5/intro
type BybitClient struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewBybitClient creates a Bybit client. An empty baseURL selects the
// production endpoint.
func NewBybitClient(baseURL string, logger *slog.Logger) *BybitClient {
	if baseURL == "" {
		baseURL = bybitBaseURL
	}
	return &BybitClient{
		baseURL: baseURL,
		http:    newHTTPClient(),
		logger:  logger.With(slog.String("exchange", "bybit")),
	}
}

func (c *BybitClient) Type() domain.ExchangeType { return domain.ExchangeBybit }

type bybitTicker struct {
	Symbol    string `json:"symbol"`
	LastPrice string `json:"lastPrice"`
	Bid1Price string `json:"bid1Price"`
	Ask1Price string `json:"ask1Price"`
	Volume24h string `json:"volume24h"`
}

type bybitTickersResponse struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  struct {
		List []bybitTicker `json:"list"`
	} `json:"result"`
}

func (c *BybitClient) FetchPrice(ctx context.Context, symbol string) (domain.PriceQuote, error) {
	native := bybitToNative(symbol)
	u := fmt.Sprintf("%s/v5/market/tickers?category=spot&symbol=%s", c.baseURL, url.QueryEscape(native))

	var resp bybitTickersResponse
	if err := getJSON(ctx, c.http, u, &resp); err != nil {
		return domain.PriceQuote{}, fmt.Errorf("bybit: fetch price %s: %w", symbol, err)
	}
	if resp.RetCode != 0 {
		return domain.PriceQuote{}, fmt.Errorf("bybit: fetch price %s: API error %d: %s", symbol, resp.RetCode, resp.RetMsg)
	}
	if len(resp.Result.List) == 0 {
		return domain.PriceQuote{}, fmt.Errorf("bybit: fetch price %s: empty result", symbol)
	}

	q, err := c.buildQuote(symbol, resp.Result.List[0])
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("bybit: fetch price %s: %w", symbol, err)
	}
	return q, nil
}

func (c *BybitClient) FetchPrices(ctx context.Context, symbols []string) []domain.PriceQuote {
	return fetchEach(ctx, c, symbols)
}

// FetchAllTickers returns quotes for every spot pair. Entries with malformed
// prices are skipped.
func (c *BybitClient) FetchAllTickers(ctx context.Context) ([]domain.PriceQuote, error) {
	u := c.baseURL + "/v5/market/tickers?category=spot"

	var resp bybitTickersResponse
	if err := getJSON(ctx, c.http, u, &resp); err != nil {
		return nil, fmt.Errorf("bybit: fetch all tickers: %w", err)
	}
	if resp.RetCode != 0 {
		return nil, fmt.Errorf("bybit: fetch all tickers: API error %d: %s", resp.RetCode, resp.RetMsg)
	}

	quotes := make([]domain.PriceQuote, 0, len(resp.Result.List))
	for _, t := range resp.Result.List {
		q, err := c.buildQuote(bybitFromNative(t.Symbol), t)
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

func (c *BybitClient) Healthy(ctx context.Context) bool {
	return probe(ctx, c)
}

func (c *BybitClient) buildQuote(symbol string, t bybitTicker) (domain.PriceQuote, error) {
	bid, err := parsePositive("bid1Price", t.Bid1Price)
	if err != nil {
		return domain.PriceQuote{}, err
	}
	ask, err := parsePositive("ask1Price", t.Ask1Price)
	if err != nil {
		return domain.PriceQuote{}, err
	}
	last, err := parsePositive("lastPrice", t.LastPrice)
	if err != nil {
		return domain.PriceQuote{}, err
	}
	return domain.PriceQuote{
		Exchange:   domain.ExchangeBybit,
		Symbol:     symbol,
		BidPrice:   bid,
		AskPrice:   ask,
		LastPrice:  last,
		Volume24h:  parseOptional(t.Volume24h),
		ObservedAt: time.Now().UTC(),
	}, nil
}
