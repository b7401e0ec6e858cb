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

const okxBaseURL = "https://www.okx.com"

// OKXClient fetches tickers from the OKX v5 API.
// https://www.okx.com/docs-v5/en/
type OKXClient struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewOKXClient creates an OKX client. An empty baseURL selects the production
// endpoint.
func NewOKXClient(baseURL string, logger *slog.Logger) *OKXClient {
	if baseURL == "" {
		baseURL = okxBaseURL
	}
	return &OKXClient{
		baseURL: baseURL,
		http:    newHTTPClient(),
		logger:  logger.With(slog.String("exchange", "okx")),
	}
}

func (c *OKXClient) Type() domain.ExchangeType { return domain.ExchangeOKX }

type okxTicker struct {
	InstID string `json:"instId"`
	Last   string `json:"last"`
	BidPx  string `json:"bidPx"`
	AskPx  string `json:"askPx"`
	Vol24h string `json:"vol24h"`
}

type okxTickerResponse struct {
	Code string      `json:"code"`
	Msg  string      `json:"msg"`
	Data []okxTicker `json:"data"`
}

func (c *OKXClient) FetchPrice(ctx context.Context, symbol string) (domain.PriceQuote, error) {
	native := dashToNative(symbol)
	u := fmt.Sprintf("%s/api/v5/market/ticker?instId=%s", c.baseURL, url.QueryEscape(native))

	var resp okxTickerResponse
	if err := getJSON(ctx, c.http, u, &resp); err != nil {
		return domain.PriceQuote{}, fmt.Errorf("okx: fetch price %s: %w", symbol, err)
	}
	if resp.Code != "0" {
		return domain.PriceQuote{}, fmt.Errorf("okx: fetch price %s: API error %s: %s", symbol, resp.Code, resp.Msg)
	}
	if len(resp.Data) == 0 {
		return domain.PriceQuote{}, fmt.Errorf("okx: fetch price %s: empty data", symbol)
	}

	q, err := c.buildQuote(symbol, resp.Data[0])
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("okx: fetch price %s: %w", symbol, err)
	}
	return q, nil
}

func (c *OKXClient) FetchPrices(ctx context.Context, symbols []string) []domain.PriceQuote {
	return fetchEach(ctx, c, symbols)
}

// FetchAllTickers returns quotes for every spot instrument. Entries with
// malformed prices are skipped.
func (c *OKXClient) FetchAllTickers(ctx context.Context) ([]domain.PriceQuote, error) {
	u := c.baseURL + "/api/v5/market/tickers?instType=SPOT"

	var resp okxTickerResponse
	if err := getJSON(ctx, c.http, u, &resp); err != nil {
		return nil, fmt.Errorf("okx: fetch all tickers: %w", err)
	}
	if resp.Code != "0" {
		return nil, fmt.Errorf("okx: fetch all tickers: API error %s: %s", resp.Code, resp.Msg)
	}

	quotes := make([]domain.PriceQuote, 0, len(resp.Data))
	for _, t := range resp.Data {
		q, err := c.buildQuote(dashFromNative(t.InstID), t)
		if err != nil {
			c.logger.Debug("skipping malformed ticker",
				slog.String("symbol", t.InstID),
				slog.String("error", err.Error()),
			)
			continue
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

func (c *OKXClient) Healthy(ctx context.Context) bool {
	return probe(ctx, c)
}

func (c *OKXClient) buildQuote(symbol string, t okxTicker) (domain.PriceQuote, error) {
	bid, err := parsePositive("bidPx", t.BidPx)
	if err != nil {
		return domain.PriceQuote{}, err
	}
	ask, err := parsePositive("askPx", t.AskPx)
	if err != nil {
		return domain.PriceQuote{}, err
	}
	last, err := parsePositive("last", t.Last)
	if err != nil {
		return domain.PriceQuote{}, err
	}
	return domain.PriceQuote{
		Exchange:   domain.ExchangeOKX,
		Symbol:     symbol,
		BidPrice:   bid,
		AskPrice:   ask,
		LastPrice:  last,
		Volume24h:  parseOptional(t.Vol24h),
		ObservedAt: time.Now().UTC(),
	}, nil
}
