package exchange

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"crossarb/internal/domain"
)

const krakenBaseURL = "https://api.kraken.com"

// krakenCommonPairs are fetched by FetchAllTickers; Kraken has no single
// all-tickers endpoint for the pairs this system watches.
var krakenCommonPairs = []string{"BTC/USDT", "ETH/USDT", "BTC/USD", "ETH/USD"}

// KrakenClient fetches tickers from the Kraken public API.
// https://docs.kraken.com/rest/
type KrakenClient struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewKrakenClient creates a Kraken client. An empty baseURL selects the
// production endpoint.
func NewKrakenClient(baseURL string, logger *slog.Logger) *KrakenClient {
	if baseURL == "" {
		baseURL = krakenBaseURL
	}
	return &KrakenClient{
		baseURL: baseURL,
		http:    newHTTPClient(),
		logger:  logger.With(slog.String("exchange", "kraken")),
	}
}

func (c *KrakenClient) Type() domain.ExchangeType { return domain.ExchangeKraken }

// krakenTicker fields are positional arrays: b/a are [price, wholeLotVolume,
// lotVolume], c is [lastPrice, lotVolume], v is [today, last24h].
type krakenTicker struct {
	Bid    []string `json:"b"`
	Ask    []string `json:"a"`
	Last   []string `json:"c"`
	Volume []string `json:"v"`
}

type krakenTickerResponse struct {
	Error  []string                `json:"error"`
	Result map[string]krakenTicker `json:"result"`
}

func (c *KrakenClient) FetchPrice(ctx context.Context, symbol string) (domain.PriceQuote, error) {
	native := krakenToNative(symbol)
	u := fmt.Sprintf("%s/0/public/Ticker?pair=%s", c.baseURL, url.QueryEscape(native))

	var resp krakenTickerResponse
	if err := getJSON(ctx, c.http, u, &resp); err != nil {
		return domain.PriceQuote{}, fmt.Errorf("kraken: fetch price %s: %w", symbol, err)
	}
	if len(resp.Error) > 0 {
		return domain.PriceQuote{}, fmt.Errorf("kraken: fetch price %s: API error: %s", symbol, strings.Join(resp.Error, "; "))
	}
	if len(resp.Result) == 0 {
		return domain.PriceQuote{}, fmt.Errorf("kraken: fetch price %s: empty result", symbol)
	}

	// Kraken keys the result by its own pair name; take the single entry.
	var t krakenTicker
	for _, v := range resp.Result {
		t = v
		break
	}
	if len(t.Bid) == 0 || len(t.Ask) == 0 || len(t.Last) == 0 {
		return domain.PriceQuote{}, fmt.Errorf("kraken: fetch price %s: incomplete ticker", symbol)
	}

	bid, err := parsePositive("bid", t.Bid[0])
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("kraken: fetch price %s: %w", symbol, err)
	}
	ask, err := parsePositive("ask", t.Ask[0])
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("kraken: fetch price %s: %w", symbol, err)
	}
	last, err := parsePositive("last", t.Last[0])
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("kraken: fetch price %s: %w", symbol, err)
	}

	q := domain.PriceQuote{
		Exchange:   domain.ExchangeKraken,
		Symbol:     symbol,
		BidPrice:   bid,
		AskPrice:   ask,
		LastPrice:  last,
		ObservedAt: time.Now().UTC(),
	}
	if len(t.Volume) > 1 {
		q.Volume24h = parseOptional(t.Volume[1])
	}
	return q, nil
}

func (c *KrakenClient) FetchPrices(ctx context.Context, symbols []string) []domain.PriceQuote {
	return fetchEach(ctx, c, symbols)
}

// FetchAllTickers fetches the common pairs one by one.
func (c *KrakenClient) FetchAllTickers(ctx context.Context) ([]domain.PriceQuote, error) {
	return c.FetchPrices(ctx, krakenCommonPairs), nil
}

func (c *KrakenClient) Healthy(ctx context.Context) bool {
	return probe(ctx, c)
}
