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

const kucoinBaseURL = "https://api.kucoin.com"

// KuCoinClient fetches tickers from the KuCoin public API.
// https://docs.kucoin.com/
type KuCoinClient struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewKuCoinClient creates a KuCoin client. An empty baseURL selects the
// production endpoint.
func NewKuCoinClient(baseURL string, logger *slog.Logger) *KuCoinClient {
	if baseURL == "" {
		baseURL = kucoinBaseURL
	}
	return &KuCoinClient{
		baseURL: baseURL,
		http:    newHTTPClient(),
		logger:  logger.With(slog.String("exchange", "kucoin")),
	}
}

func (c *KuCoinClient) Type() domain.ExchangeType { return domain.ExchangeKuCoin }

type kucoinLevel1Response struct {
	Code string `json:"code"`
	Data *struct {
		Price   string `json:"price"`
		BestBid string `json:"bestBid"`
		BestAsk string `json:"bestAsk"`
	} `json:"data"`
}

type kucoinAllTickersResponse struct {
	Data *struct {
		Ticker []struct {
			Symbol string `json:"symbol"`
			Buy    string `json:"buy"`
			Sell   string `json:"sell"`
			Last   string `json:"last"`
			Vol    string `json:"vol"`
		} `json:"ticker"`
	} `json:"data"`
}

func (c *KuCoinClient) FetchPrice(ctx context.Context, symbol string) (domain.PriceQuote, error) {
	native := dashToNative(symbol)
	u := fmt.Sprintf("%s/api/v1/market/orderbook/level1?symbol=%s", c.baseURL, url.QueryEscape(native))

	var resp kucoinLevel1Response
	if err := getJSON(ctx, c.http, u, &resp); err != nil {
		return domain.PriceQuote{}, fmt.Errorf("kucoin: fetch price %s: %w", symbol, err)
	}
	if resp.Data == nil {
		return domain.PriceQuote{}, fmt.Errorf("kucoin: fetch price %s: empty data", symbol)
	}

	bid, err := parsePositive("bestBid", resp.Data.BestBid)
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("kucoin: fetch price %s: %w", symbol, err)
	}
	ask, err := parsePositive("bestAsk", resp.Data.BestAsk)
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("kucoin: fetch price %s: %w", symbol, err)
	}
	last, err := parsePositive("price", resp.Data.Price)
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("kucoin: fetch price %s: %w", symbol, err)
	}

	return domain.PriceQuote{
		Exchange:   domain.ExchangeKuCoin,
		Symbol:     symbol,
		BidPrice:   bid,
		AskPrice:   ask,
		LastPrice:  last,
		ObservedAt: time.Now().UTC(),
	}, nil
}

func (c *KuCoinClient) FetchPrices(ctx context.Context, symbols []string) []domain.PriceQuote {
	return fetchEach(ctx, c, symbols)
}

// FetchAllTickers returns the full ticker dump. KuCoin omits buy/sell sides
// on thin markets; those sides are left absent rather than the entry being
// dropped.
func (c *KuCoinClient) FetchAllTickers(ctx context.Context) ([]domain.PriceQuote, error) {
	var resp kucoinAllTickersResponse
	if err := getJSON(ctx, c.http, c.baseURL+"/api/v1/market/allTickers", &resp); err != nil {
		return nil, fmt.Errorf("kucoin: fetch all tickers: %w", err)
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("kucoin: fetch all tickers: empty data")
	}

	now := time.Now().UTC()
	quotes := make([]domain.PriceQuote, 0, len(resp.Data.Ticker))
	for _, t := range resp.Data.Ticker {
		q := domain.PriceQuote{
			Exchange:   domain.ExchangeKuCoin,
			Symbol:     dashFromNative(t.Symbol),
			Volume24h:  parseOptional(t.Vol),
			ObservedAt: now,
		}
		if bid := parseOptional(t.Buy); bid.Valid && bid.Decimal.IsPositive() {
			q.BidPrice = bid.Decimal
		}
		if ask := parseOptional(t.Sell); ask.Valid && ask.Decimal.IsPositive() {
			q.AskPrice = ask.Decimal
		}
		if last := parseOptional(t.Last); last.Valid {
			q.LastPrice = last.Decimal
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

func (c *KuCoinClient) Healthy(ctx context.Context) bool {
	return probe(ctx, c)
}
