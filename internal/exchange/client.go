// Package exchange implements the per-venue REST clients that normalize
// heterogeneous ticker feeds into domain.PriceQuote values, plus the registry
// that holds one client per exchange.
package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"crossarb/internal/domain"
)

// ProbeSymbol is the canonical pair used by health checks on every exchange.
const ProbeSymbol = "BTC/USDT"

const (
	requestTimeout = 10 * time.Second
	maxRetries     = 2
)

// Client is the capability set every exchange client provides. FetchPrice
// returns an error for any transport, decode, or malformed-field problem;
// callers treat "no quote" from a single exchange as a normal outcome, never
// as a failure of the whole operation.
type Client interface {
	Type() domain.ExchangeType
	FetchPrice(ctx context.Context, symbol string) (domain.PriceQuote, error)
	FetchPrices(ctx context.Context, symbols []string) []domain.PriceQuote
	FetchAllTickers(ctx context.Context) ([]domain.PriceQuote, error)
	Healthy(ctx context.Context) bool
}

// newHTTPClient returns the bounded-timeout HTTP client shared by all
// exchange implementations.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}

// getJSON issues a GET against url and decodes the JSON body into v. Transport
// errors and 5xx responses are retried up to maxRetries additional times; all
// calls in this package are idempotent reads. Non-5xx error statuses and
// decode failures are returned immediately.
func getJSON(ctx context.Context, hc *http.Client, url string, v any) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := hc.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			if ctx.Err() != nil {
				return lastErr
			}
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("HTTP %d: %s", resp.StatusCode, truncate(body, 200))
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, truncate(body, 200))
		}

		if err := json.Unmarshal(body, v); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return lastErr
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// probe runs the standard liveness check: fetch the probe symbol and report
// whether a quote came back. Liveness only, not correctness.
func probe(ctx context.Context, c Client) bool {
	_, err := c.FetchPrice(ctx, ProbeSymbol)
	return err == nil
}

// fetchEach is the shared best-effort multi-symbol fetch: failed symbols are
// skipped, never reported.
func fetchEach(ctx context.Context, c Client, symbols []string) []domain.PriceQuote {
	quotes := make([]domain.PriceQuote, 0, len(symbols))
	for _, symbol := range symbols {
		q, err := c.FetchPrice(ctx, symbol)
		if err != nil {
			continue
		}
		quotes = append(quotes, q)
	}
	return quotes
}
