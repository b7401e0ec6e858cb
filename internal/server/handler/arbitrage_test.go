package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crossarb/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubDetection serves a fixed opportunity set.
type stubDetection struct {
	opps map[string]domain.ArbitrageOpportunity
}

func (s *stubDetection) DetectSimple(_ context.Context, symbol string, minProfit decimal.Decimal) ([]domain.ArbitrageOpportunity, error) {
	var out []domain.ArbitrageOpportunity
	for _, o := range s.opps {
		if o.Symbol == symbol && o.ProfitPercentage.GreaterThanOrEqual(minProfit) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *stubDetection) ProfitableOpportunities(_ context.Context, minProfit decimal.Decimal) ([]domain.ArbitrageOpportunity, error) {
	var out []domain.ArbitrageOpportunity
	for _, o := range s.opps {
		if o.ProfitPercentage.GreaterThanOrEqual(minProfit) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *stubDetection) GetOpportunity(_ context.Context, id string) (domain.ArbitrageOpportunity, error) {
	o, ok := s.opps[id]
	if !ok {
		return domain.ArbitrageOpportunity{}, domain.ErrNotFound
	}
	return o, nil
}

type stubExecution struct {
	executed map[string]decimal.Decimal
}

func (s *stubExecution) Execute(_ context.Context, id string, quantity decimal.Decimal) error {
	s.executed[id] = quantity
	return nil
}

func (s *stubExecution) Trades(context.Context, string) ([]domain.Trade, error) {
	return nil, nil
}

func newTestHandler(opps ...domain.ArbitrageOpportunity) (*ArbitrageHandler, *stubExecution) {
	d := &stubDetection{opps: make(map[string]domain.ArbitrageOpportunity)}
	for _, o := range opps {
		d.opps[o.ID] = o
	}
	e := &stubExecution{executed: make(map[string]decimal.Decimal)}
	return NewArbitrageHandler(d, e, testLogger()), e
}

func sampleOpp(id string) domain.ArbitrageOpportunity {
	return domain.ArbitrageOpportunity{
		ID:               id,
		Type:             domain.ArbitrageSimple,
		Symbol:           "BTC/USDT",
		BuyExchange:      domain.ExchangeBinance,
		SellExchange:     domain.ExchangeKraken,
		BuyPrice:         decimal.RequireFromString("101"),
		SellPrice:        decimal.RequireFromString("103"),
		ProfitPercentage: decimal.RequireFromString("1.98"),
		Status:           domain.OpportunityDetected,
		DetectedAt:       time.Now().UTC(),
	}
}

func TestGetOpportunityHandler(t *testing.T) {
	h, _ := newTestHandler(sampleOpp("abc"))
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/arbitrage/opportunities/{id}", h.GetOpportunity)

	t.Run("found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/arbitrage/opportunities/abc", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var got domain.ArbitrageOpportunity
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "abc", got.ID)
		assert.Equal(t, domain.ExchangeBinance, got.BuyExchange)
	})

	t.Run("not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/arbitrage/opportunities/nope", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestListOpportunitiesHandler(t *testing.T) {
	h, _ := newTestHandler(sampleOpp("abc"))
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/arbitrage/opportunities", h.ListOpportunities)

	t.Run("above threshold", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/arbitrage/opportunities?min_profit=1", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var got struct {
			Opportunities []domain.ArbitrageOpportunity `json:"opportunities"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Len(t, got.Opportunities, 1)
	})

	t.Run("threshold filters out", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/arbitrage/opportunities?min_profit=5", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var got struct {
			Opportunities []domain.ArbitrageOpportunity `json:"opportunities"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Empty(t, got.Opportunities)
	})

	t.Run("bad min_profit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/arbitrage/opportunities?min_profit=lots", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestExecuteHandler(t *testing.T) {
	h, exec := newTestHandler(sampleOpp("abc"))
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/arbitrage/opportunities/{id}/execute", h.Execute)

	t.Run("executes with quantity", func(t *testing.T) {
		body := strings.NewReader(`{"quantity": "0.01"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/arbitrage/opportunities/abc/execute", body)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		qty, ok := exec.executed["abc"]
		require.True(t, ok)
		assert.True(t, qty.Equal(decimal.RequireFromString("0.01")))
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		body := strings.NewReader(`{"quantity": "0"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/arbitrage/opportunities/abc/execute", body)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects bad body", func(t *testing.T) {
		body := strings.NewReader(`{`)
		req := httptest.NewRequest(http.MethodPost, "/api/arbitrage/opportunities/abc/execute", body)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
