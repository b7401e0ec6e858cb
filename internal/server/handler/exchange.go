package handler

import (
	"context"
	"net/http"

	"crossarb/internal/domain"
)

// ExchangeRegistry defines the registry methods the exchange handler
// requires.
type ExchangeRegistry interface {
	Types() []domain.ExchangeType
	Healthy(ctx context.Context) map[domain.ExchangeType]bool
	HealthyOne(ctx context.Context, t domain.ExchangeType) (bool, error)
}

// ExchangeHandler serves exchange metadata endpoints.
type ExchangeHandler struct {
	registry ExchangeRegistry
}

// NewExchangeHandler creates an ExchangeHandler.
func NewExchangeHandler(registry ExchangeRegistry) *ExchangeHandler {
	return &ExchangeHandler{registry: registry}
}

type exchangeInfo struct {
	Type        domain.ExchangeType `json:"type"`
	DisplayName string              `json:"display_name"`
}

// List returns the configured exchanges.
// GET /api/exchanges
func (h *ExchangeHandler) List(w http.ResponseWriter, r *http.Request) {
	types := h.registry.Types()
	out := make([]exchangeInfo, 0, len(types))
	for _, t := range types {
		out = append(out, exchangeInfo{Type: t, DisplayName: t.DisplayName()})
	}
	writeJSON(w, http.StatusOK, map[string]any{"exchanges": out})
}

// Health probes every configured exchange and reports liveness per venue.
// GET /api/exchanges/health
func (h *ExchangeHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := h.registry.Healthy(r.Context())
	out := make(map[string]bool, len(status))
	for t, ok := range status {
		out[string(t)] = ok
	}
	writeJSON(w, http.StatusOK, map[string]any{"exchanges": out})
}

// HealthOne probes one exchange and reports its liveness.
// GET /api/exchanges/{exchange}/health
func (h *ExchangeHandler) HealthOne(w http.ResponseWriter, r *http.Request) {
	t, err := domain.ParseExchangeType(r.PathValue("exchange"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown exchange")
		return
	}
	ok, err := h.registry.HealthyOne(r.Context(), t)
	if err != nil {
		writeError(w, http.StatusNotFound, "exchange not configured")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"exchange": t, "healthy": ok})
}
