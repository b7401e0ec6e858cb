package handler

import (
	"context"
	"net/http"
	"strings"

	"crossarb/internal/domain"
)

// ComparisonService defines the methods the comparison handler requires.
type ComparisonService interface {
	Compare(ctx context.Context, symbol string) domain.PriceComparison
	CompareMany(ctx context.Context, symbols []string) []domain.PriceComparison
}

// CompareHandler serves cross-exchange price comparison endpoints.
type CompareHandler struct {
	comparison ComparisonService
}

// NewCompareHandler creates a CompareHandler.
func NewCompareHandler(comparison ComparisonService) *CompareHandler {
	return &CompareHandler{comparison: comparison}
}

// Compare summarizes live quotes for one symbol, or several when a
// comma-separated symbols parameter is given.
// GET /api/compare?symbol=BTC/USDT
// GET /api/compare?symbols=BTC/USDT,ETH/USDT
func (h *CompareHandler) Compare(w http.ResponseWriter, r *http.Request) {
	if list := r.URL.Query().Get("symbols"); list != "" {
		var symbols []string
		for _, s := range strings.Split(list, ",") {
			if s = strings.TrimSpace(s); s != "" {
				symbols = append(symbols, s)
			}
		}
		if len(symbols) == 0 {
			writeError(w, http.StatusBadRequest, "no symbols given")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"comparisons": h.comparison.CompareMany(r.Context(), symbols),
		})
		return
	}

	symbol, ok := symbolParam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.comparison.Compare(r.Context(), symbol))
}
