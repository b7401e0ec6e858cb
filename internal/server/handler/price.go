package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"crossarb/internal/domain"
)

// PriceService defines the methods that the price handler requires.
type PriceService interface {
	FetchAllExchanges(ctx context.Context, symbol string) []domain.PriceQuote
	LatestQuotes(ctx context.Context, symbol string) ([]domain.PriceQuote, error)
	LatestQuote(ctx context.Context, exchange domain.ExchangeType, symbol string) (domain.PriceQuote, error)
	UpdatePrices(ctx context.Context, symbols []string) error
}

// PriceHandler serves price-related HTTP endpoints.
type PriceHandler struct {
	prices PriceService
	logger *slog.Logger
}

// NewPriceHandler creates a PriceHandler.
func NewPriceHandler(prices PriceService, logger *slog.Logger) *PriceHandler {
	return &PriceHandler{prices: prices, logger: logger}
}

// Live fetches fresh quotes for the symbol from every exchange.
// GET /api/prices/live?symbol=BTC/USDT
func (h *PriceHandler) Live(w http.ResponseWriter, r *http.Request) {
	symbol, ok := symbolParam(w, r)
	if !ok {
		return
	}
	quotes := h.prices.FetchAllExchanges(r.Context(), symbol)
	if quotes == nil {
		quotes = []domain.PriceQuote{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"symbol": symbol, "quotes": quotes})
}

// Latest returns the most recent stored quote per exchange for the symbol. An
// optional exchange parameter narrows the result to one venue.
// GET /api/prices/latest?symbol=BTC/USDT[&exchange=BINANCE]
func (h *PriceHandler) Latest(w http.ResponseWriter, r *http.Request) {
	symbol, ok := symbolParam(w, r)
	if !ok {
		return
	}

	if name := r.URL.Query().Get("exchange"); name != "" {
		ex, err := domain.ParseExchangeType(name)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unknown exchange")
			return
		}
		q, err := h.prices.LatestQuote(r.Context(), ex, symbol)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeError(w, http.StatusNotFound, "no quote recorded")
				return
			}
			h.logger.ErrorContext(r.Context(), "handler: latest quote failed",
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusInternalServerError, "failed to load quote")
			return
		}
		writeJSON(w, http.StatusOK, q)
		return
	}

	quotes, err := h.prices.LatestQuotes(r.Context(), symbol)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: latest quotes failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to load quotes")
		return
	}
	if quotes == nil {
		quotes = []domain.PriceQuote{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"symbol": symbol, "quotes": quotes})
}

type updatePricesRequest struct {
	Symbols []string `json:"symbols"`
}

// Update fetches and persists fresh quotes for the requested symbols.
// POST /api/prices/update {"symbols": ["BTC/USDT"]}
func (h *PriceHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updatePricesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Symbols) == 0 {
		writeError(w, http.StatusBadRequest, "no symbols given")
		return
	}

	if err := h.prices.UpdatePrices(r.Context(), req.Symbols); err != nil {
		h.logger.ErrorContext(r.Context(), "handler: update prices failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "price update incomplete")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"updated": req.Symbols})
}
