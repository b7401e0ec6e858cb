package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"crossarb/internal/domain"
)

// defaultMinProfit is the profit-percentage threshold applied when a request
// does not specify one.
var defaultMinProfit = decimal.RequireFromString("0.5")

// DetectionService defines the detection methods the arbitrage handler
// requires.
type DetectionService interface {
	DetectSimple(ctx context.Context, symbol string, minProfit decimal.Decimal) ([]domain.ArbitrageOpportunity, error)
	ProfitableOpportunities(ctx context.Context, minProfit decimal.Decimal) ([]domain.ArbitrageOpportunity, error)
	GetOpportunity(ctx context.Context, id string) (domain.ArbitrageOpportunity, error)
}

// ExecutionService defines the execution methods the arbitrage handler
// requires.
type ExecutionService interface {
	Execute(ctx context.Context, id string, quantity decimal.Decimal) error
	Trades(ctx context.Context, opportunityID string) ([]domain.Trade, error)
}

// ArbitrageHandler serves detection and execution HTTP endpoints.
type ArbitrageHandler struct {
	detection DetectionService
	execution ExecutionService
	logger    *slog.Logger
}

// NewArbitrageHandler creates an ArbitrageHandler.
func NewArbitrageHandler(detection DetectionService, execution ExecutionService, logger *slog.Logger) *ArbitrageHandler {
	return &ArbitrageHandler{detection: detection, execution: execution, logger: logger}
}

// Detect runs a detection pass for the symbol and returns what it recorded.
// POST /api/arbitrage/detect?symbol=BTC/USDT[&min_profit=0.5]
func (h *ArbitrageHandler) Detect(w http.ResponseWriter, r *http.Request) {
	symbol, ok := symbolParam(w, r)
	if !ok {
		return
	}

	minProfit := defaultMinProfit
	if v := r.URL.Query().Get("min_profit"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid min_profit")
			return
		}
		minProfit = d
	}

	detected, err := h.detection.DetectSimple(r.Context(), symbol, minProfit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: detection failed",
			slog.String("symbol", symbol),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "detection failed")
		return
	}
	if detected == nil {
		detected = []domain.ArbitrageOpportunity{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"symbol": symbol, "opportunities": detected})
}

// ListOpportunities returns DETECTED opportunities at or above min_profit
// (a percentage, default 0), most profitable first.
// GET /api/arbitrage/opportunities?min_profit=0.5
func (h *ArbitrageHandler) ListOpportunities(w http.ResponseWriter, r *http.Request) {
	minProfit := decimal.Zero
	if v := r.URL.Query().Get("min_profit"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid min_profit")
			return
		}
		minProfit = d
	}

	opps, err := h.detection.ProfitableOpportunities(r.Context(), minProfit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list opportunities failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list opportunities")
		return
	}
	if opps == nil {
		opps = []domain.ArbitrageOpportunity{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"opportunities": opps})
}

// GetOpportunity returns one opportunity by id.
// GET /api/arbitrage/opportunities/{id}
func (h *ArbitrageHandler) GetOpportunity(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing opportunity id")
		return
	}

	opp, err := h.detection.GetOpportunity(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "opportunity not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get opportunity failed",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get opportunity")
		return
	}
	writeJSON(w, http.StatusOK, opp)
}

type executeRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

// Execute runs the two-leg execution of an opportunity. The final state is
// read back so the caller sees the recorded outcome, COMPLETED or FAILED.
// POST /api/arbitrage/opportunities/{id}/execute {"quantity": "0.01"}
func (h *ArbitrageHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing opportunity id")
		return
	}

	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Quantity.IsPositive() {
		writeError(w, http.StatusBadRequest, "quantity must be positive")
		return
	}

	if err := h.execution.Execute(r.Context(), id, req.Quantity); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "opportunity not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: execute failed",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "execution failed")
		return
	}

	opp, err := h.detection.GetOpportunity(r.Context(), id)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: reload opportunity failed",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to load result")
		return
	}
	writeJSON(w, http.StatusOK, opp)
}

// ListTrades returns the execution legs recorded for an opportunity.
// GET /api/arbitrage/opportunities/{id}/trades
func (h *ArbitrageHandler) ListTrades(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing opportunity id")
		return
	}

	trades, err := h.execution.Trades(r.Context(), id)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list trades failed",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list trades")
		return
	}
	if trades == nil {
		trades = []domain.Trade{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"trades": trades})
}
