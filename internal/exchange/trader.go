package exchange

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"crossarb/internal/domain"
)

// PaperTrader simulates order placement against registered exchanges. No
// request leaves the process; the order is acknowledged with a synthetic id.
type PaperTrader struct {
	registry *Registry
	logger   *slog.Logger
}

// NewPaperTrader creates a trader that accepts orders for any exchange in the
// registry.
func NewPaperTrader(registry *Registry, logger *slog.Logger) *PaperTrader {
	return &PaperTrader{
		registry: registry,
		logger:   logger.With(slog.String("component", "paper_trader")),
	}
}

// PlaceOrder records a simulated order and returns its external id. The
// exchange must be registered; everything else is accepted as filled.
func (t *PaperTrader) PlaceOrder(ctx context.Context, exchange domain.ExchangeType, symbol string, orderType domain.OrderType, side domain.OrderSide, price, quantity decimal.Decimal) (string, error) {
	if _, ok := t.registry.Get(exchange); !ok {
		return "", fmt.Errorf("trader: place order on %s: %w", exchange, domain.ErrExchangeUnavailable)
	}

	orderID := fmt.Sprintf("ORD-%d", time.Now().UnixMilli())
	t.logger.Info("simulated order placed",
		slog.String("order_id", orderID),
		slog.String("exchange", string(exchange)),
		slog.String("symbol", symbol),
		slog.String("side", string(side)),
		slog.String("type", string(orderType)),
		slog.String("price", price.String()),
		slog.String("quantity", quantity.String()),
	)
	return orderID, nil
}
