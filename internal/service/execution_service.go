package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"crossarb/internal/domain"
)

// Trader places orders on exchanges. The production implementation simulates
// fills; a real one would sign and submit.
type Trader interface {
	PlaceOrder(ctx context.Context, exchange domain.ExchangeType, symbol string, orderType domain.OrderType, side domain.OrderSide, price, quantity decimal.Decimal) (string, error)
}

// ExecutionService runs the two-leg execution of a detected opportunity and
// records its outcome. Exactly one executor wins a given opportunity; the
// store's conditional claim provides the mutual exclusion.
type ExecutionService struct {
	opportunities domain.OpportunityStore
	trades        domain.TradeStore
	trader        Trader
	logger        *slog.Logger
}

// NewExecutionService creates an execution service.
func NewExecutionService(opportunities domain.OpportunityStore, trades domain.TradeStore, trader Trader, logger *slog.Logger) *ExecutionService {
	return &ExecutionService{
		opportunities: opportunities,
		trades:        trades,
		trader:        trader,
		logger:        logger.With(slog.String("component", "execution_service")),
	}
}

// Execute claims the opportunity and places the buy then the sell leg,
// recording a trade row per leg. A lost claim (already executing or finished)
// is a no-op. Once the claim succeeds the sequence no longer observes the
// caller's cancellation; it always finishes at COMPLETED or FAILED. A failed
// leg marks the opportunity FAILED with the error in the execution details;
// leg failures do not propagate as errors because the outcome is fully
// recorded on the opportunity itself.
func (s *ExecutionService) Execute(ctx context.Context, id string, quantity decimal.Decimal) error {
	opp, err := s.opportunities.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service: execute %s: %w", id, err)
	}

	now := time.Now().UTC()
	if err := s.opportunities.ClaimForExecution(ctx, id, now); err != nil {
		if errors.Is(err, domain.ErrNotExecutable) {
			s.logger.Info("opportunity not claimable",
				slog.String("id", id),
				slog.String("status", string(opp.Status)),
			)
			return nil
		}
		return fmt.Errorf("service: claim %s: %w", id, err)
	}

	// The claim moved the opportunity to EXECUTING. From here the sequence
	// must reach a terminal state even if the caller's context expires, or
	// the row would be stuck in EXECUTING with no way to reclaim it.
	ctx = context.WithoutCancel(ctx)

	s.logger.Info("executing opportunity",
		slog.String("id", id),
		slog.String("symbol", opp.Symbol),
		slog.String("quantity", quantity.String()),
	)

	buyOrderID, err := s.placeLeg(ctx, opp, domain.SideBuy, opp.BuyExchange, opp.BuyPrice, quantity)
	if err != nil {
		return s.fail(ctx, id, fmt.Sprintf("buy leg failed: %v", err))
	}
	sellOrderID, err := s.placeLeg(ctx, opp, domain.SideSell, opp.SellExchange, opp.SellPrice, quantity)
	if err != nil {
		return s.fail(ctx, id, fmt.Sprintf("sell leg failed after buy order %s: %v", buyOrderID, err))
	}

	details := fmt.Sprintf("buy order %s on %s, sell order %s on %s",
		buyOrderID, opp.BuyExchange, sellOrderID, opp.SellExchange)
	if err := s.opportunities.MarkCompleted(ctx, id, details, time.Now().UTC()); err != nil {
		return fmt.Errorf("service: mark completed %s: %w", id, err)
	}
	s.logger.Info("opportunity executed",
		slog.String("id", id),
		slog.String("details", details),
	)
	return nil
}

// placeLeg submits one order and records its trade row.
func (s *ExecutionService) placeLeg(ctx context.Context, opp domain.ArbitrageOpportunity, side domain.OrderSide, ex domain.ExchangeType, price, quantity decimal.Decimal) (string, error) {
	orderID, err := s.trader.PlaceOrder(ctx, ex, opp.Symbol, domain.OrderMarket, side, price, quantity)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	trade := domain.Trade{
		ID:               uuid.New().String(),
		OpportunityID:    opp.ID,
		Exchange:         ex,
		Symbol:           opp.Symbol,
		Side:             side,
		OrderType:        domain.OrderMarket,
		Price:            price,
		Quantity:         quantity,
		ExecutedQuantity: quantity,
		ExternalOrderID:  orderID,
		Status:           domain.TradeStatusFilled,
		CreatedAt:        now,
		ExecutedAt:       &now,
	}
	if err := s.trades.Insert(ctx, trade); err != nil {
		return "", fmt.Errorf("record trade: %w", err)
	}
	return orderID, nil
}

// fail finalizes the opportunity as FAILED. The original leg error is carried
// in the details, not returned.
func (s *ExecutionService) fail(ctx context.Context, id, details string) error {
	s.logger.Error("execution failed",
		slog.String("id", id),
		slog.String("details", details),
	)
	if err := s.opportunities.MarkFailed(ctx, id, details); err != nil {
		return fmt.Errorf("service: mark failed %s: %w", id, err)
	}
	return nil
}

// Trades returns the recorded legs for an opportunity.
func (s *ExecutionService) Trades(ctx context.Context, opportunityID string) ([]domain.Trade, error) {
	trades, err := s.trades.ListByOpportunity(ctx, opportunityID)
	if err != nil {
		return nil, fmt.Errorf("service: list trades %s: %w", opportunityID, err)
	}
	return trades, nil
}
