package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"crossarb/internal/domain"
)

// TradeStore implements domain.TradeStore using PostgreSQL.
type TradeStore struct {
	pool *pgxpool.Pool
}

// NewTradeStore creates a TradeStore backed by the given connection pool.
func NewTradeStore(pool *pgxpool.Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Insert stores one execution leg.
func (s *TradeStore) Insert(ctx context.Context, t domain.Trade) error {
	const query = `
		INSERT INTO trades (
			id, opportunity_id, exchange, symbol, side, order_type,
			price, quantity, executed_quantity, external_order_id,
			status, created_at, executed_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10,
			$11, $12, $13
		)`

	_, err := s.pool.Exec(ctx, query,
		t.ID, t.OpportunityID, string(t.Exchange), t.Symbol,
		string(t.Side), string(t.OrderType),
		t.Price, t.Quantity, t.ExecutedQuantity, t.ExternalOrderID,
		t.Status, t.CreatedAt, t.ExecutedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert trade %s: %w", t.ID, err)
	}
	return nil
}

// ListByOpportunity returns the trades for one opportunity, oldest first.
func (s *TradeStore) ListByOpportunity(ctx context.Context, opportunityID string) ([]domain.Trade, error) {
	const query = `
		SELECT id, opportunity_id, exchange, symbol, side, order_type,
			price, quantity, executed_quantity, external_order_id,
			status, created_at, executed_at
		FROM trades
		WHERE opportunity_id = $1
		ORDER BY created_at`

	rows, err := s.pool.Query(ctx, query, opportunityID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list trades %s: %w", opportunityID, err)
	}
	defer rows.Close()

	var trades []domain.Trade
	for rows.Next() {
		var (
			t                       domain.Trade
			exchange, side, ordType string
		)
		if err := rows.Scan(
			&t.ID, &t.OpportunityID, &exchange, &t.Symbol, &side, &ordType,
			&t.Price, &t.Quantity, &t.ExecutedQuantity, &t.ExternalOrderID,
			&t.Status, &t.CreatedAt, &t.ExecutedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan trade: %w", err)
		}
		t.Exchange = domain.ExchangeType(exchange)
		t.Side = domain.OrderSide(side)
		t.OrderType = domain.OrderType(ordType)
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list trades rows: %w", err)
	}
	return trades, nil
}
