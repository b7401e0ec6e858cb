package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"crossarb/internal/domain"
)

// OpportunityStore implements domain.OpportunityStore using PostgreSQL.
type OpportunityStore struct {
	pool *pgxpool.Pool
}

// NewOpportunityStore creates an OpportunityStore backed by the given pool.
func NewOpportunityStore(pool *pgxpool.Pool) *OpportunityStore {
	return &OpportunityStore{pool: pool}
}

const oppSelectCols = `id, type, symbol, buy_exchange, sell_exchange,
	buy_price, sell_price, profit_percentage, estimated_profit,
	status, execution_details, detected_at, executed_at, completed_at`

// InsertBatch stores all opportunities in one transaction.
func (s *OpportunityStore) InsertBatch(ctx context.Context, opps []domain.ArbitrageOpportunity) error {
	if len(opps) == 0 {
		return nil
	}

	const query = `
		INSERT INTO arbitrage_opportunities (
			id, type, symbol, buy_exchange, sell_exchange,
			buy_price, sell_price, profit_percentage, estimated_profit,
			status, execution_details, detected_at, executed_at, completed_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			$10, $11, $12, $13, $14
		)`

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin insert opportunities: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, opp := range opps {
		if _, err := tx.Exec(ctx, query,
			opp.ID, string(opp.Type), opp.Symbol,
			string(opp.BuyExchange), string(opp.SellExchange),
			opp.BuyPrice, opp.SellPrice, opp.ProfitPercentage, opp.EstimatedProfit,
			string(opp.Status), opp.ExecutionDetails, opp.DetectedAt,
			opp.ExecutedAt, opp.CompletedAt,
		); err != nil {
			return fmt.Errorf("postgres: insert opportunity %s: %w", opp.ID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit insert opportunities: %w", err)
	}
	return nil
}

// GetByID returns one opportunity; domain.ErrNotFound for unknown ids.
func (s *OpportunityStore) GetByID(ctx context.Context, id string) (domain.ArbitrageOpportunity, error) {
	query := `SELECT ` + oppSelectCols + ` FROM arbitrage_opportunities WHERE id = $1`

	opp, err := scanOpportunity(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ArbitrageOpportunity{}, domain.ErrNotFound
		}
		return domain.ArbitrageOpportunity{}, fmt.Errorf("postgres: get opportunity %s: %w", id, err)
	}
	return opp, nil
}

// ListProfitable returns opportunities in the given status at or above
// minProfit, most profitable first.
func (s *OpportunityStore) ListProfitable(ctx context.Context, status domain.OpportunityStatus, minProfit decimal.Decimal) ([]domain.ArbitrageOpportunity, error) {
	query := `SELECT ` + oppSelectCols + `
		FROM arbitrage_opportunities
		WHERE status = $1 AND profit_percentage >= $2
		ORDER BY profit_percentage DESC`

	rows, err := s.pool.Query(ctx, query, string(status), minProfit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list opportunities: %w", err)
	}
	defer rows.Close()

	var opps []domain.ArbitrageOpportunity
	for rows.Next() {
		opp, err := scanOpportunity(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan opportunity: %w", err)
		}
		opps = append(opps, opp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list opportunities rows: %w", err)
	}
	return opps, nil
}

// HasOpen reports whether a DETECTED opportunity exists for the tuple.
func (s *OpportunityStore) HasOpen(ctx context.Context, symbol string, buy, sell domain.ExchangeType) (bool, error) {
	const query = `
		SELECT EXISTS(
			SELECT 1 FROM arbitrage_opportunities
			WHERE symbol = $1 AND buy_exchange = $2 AND sell_exchange = $3
			  AND status = 'DETECTED'
		)`

	var exists bool
	err := s.pool.QueryRow(ctx, query, symbol, string(buy), string(sell)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("postgres: check open opportunity: %w", err)
	}
	return exists, nil
}

// ClaimForExecution transitions DETECTED -> EXECUTING. The status predicate
// in the UPDATE is the concurrency guard: only one claimant sees a row
// affected.
func (s *OpportunityStore) ClaimForExecution(ctx context.Context, id string, executedAt time.Time) error {
	const query = `
		UPDATE arbitrage_opportunities SET
			status      = 'EXECUTING',
			executed_at = $2
		WHERE id = $1 AND status = 'DETECTED'`

	tag, err := s.pool.Exec(ctx, query, id, executedAt)
	if err != nil {
		return fmt.Errorf("postgres: claim opportunity %s: %w", id, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// Nothing claimed: distinguish missing from not-claimable.
	var exists bool
	err = s.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM arbitrage_opportunities WHERE id = $1)", id,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("postgres: claim opportunity %s: %w", id, err)
	}
	if !exists {
		return domain.ErrNotFound
	}
	return domain.ErrNotExecutable
}

// MarkCompleted finalizes a successful execution.
func (s *OpportunityStore) MarkCompleted(ctx context.Context, id, details string, completedAt time.Time) error {
	const query = `
		UPDATE arbitrage_opportunities SET
			status            = 'COMPLETED',
			execution_details = $2,
			completed_at      = $3
		WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query, id, details, completedAt)
	if err != nil {
		return fmt.Errorf("postgres: mark opportunity completed %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkFailed finalizes a failed execution.
func (s *OpportunityStore) MarkFailed(ctx context.Context, id, details string) error {
	const query = `
		UPDATE arbitrage_opportunities SET
			status            = 'FAILED',
			execution_details = $2
		WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query, id, details)
	if err != nil {
		return fmt.Errorf("postgres: mark opportunity failed %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanOpportunity(row pgx.Row) (domain.ArbitrageOpportunity, error) {
	var (
		opp                        domain.ArbitrageOpportunity
		typ, status, buyEx, sellEx string
	)
	if err := row.Scan(
		&opp.ID, &typ, &opp.Symbol, &buyEx, &sellEx,
		&opp.BuyPrice, &opp.SellPrice, &opp.ProfitPercentage, &opp.EstimatedProfit,
		&status, &opp.ExecutionDetails, &opp.DetectedAt, &opp.ExecutedAt, &opp.CompletedAt,
	); err != nil {
		return domain.ArbitrageOpportunity{}, err
	}
	opp.Type = domain.ArbitrageType(typ)
	opp.Status = domain.OpportunityStatus(status)
	opp.BuyExchange = domain.ExchangeType(buyEx)
	opp.SellExchange = domain.ExchangeType(sellEx)
	return opp, nil
}
