package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// QuoteStore persists price quotes append-only. One row per
// (exchange, symbol, observedAt); rows are never updated.
type QuoteStore interface {
	// Insert stores a new quote observation.
	Insert(ctx context.Context, q PriceQuote) error

	// LatestForSymbol returns the single most recent quote per exchange for
	// the symbol: at most one entry per distinct exchange.
	LatestForSymbol(ctx context.Context, symbol string) ([]PriceQuote, error)

	// Latest returns the most recent quote for one exchange and symbol.
	// Returns ErrNotFound when no quote exists.
	Latest(ctx context.Context, exchange ExchangeType, symbol string) (PriceQuote, error)

	// PurgeBefore deletes quotes observed before the cutoff and returns the
	// number of rows removed.
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// OpportunityStore persists arbitrage opportunities. Opportunities are never
// deleted; only their status and execution stamps change.
type OpportunityStore interface {
	// InsertBatch stores all opportunities atomically: either every element
	// is persisted or none is.
	InsertBatch(ctx context.Context, opps []ArbitrageOpportunity) error

	// GetByID returns ErrNotFound for unknown ids.
	GetByID(ctx context.Context, id string) (ArbitrageOpportunity, error)

	// ListProfitable returns opportunities in the given status whose profit
	// percentage is at least minProfit, ordered by profit descending.
	ListProfitable(ctx context.Context, status OpportunityStatus, minProfit decimal.Decimal) ([]ArbitrageOpportunity, error)

	// HasOpen reports whether a DETECTED opportunity already exists for the
	// (symbol, buy, sell) tuple.
	HasOpen(ctx context.Context, symbol string, buy, sell ExchangeType) (bool, error)

	// ClaimForExecution atomically transitions the opportunity from DETECTED
	// to EXECUTING and stamps executedAt. It returns ErrNotFound for unknown
	// ids and ErrNotExecutable when the opportunity exists but is not in
	// DETECTED status. The conditional write is the mutual-exclusion guard:
	// of two concurrent claims for one id, exactly one succeeds.
	ClaimForExecution(ctx context.Context, id string, executedAt time.Time) error

	// MarkCompleted finalizes a successful execution.
	MarkCompleted(ctx context.Context, id, details string, completedAt time.Time) error

	// MarkFailed finalizes a failed execution with the error message.
	MarkFailed(ctx context.Context, id, details string) error
}

// TradeStore persists execution legs. Trade rows are write-once.
type TradeStore interface {
	Insert(ctx context.Context, t Trade) error
	ListByOpportunity(ctx context.Context, opportunityID string) ([]Trade, error)
}

// QuoteCache is a fast-path cache for the most recent quote per
// (exchange, symbol). Implementations must return ErrNotFound on miss.
type QuoteCache interface {
	SetLatest(ctx context.Context, q PriceQuote) error
	GetLatest(ctx context.Context, exchange ExchangeType, symbol string) (PriceQuote, error)
}
