package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"crossarb/internal/domain"
)

// QuoteStore implements domain.QuoteStore using PostgreSQL.
type QuoteStore struct {
	pool *pgxpool.Pool
}

// NewQuoteStore creates a QuoteStore backed by the given connection pool.
func NewQuoteStore(pool *pgxpool.Pool) *QuoteStore {
	return &QuoteStore{pool: pool}
}

const quoteSelectCols = `exchange, symbol, bid_price, ask_price, last_price,
	volume_24h, observed_at`

// Insert stores a new quote observation.
func (s *QuoteStore) Insert(ctx context.Context, q domain.PriceQuote) error {
	const query = `
		INSERT INTO price_quotes (
			exchange, symbol, bid_price, ask_price, last_price,
			volume_24h, observed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.pool.Exec(ctx, query,
		string(q.Exchange), q.Symbol, q.BidPrice, q.AskPrice, q.LastPrice,
		q.Volume24h, q.ObservedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert quote %s %s: %w", q.Exchange, q.Symbol, err)
	}
	return nil
}

// LatestForSymbol returns the most recent quote per exchange for the symbol.
func (s *QuoteStore) LatestForSymbol(ctx context.Context, symbol string) ([]domain.PriceQuote, error) {
	query := `SELECT DISTINCT ON (exchange) ` + quoteSelectCols + `
		FROM price_quotes
		WHERE symbol = $1
		ORDER BY exchange, observed_at DESC`

	rows, err := s.pool.Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("postgres: latest quotes for %s: %w", symbol, err)
	}
	defer rows.Close()

	var quotes []domain.PriceQuote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan quote: %w", err)
		}
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: latest quotes rows: %w", err)
	}
	return quotes, nil
}

// Latest returns the most recent quote for one exchange and symbol.
func (s *QuoteStore) Latest(ctx context.Context, exchange domain.ExchangeType, symbol string) (domain.PriceQuote, error) {
	query := `SELECT ` + quoteSelectCols + `
		FROM price_quotes
		WHERE exchange = $1 AND symbol = $2
		ORDER BY observed_at DESC
		LIMIT 1`

	row := s.pool.QueryRow(ctx, query, string(exchange), symbol)
	q, err := scanQuote(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PriceQuote{}, domain.ErrNotFound
		}
		return domain.PriceQuote{}, fmt.Errorf("postgres: latest quote %s %s: %w", exchange, symbol, err)
	}
	return q, nil
}

// PurgeBefore deletes quotes observed before the cutoff.
func (s *QuoteStore) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM price_quotes WHERE observed_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("postgres: purge quotes: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanQuote(row pgx.Row) (domain.PriceQuote, error) {
	var (
		q        domain.PriceQuote
		exchange string
	)
	if err := row.Scan(
		&exchange, &q.Symbol, &q.BidPrice, &q.AskPrice, &q.LastPrice,
		&q.Volume24h, &q.ObservedAt,
	); err != nil {
		return domain.PriceQuote{}, err
	}
	q.Exchange = domain.ExchangeType(exchange)
	return q, nil
}
