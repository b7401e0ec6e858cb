// Package memory provides mutex-guarded in-memory implementations of the
// domain store interfaces. They back tests and ad-hoc runs without a
// database; semantics mirror the postgres implementations.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"crossarb/internal/domain"
)

// QuoteStore is an in-memory domain.QuoteStore.
type QuoteStore struct {
	mu     sync.RWMutex
	quotes []domain.PriceQuote
}

// NewQuoteStore creates an empty quote store.
func NewQuoteStore() *QuoteStore {
	return &QuoteStore{}
}

func (s *QuoteStore) Insert(_ context.Context, q domain.PriceQuote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes = append(s.quotes, q)
	return nil
}

func (s *QuoteStore) LatestForSymbol(_ context.Context, symbol string) ([]domain.PriceQuote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := make(map[domain.ExchangeType]domain.PriceQuote)
	for _, q := range s.quotes {
		if q.Symbol != symbol {
			continue
		}
		if cur, ok := latest[q.Exchange]; !ok || q.ObservedAt.After(cur.ObservedAt) {
			latest[q.Exchange] = q
		}
	}

	out := make([]domain.PriceQuote, 0, len(latest))
	for _, q := range latest {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Exchange < out[j].Exchange })
	return out, nil
}

func (s *QuoteStore) Latest(_ context.Context, exchange domain.ExchangeType, symbol string) (domain.PriceQuote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		found  bool
		latest domain.PriceQuote
	)
	for _, q := range s.quotes {
		if q.Exchange != exchange || q.Symbol != symbol {
			continue
		}
		if !found || q.ObservedAt.After(latest.ObservedAt) {
			latest = q
			found = true
		}
	}
	if !found {
		return domain.PriceQuote{}, domain.ErrNotFound
	}
	return latest, nil
}

func (s *QuoteStore) PurgeBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.quotes[:0]
	var deleted int64
	for _, q := range s.quotes {
		if q.ObservedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, q)
	}
	s.quotes = kept
	return deleted, nil
}

// OpportunityStore is an in-memory domain.OpportunityStore.
type OpportunityStore struct {
	mu   sync.Mutex
	opps map[string]domain.ArbitrageOpportunity
}

// NewOpportunityStore creates an empty opportunity store.
func NewOpportunityStore() *OpportunityStore {
	return &OpportunityStore{opps: make(map[string]domain.ArbitrageOpportunity)}
}

func (s *OpportunityStore) InsertBatch(_ context.Context, opps []domain.ArbitrageOpportunity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, opp := range opps {
		s.opps[opp.ID] = opp
	}
	return nil
}

func (s *OpportunityStore) GetByID(_ context.Context, id string) (domain.ArbitrageOpportunity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	opp, ok := s.opps[id]
	if !ok {
		return domain.ArbitrageOpportunity{}, domain.ErrNotFound
	}
	return opp, nil
}

func (s *OpportunityStore) ListProfitable(_ context.Context, status domain.OpportunityStatus, minProfit decimal.Decimal) ([]domain.ArbitrageOpportunity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.ArbitrageOpportunity
	for _, opp := range s.opps {
		if opp.Status == status && opp.ProfitPercentage.GreaterThanOrEqual(minProfit) {
			out = append(out, opp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ProfitPercentage.GreaterThan(out[j].ProfitPercentage)
	})
	return out, nil
}

func (s *OpportunityStore) HasOpen(_ context.Context, symbol string, buy, sell domain.ExchangeType) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, opp := range s.opps {
		if opp.Status == domain.OpportunityDetected &&
			opp.Symbol == symbol && opp.BuyExchange == buy && opp.SellExchange == sell {
			return true, nil
		}
	}
	return false, nil
}

func (s *OpportunityStore) ClaimForExecution(_ context.Context, id string, executedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	opp, ok := s.opps[id]
	if !ok {
		return domain.ErrNotFound
	}
	if opp.Status != domain.OpportunityDetected {
		return domain.ErrNotExecutable
	}
	opp.Status = domain.OpportunityExecuting
	opp.ExecutedAt = &executedAt
	s.opps[id] = opp
	return nil
}

func (s *OpportunityStore) MarkCompleted(_ context.Context, id, details string, completedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	opp, ok := s.opps[id]
	if !ok {
		return domain.ErrNotFound
	}
	opp.Status = domain.OpportunityCompleted
	opp.ExecutionDetails = details
	opp.CompletedAt = &completedAt
	s.opps[id] = opp
	return nil
}

func (s *OpportunityStore) MarkFailed(_ context.Context, id, details string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	opp, ok := s.opps[id]
	if !ok {
		return domain.ErrNotFound
	}
	opp.Status = domain.OpportunityFailed
	opp.ExecutionDetails = details
	s.opps[id] = opp
	return nil
}

// TradeStore is an in-memory domain.TradeStore.
type TradeStore struct {
	mu     sync.Mutex
	trades []domain.Trade
}

// NewTradeStore creates an empty trade store.
func NewTradeStore() *TradeStore {
	return &TradeStore{}
}

func (s *TradeStore) Insert(_ context.Context, t domain.Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trades = append(s.trades, t)
	return nil
}

func (s *TradeStore) ListByOpportunity(_ context.Context, opportunityID string) ([]domain.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Trade
	for _, t := range s.trades {
		if t.OpportunityID == opportunityID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
