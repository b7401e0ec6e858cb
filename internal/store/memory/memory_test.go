package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crossarb/internal/domain"
)

func quote(ex domain.ExchangeType, symbol string, bid string, at time.Time) domain.PriceQuote {
	return domain.PriceQuote{
		Exchange:   ex,
		Symbol:     symbol,
		BidPrice:   decimal.RequireFromString(bid),
		AskPrice:   decimal.RequireFromString(bid).Add(decimal.NewFromInt(1)),
		LastPrice:  decimal.RequireFromString(bid),
		ObservedAt: at,
	}
}

func TestQuoteStoreLatestPerExchange(t *testing.T) {
	ctx := context.Background()
	s := NewQuoteStore()
	base := time.Now().UTC()

	require.NoError(t, s.Insert(ctx, quote(domain.ExchangeBinance, "BTC/USDT", "100", base)))
	require.NoError(t, s.Insert(ctx, quote(domain.ExchangeBinance, "BTC/USDT", "101", base.Add(time.Second))))
	require.NoError(t, s.Insert(ctx, quote(domain.ExchangeKraken, "BTC/USDT", "102", base)))
	require.NoError(t, s.Insert(ctx, quote(domain.ExchangeKraken, "ETH/USDT", "50", base)))

	quotes, err := s.LatestForSymbol(ctx, "BTC/USDT")
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	// One entry per exchange, the newest one.
	assert.Equal(t, domain.ExchangeBinance, quotes[0].Exchange)
	assert.True(t, quotes[0].BidPrice.Equal(decimal.RequireFromString("101")))
	assert.Equal(t, domain.ExchangeKraken, quotes[1].Exchange)
}

func TestQuoteStoreLatest(t *testing.T) {
	ctx := context.Background()
	s := NewQuoteStore()
	base := time.Now().UTC()

	_, err := s.Latest(ctx, domain.ExchangeBinance, "BTC/USDT")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, s.Insert(ctx, quote(domain.ExchangeBinance, "BTC/USDT", "100", base)))
	require.NoError(t, s.Insert(ctx, quote(domain.ExchangeBinance, "BTC/USDT", "105", base.Add(time.Minute))))

	q, err := s.Latest(ctx, domain.ExchangeBinance, "BTC/USDT")
	require.NoError(t, err)
	assert.True(t, q.BidPrice.Equal(decimal.RequireFromString("105")))
}

func TestQuoteStorePurgeBefore(t *testing.T) {
	ctx := context.Background()
	s := NewQuoteStore()
	base := time.Now().UTC()

	require.NoError(t, s.Insert(ctx, quote(domain.ExchangeBinance, "BTC/USDT", "100", base.Add(-48*time.Hour))))
	require.NoError(t, s.Insert(ctx, quote(domain.ExchangeBinance, "BTC/USDT", "101", base.Add(-1*time.Hour))))
	require.NoError(t, s.Insert(ctx, quote(domain.ExchangeKraken, "BTC/USDT", "102", base)))

	deleted, err := s.PurgeBefore(ctx, base.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	quotes, err := s.LatestForSymbol(ctx, "BTC/USDT")
	require.NoError(t, err)
	assert.Len(t, quotes, 2)
}

func opp(id string, status domain.OpportunityStatus, profit string) domain.ArbitrageOpportunity {
	return domain.ArbitrageOpportunity{
		ID:               id,
		Type:             domain.ArbitrageSimple,
		Symbol:           "BTC/USDT",
		BuyExchange:      domain.ExchangeBinance,
		SellExchange:     domain.ExchangeKraken,
		BuyPrice:         decimal.RequireFromString("100"),
		SellPrice:        decimal.RequireFromString("102"),
		ProfitPercentage: decimal.RequireFromString(profit),
		EstimatedProfit:  decimal.RequireFromString("20"),
		Status:           status,
		DetectedAt:       time.Now().UTC(),
	}
}

func TestOpportunityStoreListProfitable(t *testing.T) {
	ctx := context.Background()
	s := NewOpportunityStore()

	require.NoError(t, s.InsertBatch(ctx, []domain.ArbitrageOpportunity{
		opp("a", domain.OpportunityDetected, "0.5"),
		opp("b", domain.OpportunityDetected, "2.0"),
		opp("c", domain.OpportunityDetected, "0.2"),
		opp("d", domain.OpportunityCompleted, "5.0"),
	}))

	got, err := s.ListProfitable(ctx, domain.OpportunityDetected, decimal.RequireFromString("0.5"))
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Most profitable first; threshold is inclusive; other statuses excluded.
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
}

func TestOpportunityStoreHasOpen(t *testing.T) {
	ctx := context.Background()
	s := NewOpportunityStore()

	open, err := s.HasOpen(ctx, "BTC/USDT", domain.ExchangeBinance, domain.ExchangeKraken)
	require.NoError(t, err)
	assert.False(t, open)

	require.NoError(t, s.InsertBatch(ctx, []domain.ArbitrageOpportunity{
		opp("a", domain.OpportunityDetected, "1.0"),
	}))

	open, err = s.HasOpen(ctx, "BTC/USDT", domain.ExchangeBinance, domain.ExchangeKraken)
	require.NoError(t, err)
	assert.True(t, open)

	// Reverse direction is a different tuple.
	open, err = s.HasOpen(ctx, "BTC/USDT", domain.ExchangeKraken, domain.ExchangeBinance)
	require.NoError(t, err)
	assert.False(t, open)
}

func TestOpportunityStoreClaimForExecution(t *testing.T) {
	ctx := context.Background()
	s := NewOpportunityStore()
	now := time.Now().UTC()

	assert.ErrorIs(t, s.ClaimForExecution(ctx, "missing", now), domain.ErrNotFound)

	require.NoError(t, s.InsertBatch(ctx, []domain.ArbitrageOpportunity{
		opp("a", domain.OpportunityDetected, "1.0"),
	}))

	require.NoError(t, s.ClaimForExecution(ctx, "a", now))

	got, err := s.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, domain.OpportunityExecuting, got.Status)
	require.NotNil(t, got.ExecutedAt)

	// A second claim loses.
	assert.ErrorIs(t, s.ClaimForExecution(ctx, "a", now), domain.ErrNotExecutable)
}

func TestOpportunityStoreConcurrentClaims(t *testing.T) {
	ctx := context.Background()
	s := NewOpportunityStore()
	now := time.Now().UTC()

	require.NoError(t, s.InsertBatch(ctx, []domain.ArbitrageOpportunity{
		opp("a", domain.OpportunityDetected, "1.0"),
	}))

	const claimants = 16
	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for i := 0; i < claimants; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.ClaimForExecution(ctx, "a", now) == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestOpportunityStoreMarkOutcomes(t *testing.T) {
	ctx := context.Background()
	s := NewOpportunityStore()
	now := time.Now().UTC()

	require.NoError(t, s.InsertBatch(ctx, []domain.ArbitrageOpportunity{
		opp("ok", domain.OpportunityExecuting, "1.0"),
		opp("bad", domain.OpportunityExecuting, "1.0"),
	}))

	require.NoError(t, s.MarkCompleted(ctx, "ok", "both legs filled", now))
	got, err := s.GetByID(ctx, "ok")
	require.NoError(t, err)
	assert.Equal(t, domain.OpportunityCompleted, got.Status)
	assert.Equal(t, "both legs filled", got.ExecutionDetails)
	require.NotNil(t, got.CompletedAt)

	require.NoError(t, s.MarkFailed(ctx, "bad", "sell leg failed"))
	got, err = s.GetByID(ctx, "bad")
	require.NoError(t, err)
	assert.Equal(t, domain.OpportunityFailed, got.Status)
	assert.Equal(t, "sell leg failed", got.ExecutionDetails)

	assert.ErrorIs(t, s.MarkCompleted(ctx, "missing", "", now), domain.ErrNotFound)
	assert.ErrorIs(t, s.MarkFailed(ctx, "missing", ""), domain.ErrNotFound)
}

func TestTradeStore(t *testing.T) {
	ctx := context.Background()
	s := NewTradeStore()
	base := time.Now().UTC()

	require.NoError(t, s.Insert(ctx, domain.Trade{
		ID: "t2", OpportunityID: "a", Side: domain.SideSell, CreatedAt: base.Add(time.Second),
	}))
	require.NoError(t, s.Insert(ctx, domain.Trade{
		ID: "t1", OpportunityID: "a", Side: domain.SideBuy, CreatedAt: base,
	}))
	require.NoError(t, s.Insert(ctx, domain.Trade{
		ID: "t3", OpportunityID: "other", Side: domain.SideBuy, CreatedAt: base,
	}))

	trades, err := s.ListByOpportunity(ctx, "a")
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, "t1", trades[0].ID)
	assert.Equal(t, "t2", trades[1].ID)
}
