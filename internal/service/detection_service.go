package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"crossarb/internal/arbitrage"
	"crossarb/internal/domain"
)

// estimateQuantity is the fixed reference quantity used to express an
// opportunity's estimated profit. It is a display figure, not a trade size.
var estimateQuantity = decimal.NewFromInt(1000)

// DetectionService finds cross-exchange arbitrage opportunities from the
// latest stored quotes and records them.
type DetectionService struct {
	prices        *PriceService
	opportunities domain.OpportunityStore
	logger        *slog.Logger
}

// NewDetectionService creates a detection service.
func NewDetectionService(prices *PriceService, opportunities domain.OpportunityStore, logger *slog.Logger) *DetectionService {
	return &DetectionService{
		prices:        prices,
		opportunities: opportunities,
		logger:        logger.With(slog.String("component", "detection_service")),
	}
}

// DetectSimple reads the latest stored quote per exchange for the symbol and
// scans every ordered exchange pair for a profitable spread: buy at one
// venue's ask, sell at another's bid. Opportunities at or above minProfit (a
// percentage) are recorded; candidates whose (symbol, buy, sell) tuple already
// has an open opportunity are skipped. The detected batch is persisted
// atomically and returned.
func (s *DetectionService) DetectSimple(ctx context.Context, symbol string, minProfit decimal.Decimal) ([]domain.ArbitrageOpportunity, error) {
	quotes, err := s.prices.LatestQuotes(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("service: detect %s: %w", symbol, err)
	}
	if len(quotes) < 2 {
		s.logger.Debug("not enough quotes for detection",
			slog.String("symbol", symbol),
			slog.Int("quotes", len(quotes)),
		)
		return nil, nil
	}

	now := time.Now().UTC()
	var detected []domain.ArbitrageOpportunity
	for _, buyQ := range quotes {
		for _, sellQ := range quotes {
			if buyQ.Exchange == sellQ.Exchange {
				continue
			}
			if !buyQ.HasAsk() || !sellQ.HasBid() {
				continue
			}

			profit := arbitrage.ProfitPercentage(buyQ.AskPrice, sellQ.BidPrice)
			if profit.LessThan(minProfit) {
				continue
			}

			open, err := s.opportunities.HasOpen(ctx, symbol, buyQ.Exchange, sellQ.Exchange)
			if err != nil {
				return nil, fmt.Errorf("service: check open opportunity: %w", err)
			}
			if open {
				continue
			}

			detected = append(detected, domain.ArbitrageOpportunity{
				ID:               uuid.New().String(),
				Type:             domain.ArbitrageSimple,
				Symbol:           symbol,
				BuyExchange:      buyQ.Exchange,
				SellExchange:     sellQ.Exchange,
				BuyPrice:         buyQ.AskPrice,
				SellPrice:        sellQ.BidPrice,
				ProfitPercentage: profit,
				EstimatedProfit:  arbitrage.EstimatedProfit(buyQ.AskPrice, sellQ.BidPrice, estimateQuantity),
				Status:           domain.OpportunityDetected,
				DetectedAt:       now,
			})
		}
	}

	if len(detected) == 0 {
		return nil, nil
	}
	if err := s.opportunities.InsertBatch(ctx, detected); err != nil {
		return nil, fmt.Errorf("service: insert opportunities: %w", err)
	}
	for _, opp := range detected {
		s.logger.Info("arbitrage opportunity detected",
			slog.String("id", opp.ID),
			slog.String("symbol", opp.Symbol),
			slog.String("buy_exchange", string(opp.BuyExchange)),
			slog.String("sell_exchange", string(opp.SellExchange)),
			slog.String("profit_pct", opp.ProfitPercentage.String()),
		)
	}
	return detected, nil
}

// ProfitableOpportunities lists DETECTED opportunities at or above minProfit,
// most profitable first.
func (s *DetectionService) ProfitableOpportunities(ctx context.Context, minProfit decimal.Decimal) ([]domain.ArbitrageOpportunity, error) {
	opps, err := s.opportunities.ListProfitable(ctx, domain.OpportunityDetected, minProfit)
	if err != nil {
		return nil, fmt.Errorf("service: list opportunities: %w", err)
	}
	return opps, nil
}

// GetOpportunity returns one opportunity by id; domain.ErrNotFound for
// unknown ids.
func (s *DetectionService) GetOpportunity(ctx context.Context, id string) (domain.ArbitrageOpportunity, error) {
	opp, err := s.opportunities.GetByID(ctx, id)
	if err != nil {
		return domain.ArbitrageOpportunity{}, fmt.Errorf("service: get opportunity %s: %w", id, err)
	}
	return opp, nil
}
