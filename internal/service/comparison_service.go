package service

import (
	"context"
	"log/slog"

	"crossarb/internal/arbitrage"
	"crossarb/internal/domain"
)

// ComparisonService builds cross-exchange price summaries for display. It
// reads live quotes and computes the best venues to buy and sell, without
// recording anything.
type ComparisonService struct {
	prices *PriceService
	logger *slog.Logger
}

// NewComparisonService creates a comparison service.
func NewComparisonService(prices *PriceService, logger *slog.Logger) *ComparisonService {
	return &ComparisonService{
		prices: prices,
		logger: logger.With(slog.String("component", "comparison_service")),
	}
}

// Compare fetches live quotes for the symbol and summarizes them: lowest ask
// is the best buy, highest bid the best sell. HasArbitrage is set when
// selling at the best bid beats buying at the best ask.
func (s *ComparisonService) Compare(ctx context.Context, symbol string) domain.PriceComparison {
	quotes := s.prices.FetchAllExchanges(ctx, symbol)
	return buildComparison(symbol, quotes)
}

// CompareMany builds one comparison per symbol.
func (s *ComparisonService) CompareMany(ctx context.Context, symbols []string) []domain.PriceComparison {
	out := make([]domain.PriceComparison, 0, len(symbols))
	for _, symbol := range symbols {
		out = append(out, s.Compare(ctx, symbol))
	}
	return out
}

func buildComparison(symbol string, quotes []domain.PriceQuote) domain.PriceComparison {
	cmp := domain.PriceComparison{
		Symbol:        symbol,
		ExchangeCount: len(quotes),
		Quotes:        quotes,
	}

	for _, q := range quotes {
		if q.HasAsk() && (cmp.BestBuyExchange == "" || q.AskPrice.LessThan(cmp.BestBuyPrice)) {
			cmp.BestBuyExchange = q.Exchange
			cmp.BestBuyPrice = q.AskPrice
		}
		if q.HasBid() && (cmp.BestSellExchange == "" || q.BidPrice.GreaterThan(cmp.BestSellPrice)) {
			cmp.BestSellExchange = q.Exchange
			cmp.BestSellPrice = q.BidPrice
		}
	}

	if cmp.BestBuyExchange != "" && cmp.BestSellExchange != "" && cmp.BestSellPrice.GreaterThan(cmp.BestBuyPrice) {
		cmp.HasArbitrage = true
		cmp.ArbitrageProfit = cmp.BestSellPrice.Sub(cmp.BestBuyPrice)
		cmp.ArbitrageProfitPercentage = arbitrage.ProfitPercentage(cmp.BestBuyPrice, cmp.BestSellPrice)
	}
	return cmp
}
