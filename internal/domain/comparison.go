package domain

import "github.com/shopspring/decimal"

// PriceComparison summarizes one symbol's live quotes across exchanges: the
// cheapest venue to buy (lowest ask), the best venue to sell (highest bid),
// and the spread between them if it is profitable.
type PriceComparison struct {
	Symbol                    string          `json:"symbol"`
	ExchangeCount             int             `json:"exchange_count"`
	Quotes                    []PriceQuote    `json:"quotes"`
	BestBuyExchange           ExchangeType    `json:"best_buy_exchange,omitempty"`
	BestBuyPrice              decimal.Decimal `json:"best_buy_price"`
	BestSellExchange          ExchangeType    `json:"best_sell_exchange,omitempty"`
	BestSellPrice             decimal.Decimal `json:"best_sell_price"`
	ArbitrageProfit           decimal.Decimal `json:"arbitrage_profit"`
	ArbitrageProfitPercentage decimal.Decimal `json:"arbitrage_profit_percentage"`
	HasArbitrage              bool            `json:"has_arbitrage"`
}
