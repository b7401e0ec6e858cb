package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceQuote is a point-in-time price observation for one symbol on one
// exchange. Quotes are immutable once created; newer observations supersede
// older ones rather than mutating them.
//
// BidPrice and AskPrice are "present" when strictly positive. Some exchange
// ticker dumps omit one side; consumers must check before using either side.
type PriceQuote struct {
	Exchange   ExchangeType        `json:"exchange"`
	Symbol     string              `json:"symbol"`
	BidPrice   decimal.Decimal     `json:"bid_price"`
	AskPrice   decimal.Decimal     `json:"ask_price"`
	LastPrice  decimal.Decimal     `json:"last_price"`
	Volume24h  decimal.NullDecimal `json:"volume_24h"`
	ObservedAt time.Time           `json:"observed_at"`
}

// HasBid reports whether the bid side is present.
func (q PriceQuote) HasBid() bool {
	return q.BidPrice.IsPositive()
}

// HasAsk reports whether the ask side is present.
func (q PriceQuote) HasAsk() bool {
	return q.AskPrice.IsPositive()
}
