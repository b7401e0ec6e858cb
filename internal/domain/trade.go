package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderSide is the direction of one leg of an execution.
type OrderSide string

const (
	SideBuy  OrderSide = "BUY"
	SideSell OrderSide = "SELL"
)

// OrderType is the order kind submitted to an exchange. Executions currently
// only place market orders.
type OrderType string

const (
	OrderMarket OrderType = "MARKET"
)

// Trade order statuses as reported by exchanges. A Trade row records the
// status at creation time only; it is not re-polled afterwards.
const (
	TradeStatusNew             = "NEW"
	TradeStatusFilled          = "FILLED"
	TradeStatusPartiallyFilled = "PARTIALLY_FILLED"
	TradeStatusCancelled       = "CANCELLED"
)

// Trade is one leg (buy or sell) of an opportunity's execution. A trade
// belongs to exactly one opportunity and is immutable once recorded.
type Trade struct {
	ID               string          `json:"id"`
	OpportunityID    string          `json:"opportunity_id"`
	Exchange         ExchangeType    `json:"exchange"`
	Symbol           string          `json:"symbol"`
	Side             OrderSide       `json:"side"`
	OrderType        OrderType       `json:"order_type"`
	Price            decimal.Decimal `json:"price"`
	Quantity         decimal.Decimal `json:"quantity"`
	ExecutedQuantity decimal.Decimal `json:"executed_quantity"`
	ExternalOrderID  string          `json:"external_order_id"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	ExecutedAt       *time.Time      `json:"executed_at,omitempty"`
}
