package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ArbitrageType classifies how an opportunity would be realized.
type ArbitrageType string

const (
	// ArbitrageSimple is a two-exchange trade: buy on one venue, sell on
	// another. The only type currently produced by the detector.
	ArbitrageSimple ArbitrageType = "SIMPLE"
)

// OpportunityStatus is the lifecycle state of an ArbitrageOpportunity.
type OpportunityStatus string

const (
	OpportunityDetected  OpportunityStatus = "DETECTED"
	OpportunityExecuting OpportunityStatus = "EXECUTING"
	OpportunityCompleted OpportunityStatus = "COMPLETED"
	OpportunityFailed    OpportunityStatus = "FAILED"
)

// Terminal reports whether the status admits no further transitions.
func (s OpportunityStatus) Terminal() bool {
	return s == OpportunityCompleted || s == OpportunityFailed
}

// ArbitrageOpportunity is a detected price discrepancy between two exchanges
// for one symbol. Opportunities are never deleted; they form an audit trail
// and only their status (and execution stamps) change after creation.
type ArbitrageOpportunity struct {
	ID               string            `json:"id"`
	Type             ArbitrageType     `json:"type"`
	Symbol           string            `json:"symbol"`
	BuyExchange      ExchangeType      `json:"buy_exchange"`
	SellExchange     ExchangeType      `json:"sell_exchange"`
	BuyPrice         decimal.Decimal   `json:"buy_price"`
	SellPrice        decimal.Decimal   `json:"sell_price"`
	ProfitPercentage decimal.Decimal   `json:"profit_percentage"`
	EstimatedProfit  decimal.Decimal   `json:"estimated_profit"`
	Status           OpportunityStatus `json:"status"`
	ExecutionDetails string            `json:"execution_details,omitempty"`
	DetectedAt       time.Time         `json:"detected_at"`
	ExecutedAt       *time.Time        `json:"executed_at,omitempty"`
	CompletedAt      *time.Time        `json:"completed_at,omitempty"`
}
