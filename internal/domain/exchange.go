// Package domain defines the core data model shared by all layers: exchanges,
// price quotes, arbitrage opportunities, trades, and the store interfaces they
// are persisted through.
package domain

import (
	"fmt"
	"strings"
)

// ExchangeType identifies a supported cryptocurrency exchange.
type ExchangeType string

const (
	ExchangeBinance  ExchangeType = "BINANCE"
	ExchangeCoinbase ExchangeType = "COINBASE"
	ExchangeKraken   ExchangeType = "KRAKEN"
	ExchangeKuCoin   ExchangeType = "KUCOIN"
	ExchangeBybit    ExchangeType = "BYBIT"
	ExchangeOKX      ExchangeType = "OKX"
)

// AllExchangeTypes lists every supported exchange in a stable order.
func AllExchangeTypes() []ExchangeType {
	return []ExchangeType{
		ExchangeBinance,
		ExchangeCoinbase,
		ExchangeKraken,
		ExchangeKuCoin,
		ExchangeBybit,
		ExchangeOKX,
	}
}

var displayNames = map[ExchangeType]string{
	ExchangeBinance:  "Binance",
	ExchangeCoinbase: "Coinbase",
	ExchangeKraken:   "Kraken",
	ExchangeKuCoin:   "KuCoin",
	ExchangeBybit:    "Bybit",
	ExchangeOKX:      "OKX",
}

// DisplayName returns the human-readable exchange name.
func (e ExchangeType) DisplayName() string {
	if name, ok := displayNames[e]; ok {
		return name
	}
	return string(e)
}

// ParseExchangeType converts a case-insensitive exchange name into an
// ExchangeType. It returns ErrExchangeUnavailable for unknown names.
func ParseExchangeType(s string) (ExchangeType, error) {
	e := ExchangeType(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := displayNames[e]; !ok {
		return "", fmt.Errorf("unknown exchange %q: %w", s, ErrExchangeUnavailable)
	}
	return e, nil
}
