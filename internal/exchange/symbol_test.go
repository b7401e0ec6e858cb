package exchange

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBinanceSymbols(t *testing.T) {
	assert.Equal(t, "BTCUSDT", binanceToNative("BTC/USDT"))
	assert.Equal(t, "BTC/USDT", binanceFromNative("BTCUSDT"))
	assert.Equal(t, "ETH/BTC", binanceFromNative("ETHBTC"))

	// Unknown quote currencies pass through.
	assert.Equal(t, "DOGEEUR", binanceFromNative("DOGEEUR"))
}

func TestBybitSymbols(t *testing.T) {
	assert.Equal(t, "BTCUSDT", bybitToNative("BTC/USDT"))
	assert.Equal(t, "BTC/USDT", bybitFromNative("BTCUSDT"))

	// Only USDT pairs are recognized.
	assert.Equal(t, "ETHBTC", bybitFromNative("ETHBTC"))
}

func TestDashSymbols(t *testing.T) {
	assert.Equal(t, "BTC-USDT", dashToNative("BTC/USDT"))
	assert.Equal(t, "BTC/USDT", dashFromNative("BTC-USDT"))
	assert.Equal(t, "ETH/USD", dashFromNative("ETH-USD"))
}

func TestKrakenSymbols(t *testing.T) {
	assert.Equal(t, "XBTUSDT", krakenToNative("BTC/USDT"))
	assert.Equal(t, "ETHUSDT", krakenToNative("ETH/USDT"))
	assert.Equal(t, "XBTUSD", krakenToNative("BTC/USD"))

	// Pairs outside the table fall back to stripping the separator.
	assert.Equal(t, "SOLUSDT", krakenToNative("SOL/USDT"))

	assert.Equal(t, "BTC/USDT", krakenFromNative("XBTUSDT"))
	assert.Equal(t, "ETH/USD", krakenFromNative("ETHUSD"))
	assert.Equal(t, "SOLUSDT", krakenFromNative("SOLUSDT"))
}

func TestKrakenTableRoundTrips(t *testing.T) {
	for canonical := range krakenSymbols {
		assert.Equal(t, canonical, krakenFromNative(krakenToNative(canonical)))
	}
}
