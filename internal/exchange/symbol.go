package exchange

import "strings"

// Symbol conversion between the canonical "BASE/QUOTE" form and each
// exchange's native form. Native formats are venue idiosyncrasies with no
// general algorithm, so every exchange declares its own rule explicitly;
// each rule round-trips for all native symbols the venue can produce.

// binanceToNative converts "BTC/USDT" to "BTCUSDT".
func binanceToNative(symbol string) string {
	return strings.ReplaceAll(symbol, "/", "")
}

// binanceFromNative converts "BTCUSDT" to "BTC/USDT" by suffix-matching the
// known quote currencies. Unrecognized symbols pass through unchanged.
func binanceFromNative(native string) string {
	for _, quote := range []string{"USDT", "BTC"} {
		if strings.HasSuffix(native, quote) && len(native) > len(quote) {
			return native[:len(native)-len(quote)] + "/" + quote
		}
	}
	return native
}

// bybitToNative converts "BTC/USDT" to "BTCUSDT".
func bybitToNative(symbol string) string {
	return strings.ReplaceAll(symbol, "/", "")
}

// bybitFromNative converts "BTCUSDT" to "BTC/USDT"; only USDT-quoted pairs
// are recognized, everything else passes through.
func bybitFromNative(native string) string {
	if strings.HasSuffix(native, "USDT") && len(native) > 4 {
		return native[:len(native)-4] + "/USDT"
	}
	return native
}

// dashToNative converts "BTC/USDT" to "BTC-USDT" (Coinbase, KuCoin, OKX).
func dashToNative(symbol string) string {
	return strings.ReplaceAll(symbol, "/", "-")
}

// dashFromNative converts "BTC-USDT" to "BTC/USDT".
func dashFromNative(native string) string {
	return strings.ReplaceAll(native, "-", "/")
}

// krakenSymbols maps canonical pairs to Kraken's native names. Kraken renames
// some bases (BTC is XBT), so the mapping is a table, not a rule.
var krakenSymbols = map[string]string{
	"BTC/USDT": "XBTUSDT",
	"ETH/USDT": "ETHUSDT",
	"BTC/USD":  "XBTUSD",
	"ETH/USD":  "ETHUSD",
}

// krakenToNative uses the lookup table for known pairs and falls back to
// stripping the separator.
func krakenToNative(symbol string) string {
	if native, ok := krakenSymbols[symbol]; ok {
		return native
	}
	return strings.ReplaceAll(symbol, "/", "")
}

// krakenFromNative reverses the table lookup; unknown native symbols pass
// through unchanged.
func krakenFromNative(native string) string {
	for canonical, n := range krakenSymbols {
		if n == native {
			return canonical
		}
	}
	return native
}
