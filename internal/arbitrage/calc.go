// Package arbitrage contains the pure profit arithmetic used by detection,
// comparison, and execution. All math is decimal; floats never touch prices.
package arbitrage

import "github.com/shopspring/decimal"

var oneHundred = decimal.NewFromInt(100)

// ProfitPercentage returns the relative gain of buying at buy and selling at
// sell, as a percentage. The ratio is rounded to 4 decimal places, half away
// from zero, before scaling; ProfitPercentage(100, 101) is exactly 1.0000.
// A zero buy price yields zero.
func ProfitPercentage(buy, sell decimal.Decimal) decimal.Decimal {
	if buy.IsZero() {
		return decimal.Zero
	}
	return sell.Sub(buy).DivRound(buy, 4).Mul(oneHundred)
}

// EstimatedProfit returns the gross profit of buying and selling the given
// quantity at the given prices.
func EstimatedProfit(buy, sell, quantity decimal.Decimal) decimal.Decimal {
	return sell.Mul(quantity).Sub(buy.Mul(quantity))
}

// ProfitAfterFees returns the net profit of a two-leg execution when the buy
// venue charges buyFee and the sell venue charges sellFee (both fractional
// rates, e.g. 0.001 for 10 bps).
func ProfitAfterFees(buy, sell, quantity, buyFee, sellFee decimal.Decimal) decimal.Decimal {
	one := decimal.NewFromInt(1)
	buyTotal := buy.Mul(quantity).Mul(one.Add(buyFee))
	sellTotal := sell.Mul(quantity).Mul(one.Sub(sellFee))
	return sellTotal.Sub(buyTotal)
}

// OptimalAmount returns the largest quantity purchasable at price using at
// most maxBalanceFraction of balance, truncated to 8 decimal places.
func OptimalAmount(balance, price, maxBalanceFraction decimal.Decimal) decimal.Decimal {
	if price.IsZero() {
		return decimal.Zero
	}
	return balance.Mul(maxBalanceFraction).Div(price).Truncate(8)
}
