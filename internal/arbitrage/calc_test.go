package arbitrage

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestProfitPercentage(t *testing.T) {
	t.Run("one percent spread", func(t *testing.T) {
		got := ProfitPercentage(dec(t, "100"), dec(t, "101"))
		assert.True(t, got.Equal(dec(t, "1")), "got %s", got)
	})

	t.Run("rounds ratio to four places", func(t *testing.T) {
		// (103 - 101.5) / 101.5 = 0.014778... -> 0.0148 -> 1.48
		got := ProfitPercentage(dec(t, "101.5"), dec(t, "103"))
		assert.True(t, got.Equal(dec(t, "1.48")), "got %s", got)
	})

	t.Run("negative when selling below buy", func(t *testing.T) {
		got := ProfitPercentage(dec(t, "100"), dec(t, "99"))
		assert.True(t, got.IsNegative())
	})

	t.Run("zero buy price yields zero", func(t *testing.T) {
		got := ProfitPercentage(decimal.Zero, dec(t, "50"))
		assert.True(t, got.IsZero())
	})

	t.Run("equal prices yield zero", func(t *testing.T) {
		got := ProfitPercentage(dec(t, "250"), dec(t, "250"))
		assert.True(t, got.IsZero())
	})
}

func TestEstimatedProfit(t *testing.T) {
	got := EstimatedProfit(dec(t, "100"), dec(t, "102"), dec(t, "10"))
	assert.True(t, got.Equal(dec(t, "20")), "got %s", got)
}

func TestProfitAfterFees(t *testing.T) {
	t.Run("fees shrink the profit", func(t *testing.T) {
		gross := EstimatedProfit(dec(t, "100"), dec(t, "102"), dec(t, "10"))
		net := ProfitAfterFees(dec(t, "100"), dec(t, "102"), dec(t, "10"),
			dec(t, "0.001"), dec(t, "0.001"))
		assert.True(t, net.LessThan(gross))
	})

	t.Run("exact value", func(t *testing.T) {
		// buy 1000*1.001 = 1001, sell 1020*0.999 = 1018.98
		net := ProfitAfterFees(dec(t, "100"), dec(t, "102"), dec(t, "10"),
			dec(t, "0.001"), dec(t, "0.001"))
		assert.True(t, net.Equal(dec(t, "17.98")), "got %s", net)
	})

	t.Run("fees can turn a spread unprofitable", func(t *testing.T) {
		net := ProfitAfterFees(dec(t, "100"), dec(t, "100.1"), dec(t, "1"),
			dec(t, "0.002"), dec(t, "0.002"))
		assert.True(t, net.IsNegative())
	})
}

func TestOptimalAmount(t *testing.T) {
	t.Run("caps at balance fraction", func(t *testing.T) {
		// 10000 * 0.1 / 50000 = 0.02
		got := OptimalAmount(dec(t, "10000"), dec(t, "50000"), dec(t, "0.1"))
		assert.True(t, got.Equal(dec(t, "0.02")), "got %s", got)
	})

	t.Run("truncates to eight places", func(t *testing.T) {
		got := OptimalAmount(dec(t, "1000"), dec(t, "3"), dec(t, "0.1"))
		assert.True(t, got.Equal(dec(t, "33.33333333")), "got %s", got)
	})

	t.Run("zero price yields zero", func(t *testing.T) {
		got := OptimalAmount(dec(t, "1000"), decimal.Zero, dec(t, "0.1"))
		assert.True(t, got.IsZero())
	})
}
