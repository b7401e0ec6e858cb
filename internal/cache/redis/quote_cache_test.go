package redis

import (
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crossarb/internal/domain"
)

func sampleQuote() domain.PriceQuote {
	return domain.PriceQuote{
		Exchange:   domain.ExchangeBinance,
		Symbol:     "BTC/USDT",
		BidPrice:   decimal.RequireFromString("100"),
		AskPrice:   decimal.RequireFromString("101"),
		LastPrice:  decimal.RequireFromString("100.5"),
		ObservedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestQuoteKey(t *testing.T) {
	assert.Equal(t, "quote:BINANCE:BTC/USDT", quoteKey(domain.ExchangeBinance, "BTC/USDT"))
}

func TestQuoteFieldsWithVolume(t *testing.T) {
	q := sampleQuote()
	q.Volume24h = decimal.NullDecimal{Decimal: decimal.RequireFromString("1234.5"), Valid: true}

	set, clear := quoteFields(q)
	assert.Empty(t, clear)
	assert.Equal(t, "100", set["bid"])
	assert.Equal(t, "101", set["ask"])
	assert.Equal(t, "100.5", set["last"])
	assert.Equal(t, "1234.5", set["volume"])
	assert.Equal(t, strconv.FormatInt(q.ObservedAt.UnixNano(), 10), set["ts"])
}

func TestQuoteFieldsWithoutVolumeClearsField(t *testing.T) {
	set, clear := quoteFields(sampleQuote())

	// A volume-less quote must not leave an older observation's volume
	// behind in the hash.
	_, ok := set["volume"]
	require.False(t, ok)
	assert.Equal(t, []string{"volume"}, clear)
}
