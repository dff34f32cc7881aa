package helper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"cryptocheck/internal/models"
)

func TestSplitSymbol(t *testing.T) {
	tests := []struct {
		in          string
		base, quote string
		ok          bool
	}{
		{"BTCUSDT", "BTC", "USDT", true},
		{"fartcoinusdt", "FARTCOIN", "USDT", true},
		{"ETHBTC", "ETH", "BTC", true},
		{"USDT", "", "", false},
		{"XYZ", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			base, quote, ok := SplitSymbol(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.base, base)
			assert.Equal(t, tt.quote, quote)
		})
	}
}

func TestInstIDRoundTrip(t *testing.T) {
	id, ok := InstID("DOGEUSDT")
	assert.True(t, ok)
	assert.Equal(t, "DOGE-USDT", id)
	assert.Equal(t, "DOGEUSDT", SymbolFromInstID(id))
	assert.Equal(t, "BTCUSDT", SymbolFromInstID("BTC-USDT-SWAP"))
}

func TestNormTFAndDuration(t *testing.T) {
	assert.Equal(t, models.Timeframe("1h"), NormTF("60m"))
	assert.Equal(t, models.Timeframe("15m"), NormTF("candle15M"))
	assert.Equal(t, 5*time.Minute, TFDuration("5m"))
	assert.Equal(t, time.Hour, TFDuration("1H"))
	assert.Zero(t, TFDuration("7m"))
}

func TestLocalDay(t *testing.T) {
	loc := LocalZone(3)
	// 22:30 UTC = 01:30 следующего дня по UTC+3
	ts := time.Date(2024, 5, 1, 22, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-05-02", LocalDay(ts, loc))
	assert.Equal(t, "2024-05-01", LocalDay(ts, time.UTC))
}
