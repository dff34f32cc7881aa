package helper

import (
	"strings"
	"time"

	"cryptocheck/internal/models"
)

// котируемые активы в порядке проверки суффикса
var quoteAssets = []string{"USDT", "USDC", "FDUSD", "BUSD", "BTC", "ETH"}

func NormTF(raw string) models.Timeframe {
	s := strings.TrimSpace(strings.ToLower(raw))
	s = strings.TrimPrefix(s, "candle")
	switch s {
	case "60m", "1h":
		return "1h"
	case "240m", "4h":
		return "4h"
	case "1d", "24h":
		return "1d"
	default:
		return models.Timeframe(s)
	}
}

// TFDuration — длительность свечи; 0 для неизвестного таймфрейма.
func TFDuration(tf models.Timeframe) time.Duration {
	switch NormTF(string(tf)) {
	case "1m":
		return time.Minute
	case "3m":
		return 3 * time.Minute
	case "5m":
		return 5 * time.Minute
	case "15m":
		return 15 * time.Minute
	case "30m":
		return 30 * time.Minute
	case "1h":
		return time.Hour
	case "4h":
		return 4 * time.Hour
	case "1d":
		return 24 * time.Hour
	default:
		return 0
	}
}

// SplitSymbol: "BTCUSDT" -> ("BTC", "USDT").
func SplitSymbol(symbol string) (base, quote string, ok bool) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	for _, q := range quoteAssets {
		if strings.HasSuffix(s, q) && len(s) > len(q) {
			return s[:len(s)-len(q)], q, true
		}
	}
	return "", "", false
}

// InstID: "BTCUSDT" -> "BTC-USDT" (спот OKX).
func InstID(symbol string) (string, bool) {
	base, quote, ok := SplitSymbol(symbol)
	if !ok {
		return "", false
	}
	return base + "-" + quote, true
}

// SymbolFromInstID: "BTC-USDT" / "BTC-USDT-SWAP" -> "BTCUSDT".
func SymbolFromInstID(instID string) string {
	parts := strings.Split(strings.ToUpper(instID), "-")
	if len(parts) < 2 {
		return strings.ToUpper(instID)
	}
	return parts[0] + parts[1]
}

func DirectionKey(symbol string, dir models.Direction) string {
	return symbol + "_" + string(dir)
}

// LocalZone — фиксированный сдвиг от UTC (часы).
func LocalZone(offsetHours int) *time.Location {
	return time.FixedZone("", offsetHours*3600)
}

// LocalDay — календарный день в зоне со сдвигом, формат 2006-01-02.
func LocalDay(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}
