package service

import (
	"fmt"
	"strconv"

	"cryptocheck/internal/helper"
	"cryptocheck/internal/models"
)

// okxBar — таймфрейм в формате параметра bar OKX: "1h" -> "1H".
func okxBar(tf models.Timeframe) (string, error) {
	switch helper.NormTF(string(tf)) {
	case "1m":
		return "1m", nil
	case "3m":
		return "3m", nil
	case "5m":
		return "5m", nil
	case "15m":
		return "15m", nil
	case "30m":
		return "30m", nil
	case "1h":
		return "1H", nil
	case "4h":
		return "4H", nil
	case "1d":
		return "1D", nil
	}
	return "", fmt.Errorf("unsupported timeframe for OKX bar: %q", tf)
}

func parseFloats(vals ...string) ([]float64, error) {
	out := make([]float64, len(vals))
	for i, v := range vals {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", v)
		}
		out[i] = f
	}
	return out, nil
}

// validateBars — по возрастанию, без дублей, OHLC согласованы.
func validateBars(bars []models.Bar) error {
	for i, b := range bars {
		if b.High < b.Low || b.High < b.Open || b.High < b.Close || b.Low > b.Open || b.Low > b.Close {
			return fmt.Errorf("bar %s: inconsistent ohlc", b.Time.UTC().Format("2006-01-02T15:04"))
		}
		if i > 0 && !b.Time.After(bars[i-1].Time) {
			return fmt.Errorf("bar %s: not ascending", b.Time.UTC().Format("2006-01-02T15:04"))
		}
	}
	return nil
}

// tail — последние n элементов.
func tail(bars []models.Bar, n int) []models.Bar {
	if n > 0 && len(bars) > n {
		return bars[len(bars)-n:]
	}
	return bars
}
