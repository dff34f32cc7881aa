package service

import (
	"time"

	"cryptocheck/internal/models"
)

var t0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

// trendBars — ровный тренд из n-1 баров и сильная свеча по тренду в конце.
func trendBars(n int, step float64) []models.Bar {
	bars := make([]models.Bar, 0, n)
	price := 200.0
	if step > 0 {
		price = 100
	}
	for i := 0; i < n-1; i++ {
		open := price
		price += step
		bars = append(bars, ohlc(i, open, price))
	}
	// финальная свеча: тело 2, тени по 0.05
	open := price
	closep := price + 4*step
	bars = append(bars, ohlc(n-1, open, closep))
	return bars
}

func ohlc(i int, open, closep float64) models.Bar {
	hi, lo := open, closep
	if closep > open {
		hi, lo = closep, open
	}
	return models.Bar{
		Time:   t0.Add(time.Duration(i) * 15 * time.Minute),
		Open:   open,
		High:   hi + 0.05,
		Low:    lo - 0.05,
		Close:  closep,
		Volume: 1000,
	}
}

func flatBars(n int, price float64) []models.Bar {
	bars := make([]models.Bar, n)
	for i := range bars {
		bars[i] = models.Bar{
			Time: t0.Add(time.Duration(i) * 15 * time.Minute),
			Open: price, High: price, Low: price, Close: price,
		}
	}
	return bars
}

func bar(o, h, l, c float64) models.Bar {
	return models.Bar{Time: t0, Open: o, High: h, Low: l, Close: c}
}
