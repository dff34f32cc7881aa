package models

import "time"

// Timeframe — интервал свечей в нормализованном виде: "5m", "15m", "1h".
type Timeframe string

// Bar — закрытая OHLCV свеча. Time: начало свечи.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64 // в котируемой валюте
}

func (b Bar) Body() float64 {
	if b.Close >= b.Open {
		return b.Close - b.Open
	}
	return b.Open - b.Close
}

func (b Bar) Range() float64 { return b.High - b.Low }

func (b Bar) UpperShadow() float64 {
	top := b.Open
	if b.Close > top {
		top = b.Close
	}
	return b.High - top
}

func (b Bar) LowerShadow() float64 {
	bottom := b.Open
	if b.Close < bottom {
		bottom = b.Close
	}
	return bottom - b.Low
}

func (b Bar) Bullish() bool { return b.Close > b.Open }
func (b Bar) Bearish() bool { return b.Close < b.Open }
