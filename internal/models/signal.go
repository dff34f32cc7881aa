package models

import "time"

type Direction string

const (
	DirectionNone  Direction = ""
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

type PatternKind string

const (
	PatternNone             PatternKind = "none"
	PatternBullishMarubozu  PatternKind = "bullish-marubozu"
	PatternBearishMarubozu  PatternKind = "bearish-marubozu"
	PatternBullishEngulfing PatternKind = "bullish-engulfing"
	PatternBearishEngulfing PatternKind = "bearish-engulfing"
	PatternBullishPin       PatternKind = "bullish-pin"
	PatternBearishPin       PatternKind = "bearish-pin"
	PatternDoji             PatternKind = "doji"
	PatternDojiGravestone   PatternKind = "doji-gravestone"
	PatternDojiDragonfly    PatternKind = "doji-dragonfly"
	PatternDojiLongLegged   PatternKind = "doji-long-legged"
	PatternBullishSpike     PatternKind = "bullish-spike"
	PatternBearishSpike     PatternKind = "bearish-spike"
)

// Bias — направление, которое подразумевает паттерн. Доджи нейтральны.
func (p PatternKind) Bias() Direction {
	switch p {
	case PatternBullishMarubozu, PatternBullishEngulfing, PatternBullishPin, PatternBullishSpike:
		return DirectionLong
	case PatternBearishMarubozu, PatternBearishEngulfing, PatternBearishPin, PatternBearishSpike:
		return DirectionShort
	default:
		return DirectionNone
	}
}

// Signal — готовый к отправке сигнал. После создания не меняется.
type Signal struct {
	Symbol      string
	Timeframe   Timeframe
	Direction   Direction
	Entry       float64
	StopLoss    float64
	TakeProfit1 float64
	TakeProfit2 float64
	ATR         float64
	Confidence  int
	Matched     []string
	Pattern     PatternKind
	// Unconfirmed — сигнал принят только по старшему ТФ.
	Unconfirmed bool
	BarTime     time.Time
	CreatedAt   time.Time
}

// RiskReward — отношение дистанции до TP1 к дистанции до стопа.
func (s Signal) RiskReward() float64 {
	risk := s.Entry - s.StopLoss
	if risk < 0 {
		risk = -risk
	}
	if risk == 0 {
		return 0
	}
	reward := s.TakeProfit1 - s.Entry
	if reward < 0 {
		reward = -reward
	}
	return reward / risk
}

type AlertStatus string

const (
	StatusOpen             AlertStatus = "open"
	StatusTP1Hit           AlertStatus = "tp1-hit"
	StatusClosedWin        AlertStatus = "closed-win"
	StatusClosedLoss       AlertStatus = "closed-loss"
	StatusClosedSuperseded AlertStatus = "closed-superseded"
)

func (s AlertStatus) Closed() bool {
	switch s {
	case StatusClosedWin, StatusClosedLoss, StatusClosedSuperseded:
		return true
	}
	return false
}
