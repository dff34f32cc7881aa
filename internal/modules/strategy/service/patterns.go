package service

import (
	"cryptocheck/internal/models"
)

// PatternRules — пороги свечных паттернов, доли от диапазона свечи.
type PatternRules struct {
	BodyThreshold        float64 `yaml:"body_threshold"`
	BodyMaxRatio         float64 `yaml:"body_max_ratio"`
	TailMinRatio         float64 `yaml:"tail_min_ratio"`
	OppositeTailMaxRatio float64 `yaml:"opposite_tail_max_ratio"`
	DojiBodyThreshold    float64 `yaml:"doji_body_threshold"`
	// DojiBias — dragonfly даёт long, gravestone даёт short.
	DojiBias bool `yaml:"doji_bias"`
	// SpikeMultiplier — тело больше предыдущего в N раз; 0 выключает.
	SpikeMultiplier float64 `yaml:"spike_multiplier"`
}

func DefaultPatternRules() PatternRules {
	return PatternRules{
		BodyThreshold:        0.7,
		BodyMaxRatio:         0.3,
		TailMinRatio:         0.6,
		OppositeTailMaxRatio: 0.1,
		DojiBodyThreshold:    0.1,
	}
}

const (
	dojiShadowMin  = 0.3 // long-legged: обе тени не короче
	dojiShadowDiff = 0.1 // long-legged: разница теней не больше
	dojiDominance  = 2.0 // gravestone/dragonfly: длинная тень больше короткой в N раз
)

type PatternDetector struct {
	rules PatternRules
}

func NewPatternDetector(rules PatternRules) *PatternDetector {
	return &PatternDetector{rules: rules}
}

// Classify — паттерн последней свечи (для поглощения и спайка нужна и предыдущая).
// Первое совпадение по приоритету: marubozu, engulfing, pin, doji, spike.
func (d *PatternDetector) Classify(bars []models.Bar) models.PatternKind {
	if len(bars) == 0 {
		return models.PatternNone
	}
	cur := bars[len(bars)-1]
	rng := cur.Range()
	if rng <= 0 {
		return models.PatternNone
	}
	var prev *models.Bar
	if len(bars) > 1 {
		prev = &bars[len(bars)-2]
	}

	body := cur.Body() / rng
	upper := cur.UpperShadow() / rng
	lower := cur.LowerShadow() / rng
	r := d.rules

	if body > r.BodyThreshold {
		if cur.Bullish() {
			return models.PatternBullishMarubozu
		}
		if cur.Bearish() {
			return models.PatternBearishMarubozu
		}
	}

	if prev != nil {
		if k := engulfing(*prev, cur); k != models.PatternNone {
			return k
		}
	}

	if body <= r.BodyMaxRatio {
		switch {
		case lower >= r.TailMinRatio && upper <= r.OppositeTailMaxRatio:
			return models.PatternBullishPin
		case upper >= r.TailMinRatio && lower <= r.OppositeTailMaxRatio:
			return models.PatternBearishPin
		}
	}

	if body <= r.DojiBodyThreshold {
		switch {
		case upper >= dojiShadowMin && lower >= dojiShadowMin && abs(upper-lower) <= dojiShadowDiff:
			return models.PatternDojiLongLegged
		case upper >= dojiDominance*lower:
			return models.PatternDojiGravestone
		case lower >= dojiDominance*upper:
			return models.PatternDojiDragonfly
		default:
			return models.PatternDoji
		}
	}

	if r.SpikeMultiplier > 0 && prev != nil && cur.Body() > prev.Body()*r.SpikeMultiplier {
		if cur.Bullish() {
			return models.PatternBullishSpike
		}
		if cur.Bearish() {
			return models.PatternBearishSpike
		}
	}

	return models.PatternNone
}

// Direction — кандидат на направление по паттерну с учётом DojiBias.
func (d *PatternDetector) Direction(kind models.PatternKind) models.Direction {
	if dir := kind.Bias(); dir != models.DirectionNone {
		return dir
	}
	if !d.rules.DojiBias {
		return models.DirectionNone
	}
	switch kind {
	case models.PatternDojiDragonfly:
		return models.DirectionLong
	case models.PatternDojiGravestone:
		return models.DirectionShort
	}
	return models.DirectionNone
}

// engulfing: тело текущей свечи целиком накрывает тело предыдущей противоположного цвета.
func engulfing(prev, cur models.Bar) models.PatternKind {
	if cur.Body() <= prev.Body() {
		return models.PatternNone
	}
	switch {
	case prev.Bearish() && cur.Bullish() && cur.Open <= prev.Close && cur.Close >= prev.Open:
		return models.PatternBullishEngulfing
	case prev.Bullish() && cur.Bearish() && cur.Open >= prev.Close && cur.Close <= prev.Open:
		return models.PatternBearishEngulfing
	}
	return models.PatternNone
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
