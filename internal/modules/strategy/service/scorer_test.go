package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cryptocheck/internal/models"
)

func v(x float64) Value { return Value{V: x, OK: true} }

// bullishSetup — тело 0.8 диапазона, RSI 55, гистограмма > 0, ADX 30, цена выше обеих EMA.
func bullishSetup() (models.Bar, Snapshot) {
	b := bar(100, 110.2, 100, 108.2)
	snap := Snapshot{
		FastMA:        v(105),
		SlowMA:        v(102),
		Oscillator:    v(55),
		Momentum:      v(0.4),
		TrendStrength: v(30),
		Volatility:    v(1.5),
	}
	return b, snap
}

func TestScoreAllConditions(t *testing.T) {
	b, snap := bullishSetup()
	d := NewPatternDetector(DefaultPatternRules())
	pattern := d.Classify([]models.Bar{b})
	assert.Equal(t, models.PatternBullishMarubozu, pattern)

	got := NewScorer(DefaultScoreRules()).Score(b, snap, pattern, d.Direction(pattern))
	assert.Equal(t, models.DirectionLong, got.Direction)
	assert.Equal(t, 4, got.Confidence)
	assert.ElementsMatch(t, []Condition{CondOscillator, CondMomentum, CondTrendStrength, CondMAAlignment}, got.Matched)
}

func TestScoreOscillatorFails(t *testing.T) {
	b, snap := bullishSetup()
	snap.Oscillator = v(45)

	got := NewScorer(DefaultScoreRules()).Score(b, snap, models.PatternBullishMarubozu, models.DirectionLong)
	assert.Equal(t, models.DirectionLong, got.Direction)
	assert.Equal(t, 3, got.Confidence)
	assert.NotContains(t, got.Matched, CondOscillator)

	rules := DefaultScoreRules()
	rules.ConfidenceThreshold = 4
	got = NewScorer(rules).Score(b, snap, models.PatternBullishMarubozu, models.DirectionLong)
	assert.Equal(t, models.DirectionNone, got.Direction)
	assert.Equal(t, 3, got.Confidence)
}

func TestScoreShortMirrored(t *testing.T) {
	b := bar(108.2, 108.4, 100, 100.2)
	snap := Snapshot{
		FastMA:        v(103),
		SlowMA:        v(106),
		Oscillator:    v(40),
		Momentum:      v(-0.2),
		TrendStrength: v(25),
	}
	got := NewScorer(DefaultScoreRules()).Score(b, snap, models.PatternBearishMarubozu, models.DirectionShort)
	assert.Equal(t, models.DirectionShort, got.Direction)
	assert.Equal(t, 4, got.Confidence)
}

func TestScoreUndefinedIsFalse(t *testing.T) {
	b, snap := bullishSetup()
	snap.TrendStrength = Value{}
	snap.SlowMA = Value{}

	got := NewScorer(DefaultScoreRules()).Score(b, snap, models.PatternBullishMarubozu, models.DirectionLong)
	assert.Equal(t, 2, got.Confidence)
	assert.Equal(t, models.DirectionNone, got.Direction)
}

func TestScoreNoPatternNoCandidate(t *testing.T) {
	b, snap := bullishSetup()
	sc := NewScorer(DefaultScoreRules())
	plain := NewPatternDetector(DefaultPatternRules())

	got := sc.Score(b, snap, models.PatternNone, plain.Direction(models.PatternNone))
	assert.Equal(t, models.DirectionNone, got.Direction)
	assert.Zero(t, got.Confidence)

	got = sc.Score(b, snap, models.PatternDojiDragonfly, plain.Direction(models.PatternDojiDragonfly))
	assert.Equal(t, models.DirectionNone, got.Direction)

	rules := DefaultPatternRules()
	rules.DojiBias = true
	biased := NewPatternDetector(rules)
	got = sc.Score(b, snap, models.PatternDojiDragonfly, biased.Direction(models.PatternDojiDragonfly))
	assert.Equal(t, models.DirectionLong, got.Direction)
	assert.Equal(t, models.DirectionLong, got.Candidate)
}

func TestScoreConfidenceMonotonic(t *testing.T) {
	b, _ := bullishSetup()
	oscs := []float64{30, 50, 70}
	moms := []float64{-1, 0, 1}
	adxs := []float64{10, 20, 35}
	fasts := []float64{104, 109}
	patterns := []models.PatternKind{models.PatternBullishPin, models.PatternBearishPin, models.PatternNone}

	for th := 1; th <= MaxConfidence; th++ {
		rules := DefaultScoreRules()
		rules.ConfidenceThreshold = th
		sc := NewScorer(rules)
		d := NewPatternDetector(DefaultPatternRules())
		for _, o := range oscs {
			for _, m := range moms {
				for _, a := range adxs {
					for _, f := range fasts {
						for _, p := range patterns {
							snap := Snapshot{FastMA: v(f), SlowMA: v(103), Oscillator: v(o), Momentum: v(m), TrendStrength: v(a)}
							got := sc.Score(b, snap, p, d.Direction(p))
							assert.Equal(t, len(got.Matched), got.Confidence)
							if got.Direction != models.DirectionNone {
								assert.GreaterOrEqual(t, got.Confidence, th)
							}
							if got.Confidence < th {
								assert.Equal(t, models.DirectionNone, got.Direction)
							}
						}
					}
				}
			}
		}
	}
}
