package service

import (
	"cryptocheck/internal/models"
)

type Condition string

const (
	CondOscillator    Condition = "oscillator"
	CondMomentum      Condition = "momentum"
	CondTrendStrength Condition = "trend-strength"
	CondMAAlignment   Condition = "ma-alignment"
)

// MaxConfidence — число независимых условий подтверждения.
const MaxConfidence = 4

type ScoreRules struct {
	ConfidenceThreshold    int     `yaml:"confidence_threshold"`
	TrendStrengthThreshold float64 `yaml:"trend_strength_threshold"`
	OscillatorMidline      float64 `yaml:"oscillator_midline"`
}

func DefaultScoreRules() ScoreRules {
	return ScoreRules{
		ConfidenceThreshold:    3,
		TrendStrengthThreshold: 20,
		OscillatorMidline:      50,
	}
}

// Verdict — результат подтверждения на одном таймфрейме.
// Direction != none только при Confidence >= порога.
type Verdict struct {
	Direction   models.Direction
	Candidate   models.Direction
	Matched     []Condition
	Confidence  int
	Pattern     models.PatternKind
	Unconfirmed bool
}

func (v Verdict) MatchedNames() []string {
	out := make([]string, len(v.Matched))
	for i, c := range v.Matched {
		out[i] = string(c)
	}
	return out
}

type Scorer struct {
	rules ScoreRules
}

func NewScorer(rules ScoreRules) *Scorer {
	return &Scorer{rules: rules}
}

// Score — условия проверяются против кандидата dir, который детектор вывел из паттерна.
// Нет кандидата — вердикт none.
func (s *Scorer) Score(bar models.Bar, ind Snapshot, pattern models.PatternKind, dir models.Direction) Verdict {
	v := Verdict{Direction: models.DirectionNone, Pattern: pattern}
	if dir == models.DirectionNone {
		return v
	}
	v.Candidate = dir
	long := dir == models.DirectionLong

	if o := ind.Oscillator; o.OK {
		if (long && o.V >= s.rules.OscillatorMidline) || (!long && o.V <= s.rules.OscillatorMidline) {
			v.Matched = append(v.Matched, CondOscillator)
		}
	}
	if m := ind.Momentum; m.OK {
		if (long && m.V > 0) || (!long && m.V < 0) {
			v.Matched = append(v.Matched, CondMomentum)
		}
	}
	if t := ind.TrendStrength; t.OK && t.V > s.rules.TrendStrengthThreshold {
		v.Matched = append(v.Matched, CondTrendStrength)
	}
	if f, sl := ind.FastMA, ind.SlowMA; f.OK && sl.OK {
		if (long && bar.Close > f.V && f.V > sl.V) || (!long && bar.Close < f.V && f.V < sl.V) {
			v.Matched = append(v.Matched, CondMAAlignment)
		}
	}

	v.Confidence = len(v.Matched)
	if v.Confidence >= s.rules.ConfidenceThreshold {
		v.Direction = dir
	}
	return v
}
