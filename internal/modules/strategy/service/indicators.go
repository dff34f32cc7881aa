package service

import (
	"math"

	talib "github.com/markcheno/go-talib"
	"github.com/pkg/errors"

	"cryptocheck/internal/models"
)

// Value — значение индикатора на баре. OK=false: индикатор не определён
// (прогрев, плоский диапазон, NaN), любое условие на нём ложно.
type Value struct {
	V  float64
	OK bool
}

func defined(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Value{}
	}
	return Value{V: v, OK: true}
}

type IndicatorConfig struct {
	EMAFast    int
	EMASlow    int
	RSIPeriod  int
	MACDFast   int
	MACDSlow   int
	MACDSignal int
	ATRPeriod  int
	ADXPeriod  int
}

func DefaultIndicatorConfig() IndicatorConfig {
	return IndicatorConfig{
		EMAFast:    20,
		EMASlow:    50,
		RSIPeriod:  14,
		MACDFast:   12,
		MACDSlow:   26,
		MACDSignal: 9,
		ATRPeriod:  14,
		ADXPeriod:  14,
	}
}

// IndicatorSet — ряды индикаторов, выровненные по индексам баров.
type IndicatorSet struct {
	FastMA        []Value
	SlowMA        []Value
	Oscillator    []Value // RSI, 0..100
	MACD          []Value
	MACDSignal    []Value
	Momentum      []Value // гистограмма MACD
	TrendStrength []Value // ADX
	Volatility    []Value // ATR, >= 0
}

// Snapshot — срез IndicatorSet на одном баре.
type Snapshot struct {
	FastMA        Value
	SlowMA        Value
	Oscillator    Value
	MACD          Value
	MACDSignal    Value
	Momentum      Value
	TrendStrength Value
	Volatility    Value
}

func (s *IndicatorSet) Len() int { return len(s.FastMA) }

func (s *IndicatorSet) At(i int) Snapshot {
	return Snapshot{
		FastMA:        s.FastMA[i],
		SlowMA:        s.SlowMA[i],
		Oscillator:    s.Oscillator[i],
		MACD:          s.MACD[i],
		MACDSignal:    s.MACDSignal[i],
		Momentum:      s.Momentum[i],
		TrendStrength: s.TrendStrength[i],
		Volatility:    s.Volatility[i],
	}
}

func (s *IndicatorSet) Last() Snapshot { return s.At(s.Len() - 1) }

type IndicatorEngine struct {
	cfg IndicatorConfig
}

func NewIndicatorEngine(cfg IndicatorConfig) *IndicatorEngine {
	return &IndicatorEngine{cfg: cfg}
}

// WarmupBars — сколько баров нужно, чтобы все индикаторы были определены на последнем.
func (e *IndicatorEngine) WarmupBars() int {
	c := e.cfg
	return maxInt(
		c.EMAFast,
		c.EMASlow,
		c.RSIPeriod+1,
		c.MACDSlow+c.MACDSignal-1,
		c.ATRPeriod+1,
		2*c.ADXPeriod,
	)
}

// Compute считает индикаторы по барам. Чистая функция входа.
func (e *IndicatorEngine) Compute(bars []models.Bar) (*IndicatorSet, error) {
	need := e.WarmupBars()
	if len(bars) < need {
		return nil, errors.Wrapf(models.ErrInsufficientData, "have %d bars, need %d", len(bars), need)
	}

	n := len(bars)
	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	for i, b := range bars {
		closes[i] = b.Close
		highs[i] = b.High
		lows[i] = b.Low
	}

	c := e.cfg
	fast := talib.Ema(closes, c.EMAFast)
	slow := talib.Ema(closes, c.EMASlow)
	rsi := talib.Rsi(closes, c.RSIPeriod)
	macd, signal, hist := talib.Macd(closes, c.MACDFast, c.MACDSlow, c.MACDSignal)
	atr := talib.Atr(highs, lows, closes, c.ATRPeriod)
	adx := talib.Adx(highs, lows, closes, c.ADXPeriod)

	macdLookback := maxInt(c.MACDFast, c.MACDSlow) + c.MACDSignal - 2
	set := &IndicatorSet{
		FastMA:        series(fast, c.EMAFast-1, nil),
		SlowMA:        series(slow, c.EMASlow-1, nil),
		Oscillator:    series(rsi, c.RSIPeriod, flatCloses(closes, c.RSIPeriod)),
		MACD:          series(macd, macdLookback, nil),
		MACDSignal:    series(signal, macdLookback, nil),
		Momentum:      series(hist, macdLookback, nil),
		TrendStrength: series(adx, 2*c.ADXPeriod-1, flatRange(highs, lows, 2*c.ADXPeriod)),
		Volatility:    series(atr, c.ATRPeriod, nil),
	}
	for i, v := range set.Volatility {
		if v.OK && v.V < 0 {
			set.Volatility[i] = Value{}
		}
	}
	return set, nil
}

// series переносит выход talib в []Value: до lookback и там, где flat(i) — не определено.
func series(out []float64, lookback int, flat func(i int) bool) []Value {
	res := make([]Value, len(out))
	for i, v := range out {
		if i < lookback {
			continue
		}
		if flat != nil && flat(i) {
			continue
		}
		res[i] = defined(v)
	}
	return res
}

// flatCloses: в окне RSI цена не менялась — делить нечего.
func flatCloses(closes []float64, period int) func(i int) bool {
	return func(i int) bool {
		from := i - period
		if from < 0 {
			return true
		}
		for j := from + 1; j <= i; j++ {
			if closes[j] != closes[from] {
				return false
			}
		}
		return true
	}
}

// flatRange: в окне ADX нулевой true range — направленное движение не определено.
func flatRange(highs, lows []float64, window int) func(i int) bool {
	return func(i int) bool {
		from := i - window + 1
		if from < 0 {
			return true
		}
		hi, lo := highs[from], lows[from]
		for j := from + 1; j <= i; j++ {
			hi = math.Max(hi, highs[j])
			lo = math.Min(lo, lows[j])
		}
		return hi-lo <= 0
	}
}

func maxInt(xs ...int) int {
	m := 0
	for _, x := range xs {
		if x > m {
			m = x
		}
	}
	return m
}
