package service

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cryptocheck/internal/models"
)

// CandleSource — поставщик закрытых свечей по возрастанию времени.
type CandleSource interface {
	GetBars(ctx context.Context, symbol string, tf models.Timeframe, limit int) ([]models.Bar, error)
}

// RiskRules — размеры стопа и целей в ATR.
type RiskRules struct {
	SLMult      float64 `yaml:"sl_atr_mult"`
	TP1Mult     float64 `yaml:"tp1_atr_mult"`
	TP2Mult     float64 `yaml:"tp2_atr_mult"`
	MinATRRatio float64 `yaml:"min_atr_ratio"` // ATR/цена ниже порога — рынок стоит, сигнала нет
}

func DefaultRiskRules() RiskRules {
	return RiskRules{SLMult: 1.2, TP1Mult: 1.8, TP2Mult: 2.8, MinATRRatio: 0.001}
}

type EvaluatorConfig struct {
	ShortTF    models.Timeframe
	LongTF     models.Timeframe
	BarLimit   int
	Indicators IndicatorConfig
	Patterns   PatternRules
	Score      ScoreRules
	Risk       RiskRules
	Reconciler Reconciler
}

// Evaluation — полный разбор символа за один цикл.
type Evaluation struct {
	Short  Verdict
	Long   Verdict
	Final  Verdict
	Signal models.Signal
	OK     bool // Signal заполнен
}

// Evaluator — конвейер индикаторы → паттерн → скоринг → сверка ТФ → уровни.
// Состояние кулдауна и алертов не трогает.
type Evaluator struct {
	cfg        EvaluatorConfig
	src        CandleSource
	engine     *IndicatorEngine
	detector   *PatternDetector
	scorer     *Scorer
	reconciler Reconciler
	log        *zap.Logger
}

func NewEvaluator(cfg EvaluatorConfig, src CandleSource, log *zap.Logger) *Evaluator {
	return &Evaluator{
		cfg:        cfg,
		src:        src,
		engine:     NewIndicatorEngine(cfg.Indicators),
		detector:   NewPatternDetector(cfg.Patterns),
		scorer:     NewScorer(cfg.Score),
		reconciler: cfg.Reconciler,
		log:        log.Named("evaluator"),
	}
}

func (e *Evaluator) WarmupBars() int { return e.engine.WarmupBars() }

type frame struct {
	bars    []models.Bar
	ind     *IndicatorSet
	verdict Verdict
}

func (e *Evaluator) Evaluate(ctx context.Context, symbol string) (Evaluation, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "evaluate")
	span.SetTag("symbol", symbol)
	defer span.Finish()

	var short, long frame
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		short, err = e.scoreFrame(gctx, symbol, e.cfg.ShortTF)
		return err
	})
	g.Go(func() error {
		var err error
		long, err = e.scoreFrame(gctx, symbol, e.cfg.LongTF)
		return err
	})
	if err := g.Wait(); err != nil {
		span.SetTag("error", true)
		return Evaluation{}, err
	}

	ev := Evaluation{
		Short: short.verdict,
		Long:  long.verdict,
		Final: e.reconciler.Reconcile(short.verdict, long.verdict),
	}
	e.log.Debug("verdicts",
		zap.String("symbol", symbol),
		zap.String("short", string(ev.Short.Direction)),
		zap.Int("short_conf", ev.Short.Confidence),
		zap.String("long", string(ev.Long.Direction)),
		zap.Int("long_conf", ev.Long.Confidence),
		zap.String("pattern", string(ev.Long.Pattern)),
		zap.String("final", string(ev.Final.Direction)),
	)
	if ev.Final.Direction == models.DirectionNone {
		return ev, nil
	}

	last := long.bars[len(long.bars)-1]
	atr := long.ind.Last().Volatility
	sig, ok := e.levels(symbol, last, atr, ev.Final)
	if !ok {
		e.log.Debug("volatility too low", zap.String("symbol", symbol), zap.Float64("atr", atr.V))
		return ev, nil
	}
	ev.Signal, ev.OK = sig, true
	span.SetTag("direction", string(sig.Direction))
	return ev, nil
}

func (e *Evaluator) scoreFrame(ctx context.Context, symbol string, tf models.Timeframe) (frame, error) {
	bars, err := e.src.GetBars(ctx, symbol, tf, e.cfg.BarLimit)
	if err != nil {
		return frame{}, err
	}
	ind, err := e.engine.Compute(bars)
	if err != nil {
		return frame{}, errors.Wrapf(err, "%s %s", symbol, tf)
	}
	last := bars[len(bars)-1]
	pattern := e.detector.Classify(bars)
	return frame{
		bars:    bars,
		ind:     ind,
		verdict: e.scorer.Score(last, ind.Last(), pattern, e.detector.Direction(pattern)),
	}, nil
}

// levels — вход по закрытию бара старшего ТФ, стоп и цели от ATR.
func (e *Evaluator) levels(symbol string, bar models.Bar, atr Value, v Verdict) (models.Signal, bool) {
	entry := bar.Close
	if !atr.OK || atr.V <= 0 || entry <= 0 || atr.V/entry < e.cfg.Risk.MinATRRatio {
		return models.Signal{}, false
	}
	sign := 1.0
	if v.Direction == models.DirectionShort {
		sign = -1
	}
	r := e.cfg.Risk
	return models.Signal{
		Symbol:      symbol,
		Timeframe:   e.cfg.LongTF,
		Direction:   v.Direction,
		Entry:       entry,
		StopLoss:    entry - sign*atr.V*r.SLMult,
		TakeProfit1: entry + sign*atr.V*r.TP1Mult,
		TakeProfit2: entry + sign*atr.V*r.TP2Mult,
		ATR:         atr.V,
		Confidence:  v.Confidence,
		Matched:     v.MatchedNames(),
		Pattern:     v.Pattern,
		Unconfirmed: v.Unconfirmed,
		BarTime:     bar.Time,
	}, true
}
