package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cryptocheck/internal/models"
	alerts "cryptocheck/internal/modules/alerts/service"
	health "cryptocheck/internal/modules/health/service"
	"cryptocheck/internal/modules/metrics"
	strategy "cryptocheck/internal/modules/strategy/service"
)

// Evaluator — разбор одного символа за цикл.
type Evaluator interface {
	Evaluate(ctx context.Context, symbol string) (strategy.Evaluation, error)
}

// Notifier — доставка текста алерта.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

type ScannerConfig struct {
	Interval    time.Duration
	Workers     int
	Heartbeat   time.Duration // 0 выключает
	Quiet       QuietHours
	DailyReport bool
}

// CycleStats — итог одного цикла сканирования.
type CycleStats struct {
	Quiet      bool
	Evaluated  int
	Emitted    int
	Suppressed int
	CooledDown int
	Errors     int
}

type outcome int

const (
	outcomeNone outcome = iota
	outcomeEmitted
	outcomeSuppressed
	outcomeCooledDown
	outcomeError
)

// Scanner — цикл оценки вселенной символов. Сам не хранит состояние сигналов:
// кулдаун и алерты живут в alerts.
type Scanner struct {
	cfg      ScannerConfig
	symbols  []string
	eval     Evaluator
	cooldown *alerts.CooldownStore
	tracker  *alerts.Tracker
	notifier Notifier
	rec      *metrics.Recorder
	state    *health.State
	clock    Clock
	log      *zap.Logger

	// только из горутины цикла
	lastHeartbeat time.Time
}

type ScannerDeps struct {
	Symbols  []string
	Eval     Evaluator
	Cooldown *alerts.CooldownStore
	Tracker  *alerts.Tracker
	Notifier Notifier
	Recorder *metrics.Recorder
	State    *health.State
	Clock    Clock
	Log      *zap.Logger
}

func NewScanner(cfg ScannerConfig, d ScannerDeps) *Scanner {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	clock := d.Clock
	if clock == nil {
		clock = SystemClock
	}
	return &Scanner{
		cfg:      cfg,
		symbols:  d.Symbols,
		eval:     d.Eval,
		cooldown: d.Cooldown,
		tracker:  d.Tracker,
		notifier: d.Notifier,
		rec:      d.Recorder,
		state:    d.State,
		clock:    clock,
		log:      d.Log.Named("scanner"),
	}
}

// Run — цикл сразу, затем раз в Interval до отмены ctx.
func (s *Scanner) Run(ctx context.Context) {
	s.log.Info("scanner started",
		zap.Int("symbols", len(s.symbols)),
		zap.Duration("interval", s.cfg.Interval),
		zap.Int("workers", s.cfg.Workers),
	)
	s.Cycle(ctx)

	t := time.NewTicker(s.cfg.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("scanner stopped")
			return
		case <-t.C:
			s.Cycle(ctx)
		}
	}
}

// Cycle — один проход по всем символам. Ошибки символов не прерывают цикл.
func (s *Scanner) Cycle(ctx context.Context) CycleStats {
	start := s.clock.Now()
	var stats CycleStats

	quiet := s.cfg.Quiet.Contains(start)
	s.state.SetQuiet(quiet)
	if quiet {
		s.log.Info("quiet hours, evaluation skipped")
		s.rec.QuietCycle()
		s.state.TouchCycle(start)
		stats.Quiet = true
		return stats
	}

	s.flushDailyReports(ctx, start)
	s.heartbeat(ctx, start)

	var (
		emitted, suppressed, cooled, failed, evaluated atomic.Int64
		g                                              errgroup.Group
	)
	g.SetLimit(s.cfg.Workers)
	for _, symbol := range s.symbols {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			evaluated.Add(1)
			switch s.unit(ctx, symbol) {
			case outcomeEmitted:
				emitted.Add(1)
			case outcomeSuppressed:
				suppressed.Add(1)
			case outcomeCooledDown:
				cooled.Add(1)
			case outcomeError:
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	stats.Evaluated = int(evaluated.Load())
	stats.Emitted = int(emitted.Load())
	stats.Suppressed = int(suppressed.Load())
	stats.CooledDown = int(cooled.Load())
	stats.Errors = int(failed.Load())

	open := s.tracker.Len()
	s.state.TouchCycle(s.clock.Now())
	s.state.SetOpenAlerts(open)
	s.state.SetSymbols(len(s.symbols))
	s.rec.SetOpenAlerts(open)
	s.rec.ObserveCycle(s.clock.Now().Sub(start))

	s.log.Info("cycle done",
		zap.Int("evaluated", stats.Evaluated),
		zap.Int("emitted", stats.Emitted),
		zap.Int("suppressed", stats.Suppressed),
		zap.Int("cooled_down", stats.CooledDown),
		zap.Int("errors", stats.Errors),
		zap.Int("open_alerts", open),
	)
	return stats
}

// unit — оценка одного символа и, если прошли все фильтры, выпуск алерта.
func (s *Scanner) unit(ctx context.Context, symbol string) outcome {
	log := s.log.With(zap.String("symbol", symbol))

	res, err := s.eval.Evaluate(ctx, symbol)
	if err != nil {
		var fe *models.FetchError
		switch {
		case ctx.Err() != nil:
			return outcomeNone
		case errors.As(err, &fe):
			s.rec.FetchError(symbol, string(fe.Timeframe))
			log.Warn("fetch failed", zap.Error(err))
		case errors.Is(err, models.ErrInsufficientData):
			log.Debug("not enough bars", zap.Error(err))
		default:
			log.Error("evaluation failed", zap.Error(err))
		}
		return outcomeError
	}
	if !res.OK {
		log.Debug("no signal",
			zap.String("short", string(res.Short.Direction)),
			zap.String("long", string(res.Long.Direction)),
			zap.Int("confidence", res.Long.Confidence),
		)
		return outcomeNone
	}

	sig := res.Signal
	if s.tracker.Policy() == alerts.OpenSuppress && s.tracker.Has(symbol) {
		log.Debug("alert already open, signal suppressed")
		return outcomeSuppressed
	}

	now := s.clock.Now()
	marker := now
	if s.cooldown.Policy().Mode == alerts.CooldownBar {
		marker = sig.BarTime
	}

	// после отмены ничего не фиксируем
	if ctx.Err() != nil {
		return outcomeNone
	}
	if !s.cooldown.Admit(symbol, sig.Direction, marker) {
		log.Debug("cooldown", zap.String("direction", string(sig.Direction)))
		return outcomeCooledDown
	}

	sig.CreatedAt = now
	alert, superseded, err := s.tracker.Open(sig, now)
	if err != nil {
		log.Debug("open rejected", zap.Error(err))
		return outcomeSuppressed
	}
	s.rec.SignalEmitted(symbol, string(sig.Direction))
	log.Info("signal",
		zap.String("direction", string(sig.Direction)),
		zap.String("pattern", string(sig.Pattern)),
		zap.Int("confidence", sig.Confidence),
		zap.Float64("entry", sig.Entry),
		zap.Bool("unconfirmed", sig.Unconfirmed),
	)

	if superseded != nil {
		s.rec.AlertClosed(string(superseded.Status))
		s.deliver(ctx, FormatSuperseded(*superseded))
	}
	s.deliver(ctx, FormatSignal(alert.Signal))
	return outcomeEmitted
}

func (s *Scanner) heartbeat(ctx context.Context, now time.Time) {
	if s.cfg.Heartbeat <= 0 {
		return
	}
	if !s.lastHeartbeat.IsZero() && now.Sub(s.lastHeartbeat) < s.cfg.Heartbeat {
		return
	}
	s.lastHeartbeat = now
	s.deliver(ctx, FormatHeartbeat(len(s.symbols), s.tracker.Len()))
}

// flushDailyReports — итоги прошедших суток. В тихие часы откладываются до первого рабочего цикла.
func (s *Scanner) flushDailyReports(ctx context.Context, now time.Time) {
	daily := s.tracker.Daily()
	if daily == nil {
		return
	}
	reports := daily.TakeReports(now)
	if !s.cfg.DailyReport {
		return
	}
	for _, r := range reports {
		s.deliver(ctx, FormatDailyReport(r))
	}
}

func (s *Scanner) deliver(ctx context.Context, text string) {
	if err := s.notifier.Notify(ctx, text); err != nil {
		s.rec.DeliveryError()
		s.log.Warn("delivery failed", zap.Error(err))
	}
}
