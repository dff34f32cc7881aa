package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap/zaptest"

	"cryptocheck/internal/helper"
	"cryptocheck/internal/models"
	alerts "cryptocheck/internal/modules/alerts/service"
	health "cryptocheck/internal/modules/health/service"
	"cryptocheck/internal/modules/metrics"
	strategy "cryptocheck/internal/modules/strategy/service"
)

// 15:00 по локальной зоне +3
var day1 = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

var testZone = helper.LocalZone(3)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type fakeNotifier struct {
	mu   sync.Mutex
	msgs []string
	err  error
}

func (n *fakeNotifier) Notify(_ context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return &models.DeliveryError{Err: n.err}
	}
	n.msgs = append(n.msgs, text)
	return nil
}

func (n *fakeNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.msgs...)
}

type evalResult struct {
	res strategy.Evaluation
	err error
}

type fakeEvaluator struct {
	mu    sync.Mutex
	out   map[string]evalResult
	calls int
}

func (f *fakeEvaluator) Evaluate(_ context.Context, symbol string) (strategy.Evaluation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	r, ok := f.out[symbol]
	if !ok {
		return strategy.Evaluation{}, nil
	}
	return r.res, r.err
}

func (f *fakeEvaluator) set(symbol string, r evalResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.out[symbol] = r
}

func (f *fakeEvaluator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakePrices struct {
	mu     sync.Mutex
	prices map[string]float64
}

func (p *fakePrices) LastPrice(_ context.Context, symbol string) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	px, ok := p.prices[symbol]
	if !ok {
		return 0, &models.FetchError{Symbol: symbol, Err: errors.New("no price")}
	}
	return px, nil
}

func (p *fakePrices) set(symbol string, px float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prices[symbol] = px
}

// testSignal — entry 100, ATR 1: SL 98.8, TP1 101.8, TP2 102.8 для long.
func testSignal(symbol string, dir models.Direction) models.Signal {
	sig := models.Signal{
		Symbol:      symbol,
		Timeframe:   "15m",
		Direction:   dir,
		Entry:       100,
		ATR:         1,
		StopLoss:    98.8,
		TakeProfit1: 101.8,
		TakeProfit2: 102.8,
		Confidence:  4,
		Matched:     []string{"oscillator", "momentum", "trend-strength", "ma-alignment"},
		Pattern:     models.PatternBullishMarubozu,
		BarTime:     day1.Truncate(15 * time.Minute),
	}
	if dir == models.DirectionShort {
		sig.StopLoss, sig.TakeProfit1, sig.TakeProfit2 = 101.2, 98.2, 97.2
		sig.Pattern = models.PatternBearishMarubozu
	}
	return sig
}

func withSignal(sig models.Signal) evalResult {
	v := strategy.Verdict{Direction: sig.Direction, Confidence: sig.Confidence, Pattern: sig.Pattern}
	return evalResult{res: strategy.Evaluation{Short: v, Long: v, Final: v, Signal: sig, OK: true}}
}

type harness struct {
	clock    *fakeClock
	eval     *fakeEvaluator
	notifier *fakeNotifier
	prices   *fakePrices
	cooldown *alerts.CooldownStore
	tracker  *alerts.Tracker
	state    *health.State
	reg      *prometheus.Registry
	rec      *metrics.Recorder
}

func newHarness(t *testing.T, policy alerts.OpenPolicy) *harness {
	t.Helper()
	reg := prometheus.NewRegistry()
	return &harness{
		clock:    &fakeClock{now: day1},
		eval:     &fakeEvaluator{out: map[string]evalResult{}},
		notifier: &fakeNotifier{},
		prices:   &fakePrices{prices: map[string]float64{}},
		cooldown: alerts.NewCooldownStore(alerts.CooldownPolicy{Mode: alerts.CooldownTime, Window: 30 * time.Minute}),
		tracker:  alerts.NewTracker(policy, alerts.NewDaily(testZone)),
		state:    health.NewState(),
		reg:      reg,
		rec:      metrics.NewRecorder(reg),
	}
}

func (h *harness) scanner(t *testing.T, cfg ScannerConfig, symbols ...string) *Scanner {
	t.Helper()
	if cfg.Interval == 0 {
		cfg.Interval = 10 * time.Minute
	}
	if cfg.Workers == 0 {
		cfg.Workers = 4
	}
	if cfg.Quiet.Loc == nil {
		cfg.Quiet = QuietHours{Start: 0, End: 7, Loc: testZone}
	}
	return NewScanner(cfg, ScannerDeps{
		Symbols:  symbols,
		Eval:     h.eval,
		Cooldown: h.cooldown,
		Tracker:  h.tracker,
		Notifier: h.notifier,
		Recorder: h.rec,
		State:    h.state,
		Clock:    h.clock,
		Log:      zaptest.NewLogger(t),
	})
}

func (h *harness) monitor(t *testing.T) *Monitor {
	t.Helper()
	return NewMonitor(time.Minute, MonitorDeps{
		Tracker:  h.tracker,
		Prices:   h.prices,
		Notifier: h.notifier,
		Recorder: h.rec,
		State:    h.state,
		Clock:    h.clock,
		Log:      zaptest.NewLogger(t),
	})
}
