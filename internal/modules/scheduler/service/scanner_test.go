package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptocheck/internal/models"
	alerts "cryptocheck/internal/modules/alerts/service"
)

func TestScannerEmitsAndTracks(t *testing.T) {
	h := newHarness(t, alerts.OpenSuppress)
	h.eval.set("BTCUSDT", withSignal(testSignal("BTCUSDT", models.DirectionLong)))
	s := h.scanner(t, ScannerConfig{}, "BTCUSDT", "ETHUSDT")

	stats := s.Cycle(context.Background())
	assert.Equal(t, CycleStats{Evaluated: 2, Emitted: 1}, stats)
	assert.True(t, h.tracker.Has("BTCUSDT"))
	assert.Equal(t, 1, h.cooldown.Len())

	msgs := h.notifier.Messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], "`BTCUSDT`")
	assert.Contains(t, msgs[0], "BUY / LONG")

	open := h.tracker.Snapshot()
	require.Len(t, open, 1)
	assert.Equal(t, day1, open[0].CreatedAt)

	assert.True(t, h.state.Ready())
	assert.Equal(t, 1, h.state.OpenAlerts())
	assert.Equal(t, 2, h.state.Symbols())
}

// Повтор по символу с открытым алертом подавляется, после закрытия
// действует кулдаун, после окна сигнал проходит снова.
func TestScannerSuppressThenCooldown(t *testing.T) {
	h := newHarness(t, alerts.OpenSuppress)
	h.eval.set("BTCUSDT", withSignal(testSignal("BTCUSDT", models.DirectionLong)))
	s := h.scanner(t, ScannerConfig{}, "BTCUSDT")
	ctx := context.Background()

	require.Equal(t, 1, s.Cycle(ctx).Emitted)

	h.clock.Set(day1.Add(10 * time.Minute))
	assert.Equal(t, 1, s.Cycle(ctx).Suppressed)

	_, ok := h.tracker.Update("BTCUSDT", 98, h.clock.Now())
	require.True(t, ok)
	require.False(t, h.tracker.Has("BTCUSDT"))

	h.clock.Set(day1.Add(20 * time.Minute))
	assert.Equal(t, 1, s.Cycle(ctx).CooledDown)

	h.clock.Set(day1.Add(31 * time.Minute))
	assert.Equal(t, 1, s.Cycle(ctx).Emitted)
	assert.Len(t, h.notifier.Messages(), 2)
}

func TestScannerReplacePolicy(t *testing.T) {
	h := newHarness(t, alerts.OpenReplace)
	h.eval.set("BTCUSDT", withSignal(testSignal("BTCUSDT", models.DirectionLong)))
	s := h.scanner(t, ScannerConfig{}, "BTCUSDT")
	ctx := context.Background()

	require.Equal(t, 1, s.Cycle(ctx).Emitted)

	h.eval.set("BTCUSDT", withSignal(testSignal("BTCUSDT", models.DirectionShort)))
	h.clock.Set(day1.Add(10 * time.Minute))
	require.Equal(t, 1, s.Cycle(ctx).Emitted)

	msgs := h.notifier.Messages()
	require.Len(t, msgs, 3)
	assert.Contains(t, msgs[1], "заменён")
	assert.Contains(t, msgs[2], "SELL / SHORT")

	open := h.tracker.Snapshot()
	require.Len(t, open, 1)
	assert.Equal(t, models.DirectionShort, open[0].Direction)
}

func TestScannerErrorsDoNotStopCycle(t *testing.T) {
	h := newHarness(t, alerts.OpenSuppress)
	h.eval.set("BTCUSDT", withSignal(testSignal("BTCUSDT", models.DirectionLong)))
	h.eval.set("ETHUSDT", evalResult{err: &models.FetchError{Symbol: "ETHUSDT", Timeframe: "5m", Err: errors.New("timeout")}})
	h.eval.set("SOLUSDT", evalResult{err: models.ErrInsufficientData})
	s := h.scanner(t, ScannerConfig{}, "BTCUSDT", "ETHUSDT", "SOLUSDT")

	stats := s.Cycle(context.Background())
	assert.Equal(t, 3, stats.Evaluated)
	assert.Equal(t, 1, stats.Emitted)
	assert.Equal(t, 2, stats.Errors)

	expected := `
# HELP cryptocheck_fetch_errors_total Candle or price fetch failures
# TYPE cryptocheck_fetch_errors_total counter
cryptocheck_fetch_errors_total{symbol="ETHUSDT",timeframe="5m"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(h.reg, strings.NewReader(expected), "cryptocheck_fetch_errors_total"))
}

func TestScannerDeliveryErrorKeepsAlert(t *testing.T) {
	h := newHarness(t, alerts.OpenSuppress)
	h.notifier.err = errors.New("telegram down")
	h.eval.set("BTCUSDT", withSignal(testSignal("BTCUSDT", models.DirectionLong)))
	s := h.scanner(t, ScannerConfig{}, "BTCUSDT")

	assert.Equal(t, 1, s.Cycle(context.Background()).Emitted)
	assert.True(t, h.tracker.Has("BTCUSDT"))

	expected := `
# HELP cryptocheck_delivery_errors_total Alert sink delivery failures
# TYPE cryptocheck_delivery_errors_total counter
cryptocheck_delivery_errors_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(h.reg, strings.NewReader(expected), "cryptocheck_delivery_errors_total"))
}

func TestScannerQuietHours(t *testing.T) {
	h := newHarness(t, alerts.OpenSuppress)
	h.eval.set("BTCUSDT", withSignal(testSignal("BTCUSDT", models.DirectionLong)))
	s := h.scanner(t, ScannerConfig{Heartbeat: time.Hour}, "BTCUSDT")

	// 01:00 локального времени
	h.clock.Set(time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC))
	stats := s.Cycle(context.Background())
	assert.True(t, stats.Quiet)
	assert.Zero(t, h.eval.Calls())
	assert.Empty(t, h.notifier.Messages(), "no heartbeat while quiet")
	assert.True(t, h.state.Quiet())

	expected := `
# HELP cryptocheck_quiet_cycles_total Evaluation cycles skipped by quiet hours
# TYPE cryptocheck_quiet_cycles_total counter
cryptocheck_quiet_cycles_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(h.reg, strings.NewReader(expected), "cryptocheck_quiet_cycles_total"))

	// 07:00 локального времени
	h.clock.Set(time.Date(2026, 3, 11, 4, 0, 0, 0, time.UTC))
	stats = s.Cycle(context.Background())
	assert.False(t, stats.Quiet)
	assert.Equal(t, 1, stats.Emitted)
	assert.False(t, h.state.Quiet())
}

func TestScannerHeartbeat(t *testing.T) {
	h := newHarness(t, alerts.OpenSuppress)
	s := h.scanner(t, ScannerConfig{Heartbeat: 2 * time.Hour}, "BTCUSDT")
	ctx := context.Background()

	s.Cycle(ctx)
	h.clock.Set(day1.Add(time.Hour))
	s.Cycle(ctx)
	h.clock.Set(day1.Add(2 * time.Hour))
	s.Cycle(ctx)

	msgs := h.notifier.Messages()
	require.Len(t, msgs, 2)
	for _, m := range msgs {
		assert.Contains(t, m, "Бот активен")
	}
}

func TestScannerDailyReport(t *testing.T) {
	h := newHarness(t, alerts.OpenSuppress)
	h.eval.set("BTCUSDT", withSignal(testSignal("BTCUSDT", models.DirectionLong)))
	s := h.scanner(t, ScannerConfig{DailyReport: true}, "BTCUSDT")
	ctx := context.Background()

	s.Cycle(ctx)
	_, ok := h.tracker.Update("BTCUSDT", 103, day1.Add(time.Hour))
	require.True(t, ok)

	// следующий локальный день, 12:00
	h.clock.Set(time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC))
	h.eval.set("BTCUSDT", evalResult{})
	s.Cycle(ctx)

	msgs := h.notifier.Messages()
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[1], "2026-03-10")
	assert.Contains(t, msgs[1], "Сигналов: `1`")
	assert.Contains(t, msgs[1], "TP2: `1`")

	h.clock.Set(time.Date(2026, 3, 11, 10, 0, 0, 0, time.UTC))
	s.Cycle(ctx)
	assert.Len(t, h.notifier.Messages(), 2, "report is sent once")
}

func TestScannerCancelledCommitsNothing(t *testing.T) {
	h := newHarness(t, alerts.OpenSuppress)
	h.eval.set("BTCUSDT", withSignal(testSignal("BTCUSDT", models.DirectionLong)))
	s := h.scanner(t, ScannerConfig{}, "BTCUSDT")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stats := s.Cycle(ctx)
	assert.Zero(t, stats.Emitted)
	assert.Zero(t, h.cooldown.Len())
	assert.False(t, h.tracker.Has("BTCUSDT"))
}

func TestScannerRunStopsOnCancel(t *testing.T) {
	h := newHarness(t, alerts.OpenSuppress)
	s := h.scanner(t, ScannerConfig{Interval: time.Millisecond}, "BTCUSDT")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	require.Eventually(t, func() bool { return h.eval.Calls() >= 2 }, time.Second, time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scanner did not stop")
	}
}
