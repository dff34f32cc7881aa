package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	alerts "cryptocheck/internal/modules/alerts/service"
	health "cryptocheck/internal/modules/health/service"
	"cryptocheck/internal/modules/metrics"
)

// PriceSource — последняя цена символа.
type PriceSource interface {
	LastPrice(ctx context.Context, symbol string) (float64, error)
}

// Monitor — сопровождение открытых алертов. Тихие часы на него не действуют.
type Monitor struct {
	interval time.Duration
	tracker  *alerts.Tracker
	prices   PriceSource
	notifier Notifier
	rec      *metrics.Recorder
	state    *health.State
	clock    Clock
	log      *zap.Logger
}

type MonitorDeps struct {
	Tracker  *alerts.Tracker
	Prices   PriceSource
	Notifier Notifier
	Recorder *metrics.Recorder
	State    *health.State
	Clock    Clock
	Log      *zap.Logger
}

func NewMonitor(interval time.Duration, d MonitorDeps) *Monitor {
	clock := d.Clock
	if clock == nil {
		clock = SystemClock
	}
	return &Monitor{
		interval: interval,
		tracker:  d.Tracker,
		prices:   d.Prices,
		notifier: d.Notifier,
		rec:      d.Recorder,
		state:    d.State,
		clock:    clock,
		log:      d.Log.Named("monitor"),
	}
}

func (m *Monitor) Run(ctx context.Context) {
	m.log.Info("monitor started", zap.Duration("interval", m.interval))
	t := time.NewTicker(m.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			m.log.Info("monitor stopped")
			return
		case <-t.C:
			m.Check(ctx)
		}
	}
}

// Check — одна цена на каждый открытый алерт. Ошибка цены оставляет алерт как есть.
func (m *Monitor) Check(ctx context.Context) []alerts.Transition {
	var out []alerts.Transition
	for _, a := range m.tracker.Snapshot() {
		if ctx.Err() != nil {
			break
		}
		px, err := m.prices.LastPrice(ctx, a.Symbol)
		if err != nil {
			m.rec.FetchError(a.Symbol, "")
			m.log.Warn("price failed", zap.String("symbol", a.Symbol), zap.Error(err))
			continue
		}

		tr, ok := m.tracker.Update(a.Symbol, px, m.clock.Now())
		if !ok {
			continue
		}
		out = append(out, tr)
		if tr.To.Closed() {
			m.rec.AlertClosed(string(tr.To))
		}
		m.log.Info("alert transition",
			zap.String("symbol", a.Symbol),
			zap.String("from", string(tr.From)),
			zap.String("to", string(tr.To)),
			zap.Float64("price", px),
		)
		if err := m.notifier.Notify(ctx, FormatTransition(tr)); err != nil {
			m.rec.DeliveryError()
			m.log.Warn("delivery failed", zap.Error(err))
		}
	}

	open := m.tracker.Len()
	m.state.SetOpenAlerts(open)
	m.rec.SetOpenAlerts(open)
	return out
}
