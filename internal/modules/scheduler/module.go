package scheduler

import (
	"context"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"cryptocheck/internal/helper"
	alerts "cryptocheck/internal/modules/alerts/service"
	bootstrap "cryptocheck/internal/modules/bootstrap/service"
	"cryptocheck/internal/modules/config"
	health "cryptocheck/internal/modules/health/service"
	market "cryptocheck/internal/modules/market/service"
	"cryptocheck/internal/modules/metrics"
	"cryptocheck/internal/modules/scheduler/service"
	strategy "cryptocheck/internal/modules/strategy/service"
	telegram "cryptocheck/internal/modules/telegram_bot/service"
)

func newQuietHours(cfg *config.Config) service.QuietHours {
	s := cfg.Scheduler
	return service.QuietHours{
		Start: s.QuietStartHour,
		End:   s.QuietEndHour,
		Loc:   helper.LocalZone(s.TZOffsetHours),
	}
}

type scannerParams struct {
	fx.In

	Cfg      *config.Config
	Quiet    service.QuietHours
	Universe *bootstrap.Universe
	Eval     *strategy.Evaluator
	Cooldown *alerts.CooldownStore
	Tracker  *alerts.Tracker
	Notifier telegram.Notifier
	Recorder *metrics.Recorder
	State    *health.State
	Log      *zap.Logger
}

func newScanner(p scannerParams) *service.Scanner {
	s := p.Cfg.Scheduler
	return service.NewScanner(service.ScannerConfig{
		Interval:    s.Interval,
		Workers:     s.Workers,
		Heartbeat:   s.HeartbeatInterval,
		Quiet:       p.Quiet,
		DailyReport: s.DailyReport,
	}, service.ScannerDeps{
		Symbols:  p.Universe.Symbols,
		Eval:     p.Eval,
		Cooldown: p.Cooldown,
		Tracker:  p.Tracker,
		Notifier: p.Notifier,
		Recorder: p.Recorder,
		State:    p.State,
		Log:      p.Log,
	})
}

type monitorParams struct {
	fx.In

	Cfg      *config.Config
	Tracker  *alerts.Tracker
	Prices   market.PriceSource
	Notifier telegram.Notifier
	Recorder *metrics.Recorder
	State    *health.State
	Log      *zap.Logger
}

func newMonitor(p monitorParams) *service.Monitor {
	return service.NewMonitor(p.Cfg.Scheduler.MonitorInterval, service.MonitorDeps{
		Tracker:  p.Tracker,
		Prices:   p.Prices,
		Notifier: p.Notifier,
		Recorder: p.Recorder,
		State:    p.State,
		Log:      p.Log,
	})
}

func newStatus(tracker *alerts.Tracker, state *health.State, quiet service.QuietHours) telegram.StatusProvider {
	return service.NewStatus(tracker, state, quiet)
}

// run — сканер и монитор в своих горутинах; OnStop отменяет ctx и ждёт их.
func run(lc fx.Lifecycle, scanner *service.Scanner, monitor *service.Monitor) {
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			wg.Add(2)
			go func() {
				defer wg.Done()
				scanner.Run(ctx)
			}()
			go func() {
				defer wg.Done()
				monitor.Run(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			done := make(chan struct{})
			go func() {
				wg.Wait()
				close(done)
			}()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return nil
		},
	})
}

func Module() fx.Option {
	return fx.Module("scheduler",
		fx.Provide(
			newQuietHours,
			newScanner,
			newMonitor,
			newStatus,
		),
		fx.Invoke(run),
	)
}
