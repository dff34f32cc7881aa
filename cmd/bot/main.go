package main

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"cryptocheck/internal/modules/alerts"
	"cryptocheck/internal/modules/bootstrap"
	"cryptocheck/internal/modules/config"
	"cryptocheck/internal/modules/health"
	"cryptocheck/internal/modules/market"
	"cryptocheck/internal/modules/metrics"
	"cryptocheck/internal/modules/scheduler"
	"cryptocheck/internal/modules/strategy"
	telegram "cryptocheck/internal/modules/telegram_bot"
	"cryptocheck/pkg/logger"
	"cryptocheck/pkg/tracing"
)

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger.SetServiceName(cfg.Service.Name)
	return logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
}

func initTracing(lc fx.Lifecycle, cfg *config.Config) error {
	tracing.SetServiceName(cfg.Service.Name)
	_, closeTracer, err := tracing.InitTracer(tracing.Config{
		Enabled: cfg.Tracing.Enabled,
		Host:    cfg.Tracing.Host,
		Port:    cfg.Tracing.Port,
	})
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			closeTracer()
			return nil
		},
	})
	return nil
}

func main() {
	app := fx.New(
		config.Module(),
		fx.Provide(newLogger),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		fx.Invoke(initTracing),

		metrics.Module(),
		health.Module(),
		market.Module(),
		bootstrap.Module(),
		strategy.Module(),
		alerts.Module(),
		telegram.Module(),
		scheduler.Module(),
	)
	app.Run()
}
