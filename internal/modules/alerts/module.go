package alerts

import (
	"go.uber.org/fx"

	"cryptocheck/internal/helper"
	"cryptocheck/internal/modules/alerts/service"
	"cryptocheck/internal/modules/config"
)

func newDaily(cfg *config.Config) *service.Daily {
	return service.NewDaily(helper.LocalZone(cfg.Scheduler.TZOffsetHours))
}

func newCooldownStore(cfg *config.Config) *service.CooldownStore {
	return service.NewCooldownStore(service.CooldownPolicy{
		Mode:   service.CooldownMode(cfg.Cooldown.Policy),
		Window: cfg.Cooldown.Window,
	})
}

func newTracker(cfg *config.Config, daily *service.Daily) *service.Tracker {
	return service.NewTracker(service.OpenPolicy(cfg.Alerts.OpenPolicy), daily)
}

// Module — in-memory состояние алертов: кулдаун, трекер и дневные счётчики.
func Module() fx.Option {
	return fx.Module("alerts",
		fx.Provide(
			newDaily,
			newCooldownStore,
			newTracker,
		),
	)
}
