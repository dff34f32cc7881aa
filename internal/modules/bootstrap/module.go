package bootstrap

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"cryptocheck/internal/helper"
	"cryptocheck/internal/modules/bootstrap/service"
	"cryptocheck/internal/modules/config"
	market "cryptocheck/internal/modules/market/service"
)

const resolveTimeout = 30 * time.Second

func newWatchlist(cfg *config.Config, okx *market.OKXClient, log *zap.Logger) *service.Watchlist {
	return service.NewWatchlist(okx, cfg.Universe.Symbols, cfg.Universe.TopVolatile, log)
}

func newWarmuper(cfg *config.Config, src market.CandleSource, log *zap.Logger) *service.Warmuper {
	return service.NewWarmuper(src, helper.NormTF(cfg.Market.LongTF), cfg.Rules.WarmupBars(), log)
}

// newUniverse — список символов собирается один раз при сборке графа.
func newUniverse(wl *service.Watchlist, wu *service.Warmuper, log *zap.Logger) *service.Universe {
	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()

	u := wl.Resolve(ctx)
	u.Symbols = wu.Filter(ctx, u.Symbols)
	log.Info("universe ready", zap.Int("symbols", len(u.Symbols)))
	return &u
}

func Module() fx.Option {
	return fx.Module("bootstrap",
		fx.Provide(
			newWatchlist,
			newWarmuper,
			newUniverse,
		),
	)
}
