package market

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	bootstrap "cryptocheck/internal/modules/bootstrap/service"
	"cryptocheck/internal/modules/config"
	health "cryptocheck/internal/modules/health/service"
	"cryptocheck/internal/modules/market/service"
)

func newOKXClient(cfg *config.Config, log *zap.Logger) *service.OKXClient {
	return service.NewOKXClient(service.OKXConfig{
		BaseURL: cfg.Market.OKXBaseURL,
		Timeout: cfg.Market.FetchTimeout,
	}, log)
}

func newCryptoCompare(cfg *config.Config, log *zap.Logger) *service.CryptoCompare {
	return service.NewCryptoCompare(service.CryptoCompareConfig{
		BaseURL: cfg.Market.CryptoCompareURL,
		APIKey:  cfg.Market.APIKey,
		Timeout: cfg.Market.FetchTimeout,
	}, log)
}

func newCandleSource(cfg *config.Config, okx *service.OKXClient, cc *service.CryptoCompare) service.CandleSource {
	if cfg.Market.Provider == "cryptocompare" {
		return cc
	}
	return okx
}

// restPrices — REST-цена того же провайдера, что и свечи.
func restPrices(cfg *config.Config, okx *service.OKXClient, cc *service.CryptoCompare) service.PriceSource {
	if cfg.Market.Provider == "cryptocompare" {
		return cc
	}
	return okx
}

type priceParams struct {
	fx.In

	Cfg   *config.Config
	OKX   *service.OKXClient
	CC    *service.CryptoCompare
	State *health.State
	Log   *zap.Logger
}

type priceResult struct {
	fx.Out

	Prices service.PriceSource
	Feed   *service.TickerFeed // nil при price_feed=rest
}

func newPriceSource(p priceParams) priceResult {
	rest := restPrices(p.Cfg, p.OKX, p.CC)
	if p.Cfg.Market.PriceFeed != "ws" {
		return priceResult{Prices: rest}
	}
	feed := service.NewTickerFeed(service.TickerFeedConfig{
		URL:    p.Cfg.Market.OKXWSURL,
		MaxAge: p.Cfg.Market.PriceMaxAge,
	}, rest, p.State, p.Log)
	return priceResult{Prices: feed, Feed: feed}
}

type feedParams struct {
	fx.In

	LC       fx.Lifecycle
	Feed     *service.TickerFeed
	Universe *bootstrap.Universe
}

func runTickerFeed(p feedParams) {
	if p.Feed == nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.LC.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				p.Feed.Run(ctx, p.Universe.Symbols)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return nil
		},
	})
}

func Module() fx.Option {
	return fx.Module("market",
		fx.Provide(
			newOKXClient,
			newCryptoCompare,
			newCandleSource,
			newPriceSource,
		),
		fx.Invoke(runTickerFeed),
	)
}
