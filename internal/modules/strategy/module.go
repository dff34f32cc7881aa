package strategy

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"cryptocheck/internal/helper"
	"cryptocheck/internal/modules/config"
	market "cryptocheck/internal/modules/market/service"
	"cryptocheck/internal/modules/strategy/service"
)

// NewEvaluatorConfig — пороги и периоды из rules/risk/market.
func NewEvaluatorConfig(cfg *config.Config) service.EvaluatorConfig {
	r := cfg.Rules
	return service.EvaluatorConfig{
		ShortTF:  helper.NormTF(cfg.Market.ShortTF),
		LongTF:   helper.NormTF(cfg.Market.LongTF),
		BarLimit: cfg.Market.BarLimit,
		Indicators: service.IndicatorConfig{
			EMAFast:    r.EMAFast,
			EMASlow:    r.EMASlow,
			RSIPeriod:  r.RSIPeriod,
			MACDFast:   r.MACDFast,
			MACDSlow:   r.MACDSlow,
			MACDSignal: r.MACDSignal,
			ATRPeriod:  r.ATRPeriod,
			ADXPeriod:  r.ADXPeriod,
		},
		Patterns: service.PatternRules{
			BodyThreshold:        r.BodyThreshold,
			BodyMaxRatio:         r.BodyMaxRatio,
			TailMinRatio:         r.TailMinRatio,
			OppositeTailMaxRatio: r.OppositeTailMaxRatio,
			DojiBodyThreshold:    r.DojiBodyThreshold,
			DojiBias:             r.DojiBias,
			SpikeMultiplier:      r.SpikeMultiplier,
		},
		Score: service.ScoreRules{
			ConfidenceThreshold:    r.ConfidenceThreshold,
			OscillatorMidline:      r.OscillatorMidline,
			TrendStrengthThreshold: r.TrendStrengthThreshold,
		},
		Risk: service.RiskRules{
			SLMult:      cfg.Risk.SLATRMult,
			TP1Mult:     cfg.Risk.TP1ATRMult,
			TP2Mult:     cfg.Risk.TP2ATRMult,
			MinATRRatio: cfg.Risk.MinATRRatio,
		},
		Reconciler: service.Reconciler{AcceptLongOnlyAtMax: r.AcceptLongOnlyMax},
	}
}

func newEvaluator(cfg service.EvaluatorConfig, src market.CandleSource, log *zap.Logger) *service.Evaluator {
	return service.NewEvaluator(cfg, src, log)
}

func Module() fx.Option {
	return fx.Module("strategy",
		fx.Provide(
			NewEvaluatorConfig,
			newEvaluator,
		),
	)
}
