package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"cryptocheck/internal/helper"
)

// VolatilityRanker — источник самых волатильных пар (OKX tickers).
type VolatilityRanker interface {
	TopVolatile(ctx context.Context, n int) ([]string, error)
}

// Universe — символы, которые оценивает планировщик.
type Universe struct {
	Symbols []string
}

type Watchlist struct {
	ranker VolatilityRanker
	static []string
	topN   int
	log    *zap.Logger
}

func NewWatchlist(ranker VolatilityRanker, static []string, topN int, log *zap.Logger) *Watchlist {
	return &Watchlist{ranker: ranker, static: static, topN: topN, log: log.Named("watchlist")}
}

// Resolve — topN волатильных пар, если задано; при ошибке или пустом ответе статический список.
func (w *Watchlist) Resolve(ctx context.Context) Universe {
	if w.topN > 0 && w.ranker != nil {
		syms, err := w.ranker.TopVolatile(ctx, w.topN)
		switch {
		case err != nil:
			w.log.Warn("top volatile failed, using static list", zap.Error(err))
		case len(syms) == 0:
			w.log.Warn("top volatile empty, using static list")
		default:
			w.log.Info("top volatile universe", zap.Strings("symbols", syms))
			return Universe{Symbols: normalize(syms)}
		}
	}
	return Universe{Symbols: normalize(w.static)}
}

// normalize — верхний регистр, без дублей и неподдерживаемых символов, порядок сохраняется.
func normalize(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToUpper(strings.TrimSpace(s))
		if _, _, ok := helper.SplitSymbol(s); !ok {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
