package service

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cryptocheck/internal/models"
)

// CandleSource — то же, что у стратегии; нужен только для проверки истории.
type CandleSource interface {
	GetBars(ctx context.Context, symbol string, tf models.Timeframe, limit int) ([]models.Bar, error)
}

// Warmuper проверяет при старте, что у символов хватает истории на прогрев индикаторов.
type Warmuper struct {
	src  CandleSource
	tf   models.Timeframe
	need int
	log  *zap.Logger

	// ограничитель параллелизма, чтобы не словить rate limit
	parallel int
}

func NewWarmuper(src CandleSource, tf models.Timeframe, need int, log *zap.Logger) *Warmuper {
	return &Warmuper{src: src, tf: tf, need: need, log: log.Named("warmup"), parallel: 8}
}

// Filter отбрасывает символы с историей короче прогрева.
// Сетевые ошибки символ не исключают: в цикле оценки он просто пропустится.
func (w *Warmuper) Filter(ctx context.Context, symbols []string) []string {
	keep := make([]bool, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.parallel)
	var mu sync.Mutex
	dropped := 0
	for i, sym := range symbols {
		g.Go(func() error {
			bars, err := w.src.GetBars(gctx, sym, w.tf, w.need)
			if err != nil {
				w.log.Warn("warmup fetch failed", zap.String("symbol", sym), zap.Error(err))
				keep[i] = true
				return nil
			}
			if len(bars) < w.need {
				w.log.Warn("not enough history", zap.String("symbol", sym), zap.Int("bars", len(bars)), zap.Int("need", w.need))
				mu.Lock()
				dropped++
				mu.Unlock()
				return nil
			}
			keep[i] = true
			return nil
		})
	}
	_ = g.Wait()

	out := make([]string, 0, len(symbols))
	for i, s := range symbols {
		if keep[i] {
			out = append(out, s)
		}
	}
	w.log.Info("warmup done", zap.Int("symbols", len(out)), zap.Int("dropped", dropped))
	return out
}
