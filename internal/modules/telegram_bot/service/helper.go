package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"cryptocheck/internal/models"
)

// Stdout — запасной Notifier без токена: печатает алерты в поток.
type Stdout struct {
	mu  sync.Mutex
	w   io.Writer
	log *zap.Logger
}

func NewStdout(w io.Writer, log *zap.Logger) *Stdout {
	return &Stdout{w: w, log: log.Named("stdout")}
}

func (s *Stdout) Notify(_ context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(s.w, "----- %s -----\n%s\n\n", time.Now().UTC().Format(time.RFC3339), stripMarkdown(text))
	if err != nil {
		s.log.Warn("write failed", zap.Error(err))
		return &models.DeliveryError{Err: err}
	}
	return nil
}

var markdownReplacer = strings.NewReplacer("*", "", "`", "", "_", "")

// stripMarkdown убирает разметку Telegram Markdown для вывода в консоль.
func stripMarkdown(s string) string {
	return markdownReplacer.Replace(s)
}
