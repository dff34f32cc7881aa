package service

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// BotLogger — внутренний лог telegram-bot-api (ретраи getUpdates и т.п.) в zap.
type BotLogger struct {
	log *zap.Logger
}

func NewBotLogger(log *zap.Logger) *BotLogger {
	return &BotLogger{log: log.Named("tgbot")}
}

func (l *BotLogger) Println(v ...interface{}) {
	l.log.Warn(strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

func (l *BotLogger) Printf(format string, v ...interface{}) {
	l.log.Warn(strings.TrimSuffix(fmt.Sprintf(format, v...), "\n"))
}
