package service

import (
	"context"
	"net/http"
	"sync"
	"time"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"cryptocheck/internal/models"
)

// Notifier — канал доставки алертов.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// StatusProvider — текст ответа на /status.
type StatusProvider interface {
	StatusText(now time.Time) string
}

type Config struct {
	Token       string
	ChatID      int64
	Endpoint    string // формат tgbot.APIEndpoint; пусто — api.telegram.org
	SendTimeout time.Duration
	// PollTimeout — сколько сервер держит getUpdates; клиентский таймаут больше на SendTimeout.
	PollTimeout time.Duration
}

const (
	defaultSendTimeout = 10 * time.Second
	defaultPollTimeout = 30 * time.Second
)

// Telegram — отправка алертов в один чат и ответы на команды из него.
type Telegram struct {
	bot         *tgbot.BotAPI
	chatID      int64
	pollTimeout time.Duration
	log         *zap.Logger

	mu     sync.RWMutex
	status StatusProvider
}

func NewTelegram(cfg Config, log *zap.Logger) (*Telegram, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = tgbot.APIEndpoint
	}
	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	poll := cfg.PollTimeout.Truncate(time.Second)
	if poll <= 0 {
		poll = defaultPollTimeout
	}

	// один клиент на отправку и на getUpdates: запрос, который сервер держит poll, не должен обрываться
	b, err := tgbot.NewBotAPIWithClient(cfg.Token, endpoint, &http.Client{Timeout: poll + timeout})
	if err != nil {
		return nil, errors.Wrap(err, "telegram auth")
	}

	return &Telegram{
		bot:         b,
		chatID:      cfg.ChatID,
		pollTimeout: poll,
		log:         log.Named("telegram"),
	}, nil
}

// SetStatusProvider подключает источник для /status после сборки графа.
func (t *Telegram) SetStatusProvider(p StatusProvider) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = p
}

func (t *Telegram) statusProvider() StatusProvider {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// Notify — Markdown-сообщение в настроенный чат. Ошибка всегда *models.DeliveryError.
func (t *Telegram) Notify(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return &models.DeliveryError{Err: err}
	}
	msg := tgbot.NewMessage(t.chatID, text)
	msg.ParseMode = tgbot.ModeMarkdown
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		return &models.DeliveryError{Err: err}
	}
	return nil
}

// Send — ответ в произвольный чат (команды).
func (t *Telegram) Send(chatID int64, text string) (tgbot.Message, error) {
	msg := tgbot.NewMessage(chatID, text)
	msg.ParseMode = tgbot.ModeMarkdown
	return t.bot.Send(msg)
}
