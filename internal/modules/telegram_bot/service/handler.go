package service

import (
	"context"
	"time"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	btnStatus = "📊 Статус"

	helpText = "Бот присылает сигналы по свечным паттернам с подтверждением индикаторами.\n\n" +
		"/status — состояние сканера и открытые алерты\n" +
		"/help — эта справка"
)

// Start — цикл long polling. Возвращается после Stop или отмены ctx.
func (t *Telegram) Start(ctx context.Context) {
	u := tgbot.NewUpdate(0)
	u.Timeout = int(t.pollTimeout / time.Second)
	updates := t.bot.GetUpdatesChan(u)
	t.log.Info("command loop started")
	for {
		select {
		case <-ctx.Done():
			t.log.Info("command loop stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			t.handleUpdate(update)
		}
	}
}

func (t *Telegram) Stop() {
	t.bot.StopReceivingUpdates()
}

func (t *Telegram) handleUpdate(update tgbot.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return
	}
	// бот однопользовательский: чужие чаты игнорируем
	if msg.Chat.ID != t.chatID {
		return
	}

	var reply string
	switch {
	case msg.IsCommand():
		switch msg.Command() {
		case "start", "help":
			t.sendMenu(msg.Chat.ID, helpText)
			return
		case "status":
			reply = t.statusText()
		default:
			reply = "Неизвестная команда. /help"
		}
	case msg.Text == btnStatus:
		reply = t.statusText()
	default:
		return
	}

	if _, err := t.Send(msg.Chat.ID, reply); err != nil {
		t.log.Warn("reply failed", zap.Error(err))
	}
}

func (t *Telegram) sendMenu(chatID int64, text string) {
	kb := tgbot.NewReplyKeyboard(
		tgbot.NewKeyboardButtonRow(tgbot.NewKeyboardButton(btnStatus)),
	)
	msg := tgbot.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	if _, err := t.bot.Send(msg); err != nil {
		t.log.Warn("menu failed", zap.Error(err))
	}
}

func (t *Telegram) statusText() string {
	p := t.statusProvider()
	if p == nil {
		return "ℹ️ Статус пока недоступен"
	}
	return p.StatusText(time.Now())
}
