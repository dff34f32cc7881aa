package telegram

import (
	"context"
	"os"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"cryptocheck/internal/modules/config"
	"cryptocheck/internal/modules/telegram_bot/service"
)

type notifierResult struct {
	fx.Out

	Notifier service.Notifier
	Bot      *service.Telegram // nil без токена или chat id
}

// newNotifier — Telegram при наличии токена и чата, иначе вывод в stdout.
func newNotifier(cfg *config.Config, log *zap.Logger) (notifierResult, error) {
	tc := cfg.Telegram
	if tc.Token == "" || tc.ChatID == 0 {
		log.Warn("telegram token or chat id is empty, alerts go to stdout")
		return notifierResult{Notifier: service.NewStdout(os.Stdout, log)}, nil
	}

	tgbot.SetLogger(service.NewBotLogger(log))
	bot, err := service.NewTelegram(service.Config{
		Token:       tc.Token,
		ChatID:      tc.ChatID,
		Endpoint:    tc.Endpoint,
		SendTimeout: tc.SendTimeout,
		PollTimeout: tc.PollTimeout,
	}, log)
	if err != nil {
		return notifierResult{}, err
	}
	return notifierResult{Notifier: bot, Bot: bot}, nil
}

type commandParams struct {
	fx.In

	LC     fx.Lifecycle
	Cfg    *config.Config
	Bot    *service.Telegram
	Status service.StatusProvider
}

// runCommands — приём команд (/status) в отдельной горутине.
func runCommands(p commandParams) {
	if p.Bot == nil || !p.Cfg.Telegram.Commands {
		return
	}
	p.Bot.SetStatusProvider(p.Status)

	ctx, cancel := context.WithCancel(context.Background())
	p.LC.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go p.Bot.Start(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			p.Bot.Stop()
			return nil
		},
	})
}

func Module() fx.Option {
	return fx.Module("telegram",
		fx.Provide(newNotifier),
		fx.Invoke(runCommands),
	)
}
