package notifier

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Alien67x6/mt5-monitoring-API/internal/logger"
)

// CommandHandler is called with the bare command name ("check", "status", ...)
// and returns the HTML reply. An empty reply sends nothing.
type CommandHandler func(ctx context.Context, command string) string

// ListenForCommands polls for Telegram updates and answers bot commands in a
// background goroutine. It returns immediately; the goroutine stops when ctx
// is cancelled. The returned channel is closed when it has stopped.
func (t *TelegramNotifier) ListenForCommands(ctx context.Context, handler CommandHandler) <-chan struct{} {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := t.bot.GetUpdatesChan(u)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				t.bot.StopReceivingUpdates()
				logger.Info("Telegram polling stopped")
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				if update.Message == nil || !update.Message.IsCommand() {
					continue
				}
				t.handleCommand(ctx, update.Message, handler)
			}
		}
	}()
	return done
}

func (t *TelegramNotifier) handleCommand(ctx context.Context, msg *tgbotapi.Message, handler CommandHandler) {
	cmd := msg.Command()
	logger.Info("received command: /%s", cmd)
	reply := handler(ctx, cmd)
	if reply == "" {
		return
	}
	if err := t.sendTo(ctx, msg.Chat.ID, reply); err != nil {
		logger.Error("send reply: %v", err)
	}
}
