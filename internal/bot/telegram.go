package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Bot long-polls Telegram and answers commands through Handler.
type Bot struct {
	api     *tgbotapi.BotAPI
	handler *Handler
	log     *zap.Logger
}

func New(token string, h *Handler, log *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram login: %w", err)
	}
	return &Bot{api: api, handler: h, log: log}, nil
}

// Run serves updates until ctx is done. Commands are handled one at a time.
func (b *Bot) Run(ctx context.Context) error {
	b.log.Info("bot started", zap.String("username", b.api.Self.UserName))
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			if upd.Message == nil || !upd.Message.IsCommand() {
				continue
			}
			b.reply(ctx, upd.Message)
		}
	}
}

func (b *Bot) reply(ctx context.Context, m *tgbotapi.Message) {
	text := b.handler.Handle(ctx, m.Command(), m.CommandArguments())
	msg := tgbotapi.NewMessage(m.Chat.ID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warn("send reply", zap.Error(err), zap.String("command", m.Command()), zap.Int64("chat_id", m.Chat.ID))
	}
}
