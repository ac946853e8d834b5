// Package telegram adapts the Telegram Bot API to the notifier's transport
// interface. Menu rendering and command routing live outside this core.
package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Sender delivers notification texts over the Telegram Bot API. It
// implements notifier.Sender.
type Sender struct {
	bot *tgbotapi.BotAPI
	log *zap.Logger
}

// NewSender wraps an authenticated bot client.
func NewSender(bot *tgbotapi.BotAPI, log *zap.Logger) *Sender {
	return &Sender{bot: bot, log: log}
}

// Send delivers a plain text message to the given chat. Errors are returned
// to the caller; the windower decides whether to retry on the next cycle.
func (s *Sender) Send(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	_, err := s.bot.Send(msg)
	return err
}
