package service

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
	"github.com/traitview/traitview/config"
)

// Messenger pushes a short HTML message to the company's channel.
type Messenger interface {
	SendMessage(text string) error
}

type telegramMessenger struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

type noopMessenger struct{}

func (noopMessenger) SendMessage(string) error { return nil }

// NewTelegramMessenger falls back to a no-op messenger when the bot is not
// configured or cannot be reached at startup.
func NewTelegramMessenger(cfg *config.Config) Messenger {
	if cfg.Telegram.BotToken == "" || cfg.Telegram.ChatID == 0 {
		log.Info().Msg("Telegram not configured, completion alerts will only be stored")
		return noopMessenger{}
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to init telegram bot, completion alerts will only be stored")
		return noopMessenger{}
	}
	log.Info().Str("bot", bot.Self.UserName).Msg("Telegram messenger ready")
	return &telegramMessenger{bot: bot, chatID: cfg.Telegram.ChatID}
}

func (t *telegramMessenger) SendMessage(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := t.bot.Send(msg)
	return err
}
