package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/hupe1980/salesmesh/config"
)

// telegramMessageLimit is the maximum text length Telegram accepts per message.
const telegramMessageLimit = 4096

// TelegramSink delivers reports to a chat, splitting long documents across
// multiple messages.
type TelegramSink struct {
	bot    *telego.Bot
	chatID int64
}

// NewTelegramSink builds a sink for the given bot token and chat.
func NewTelegramSink(cfg config.TelegramConfig) (*TelegramSink, error) {
	bot, err := telego.NewBot(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &TelegramSink{bot: bot, chatID: cfg.ChatID}, nil
}

// Name implements Sink.
func (s *TelegramSink) Name() string { return "telegram" }

// Send delivers the summary followed by the full document.
func (s *TelegramSink) Send(ctx context.Context, report Report) error {
	text := report.Summary
	if report.Document != "" {
		text += "\n\n" + report.Document
	}

	for _, chunk := range chunkMessage(text, telegramMessageLimit) {
		msg := tu.Message(tu.ID(s.chatID), chunk)
		if _, err := s.bot.SendMessage(ctx, msg); err != nil {
			return fmt.Errorf("send telegram message: %w", err)
		}
	}

	return nil
}

// chunkMessage splits text into pieces below maxLen, preferring to cut at a
// newline when one falls in the second half of the window.
func chunkMessage(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var chunks []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			chunks = append(chunks, text)
			break
		}

		cutAt := maxLen
		if idx := strings.LastIndex(text[:maxLen], "\n"); idx > maxLen/2 {
			cutAt = idx + 1
		}

		chunks = append(chunks, text[:cutAt])
		text = text[cutAt:]
	}

	return chunks
}
