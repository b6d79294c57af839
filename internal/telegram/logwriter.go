package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// LogWriter mirrors log output to an admin chat through a separate bot, so
// failures of the shop bot are visible without shell access. Delivery is
// best effort: a write never returns an error, or logging itself would die.
type LogWriter struct {
	s      sender
	chatID int64
}

func NewLogWriter(botToken string, chatID int64) (*LogWriter, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	return &LogWriter{s: botAPISender{api: api}, chatID: chatID}, nil
}

func (w *LogWriter) Write(p []byte) (int, error) {
	text := strings.TrimSpace(string(p))
	if text != "" {
		_, _ = w.s.Send(tgbotapi.NewMessage(w.chatID, text))
	}
	return len(p), nil
}
