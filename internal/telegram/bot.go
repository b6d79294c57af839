// Package telegram is the transport layer: it turns Telegram updates into
// shop actions and shop replies into messages with inline keyboards.
package telegram

import (
	"context"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"fish-shop/internal/shop"
)

type Bot struct {
	api     *tgbotapi.BotAPI
	s       sender
	machine *shop.Machine
}

func New(botToken string, machine *shop.Machine) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	return &Bot{api: api, s: botAPISender{api: api}, machine: machine}, nil
}

func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				b.handleMessage(ctx, update.Message)
				continue
			}
			if update.CallbackQuery != nil {
				b.handleCallback(ctx, update.CallbackQuery)
				continue
			}
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	log.Printf("message from %d (@%s): %q", msg.From.ID, msg.From.UserName, msg.Text)

	action := shop.Action{
		Text:     msg.Text,
		FullName: fullName(msg.From),
	}
	if msg.IsCommand() && msg.Command() == "start" {
		action = shop.Action{Start: true}
	}

	b.send(chatID, b.machine.Handle(ctx, chatID, action))
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	// Ack first so the button stops spinning even when the turn fails.
	if _, err := b.s.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("failed to answer callback: %v", err)
	}
	if cb.Message == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	log.Printf("callback from %d (@%s): %q", cb.From.ID, cb.From.UserName, cb.Data)

	reply := b.machine.Handle(ctx, chatID, shop.Action{
		Data:     cb.Data,
		FullName: fullName(cb.From),
	})
	b.send(chatID, reply)

	// Replace the previous turn's message instead of stacking them; a failed
	// deletion leaves stale buttons behind and nothing worse.
	del := tgbotapi.NewDeleteMessage(chatID, cb.Message.MessageID)
	if _, err := b.s.Request(del); err != nil {
		log.Printf("failed to delete message: %v", err)
	}
}

func (b *Bot) send(chatID int64, reply shop.Reply) {
	markup := keyboard(reply.Buttons)

	if reply.PhotoURL != "" {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(reply.PhotoURL))
		photo.Caption = reply.Text
		if markup != nil {
			photo.ReplyMarkup = markup
		}
		if _, err := b.s.Send(photo); err != nil {
			log.Printf("failed to send photo: %v", err)
		}
		return
	}

	msg := tgbotapi.NewMessage(chatID, reply.Text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := b.s.Send(msg); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}

func keyboard(rows [][]shop.Button) *tgbotapi.InlineKeyboardMarkup {
	if len(rows) == 0 {
		return nil
	}
	kbRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		kbRow := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			kbRow = append(kbRow, tgbotapi.NewInlineKeyboardButtonData(btn.Label, btn.Data))
		}
		kbRows = append(kbRows, kbRow)
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(kbRows...)
	return &markup
}

func fullName(u *tgbotapi.User) string {
	if u == nil {
		return ""
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
