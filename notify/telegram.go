// Copyright (c) 2025 fpxbs7777

package notify

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/go-telegram/bot"
)

// TelegramKeys configure the Telegram notifier.
type TelegramKeys struct {
	BotToken string `json:"token"`

	// ChatIDs receive every notification.
	ChatIDs []int64 `json:"chat_ids"`
}

func (v *TelegramKeys) Check() error {
	if len(v.BotToken) == 0 {
		return fmt.Errorf("bot token cannot be empty")
	}
	if len(v.ChatIDs) == 0 {
		return fmt.Errorf("at least one chat id is required")
	}
	if slices.Contains(v.ChatIDs, 0) {
		return fmt.Errorf("zero is not a valid chat id")
	}
	return nil
}

type Telegram struct {
	bot *bot.Bot

	chatIDs []int64
}

// NewTelegram creates a send-only Telegram notifier. Extra bot options are
// passed to the bot client.
func NewTelegram(keys *TelegramKeys, opts ...bot.Option) (*Telegram, error) {
	if err := keys.Check(); err != nil {
		return nil, err
	}
	opts = append([]bot.Option{bot.WithSkipGetMe()}, opts...)
	b, err := bot.New(keys.BotToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not create telegram bot: %w", err)
	}
	t := &Telegram{
		bot:     b,
		chatIDs: slices.Clone(keys.ChatIDs),
	}
	return t, nil
}

func (t *Telegram) SendMessage(ctx context.Context, at time.Time, text string) error {
	msg := at.Format("2006-01-02 15:04:05 MST") + " " + text
	var last error
	for _, cid := range t.chatIDs {
		m := &bot.SendMessageParams{
			ChatID: cid,
			Text:   msg,
		}
		if _, err := t.bot.SendMessage(ctx, m); err != nil {
			slog.Error("could not notify telegram chat (ignored)", "chat", cid, "err", err)
			last = err
			continue
		}
	}
	if last != nil {
		return fmt.Errorf("could not send telegram notification to all chats: %w", last)
	}
	return nil
}
