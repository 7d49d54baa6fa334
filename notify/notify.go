// Copyright (c) 2025 fpxbs7777

// Package notify delivers short text alerts to the user.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Notifier sends a message stamped with the time of the event.
type Notifier interface {
	SendMessage(ctx context.Context, at time.Time, text string) error
}

// Log is a Notifier that only writes the messages to the log.
type Log struct{}

func (Log) SendMessage(ctx context.Context, at time.Time, text string) error {
	slog.InfoContext(ctx, "notification", "at", at, "message", text)
	return nil
}

// Multi sends every message to all notifiers and joins their errors.
type Multi []Notifier

func (m Multi) SendMessage(ctx context.Context, at time.Time, text string) error {
	var errs []error
	for _, n := range m {
		if err := n.SendMessage(ctx, at, text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
