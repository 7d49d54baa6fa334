// Copyright (c) 2025 fpxbs7777

package online

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/fpxbs7777/HM/errs"
	"github.com/fpxbs7777/HM/exchange"
)

// Subscription is a handle to a joined feed channel.
type Subscription struct {
	feed    *Feed
	channel string
}

var _ exchange.Subscription = &Subscription{}

func (s *Subscription) Channel() string {
	return s.channel
}

// Cancel leaves the channel. Canceling twice fails with os.ErrNotExist.
func (s *Subscription) Cancel(ctx context.Context) error {
	return s.feed.unsubscribe(ctx, s)
}

func (f *Feed) SubscribeSecurities(ctx context.Context, panel exchange.Panel, settlement exchange.Settlement) (exchange.Subscription, error) {
	if panel.GroupName() == "" {
		return nil, errs.New(errs.KindConfig, "subscribe-securities", errs.WithMessage("unknown panel "+string(panel)))
	}
	if settlement == exchange.SettlementNone || !settlement.Valid() {
		return nil, errs.New(errs.KindConfig, "subscribe-securities", errs.WithMessage("settlement must be spot, 24hs or 48hs"))
	}
	return f.subscribe(ctx, securitiesChannel(panel, settlement))
}

func (f *Feed) SubscribeOptions(ctx context.Context) (exchange.Subscription, error) {
	return f.subscribe(ctx, optionsChannel())
}

func (f *Feed) SubscribeRepos(ctx context.Context) (exchange.Subscription, error) {
	return f.subscribe(ctx, reposChannel())
}

func (f *Feed) SubscribeOrderBook(ctx context.Context, symbol string, settlement exchange.Settlement) (exchange.Subscription, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, errs.New(errs.KindConfig, "subscribe-order-book", errs.WithMessage("symbol cannot be empty"))
	}
	if settlement == exchange.SettlementNone || !settlement.Valid() {
		return nil, errs.New(errs.KindConfig, "subscribe-order-book", errs.WithMessage("settlement must be spot, 24hs or 48hs"))
	}
	return f.subscribe(ctx, orderBookChannel(symbol, settlement))
}

// Channels returns the names of the active channels.
func (f *Feed) Channels() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var list []string
	for ch := range f.channels {
		list = append(list, ch)
	}
	slices.Sort(list)
	return list
}

func (f *Feed) subscribe(ctx context.Context, channel string) (exchange.Subscription, error) {
	if err := context.Cause(f.lifeCtx); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.channels[channel]; ok {
		return nil, fmt.Errorf("channel %q is already subscribed: %w", channel, os.ErrExist)
	}
	sub := &Subscription{feed: f, channel: channel}
	f.channels[channel] = sub

	// Channels are joined on every (re)connect, so a failed write here is
	// retried by the connection loop.
	if f.conn != nil {
		if err := f.writeLocked(f.conn, methodJoinGroup, channel); err != nil {
			slog.Warn("could not join feed channel (will retry on reconnect)", "channel", channel, "err", err)
		}
	}
	return sub, nil
}

func (f *Feed) unsubscribe(ctx context.Context, sub *Subscription) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if cur, ok := f.channels[sub.channel]; !ok || cur != sub {
		return fmt.Errorf("channel %q is not subscribed: %w", sub.channel, os.ErrNotExist)
	}
	delete(f.channels, sub.channel)

	if f.conn != nil {
		if err := f.writeLocked(f.conn, methodQuitGroup, sub.channel); err != nil {
			return errs.New(errs.KindTransport, "unsubscribe", errs.WithCause(err))
		}
	}
	return nil
}
