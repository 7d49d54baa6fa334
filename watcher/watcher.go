// Copyright (c) 2025 fpxbs7777

// Package watcher polls the status of an account's orders and notifies the
// user when an order appears or changes status.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/fpxbs7777/HM/datastore"
	"github.com/fpxbs7777/HM/exchange"
	"github.com/fpxbs7777/HM/notify"
	"github.com/sourcegraph/conc"
)

// OrderSource fetches the current order statuses of an account.
type OrderSource interface {
	GetOrdersStatus(ctx context.Context, account string) (*exchange.Table[exchange.OrderRow], error)
}

type Watcher struct {
	lifeCtx    context.Context
	lifeCancel context.CancelCauseFunc

	wg conc.WaitGroup

	opts Options

	account  string
	source   OrderSource
	store    *datastore.Datastore
	notifier notify.Notifier

	startOnce sync.Once

	// mu serializes polls.
	mu sync.Mutex

	primed bool
}

func New(source OrderSource, store *datastore.Datastore, notifier notify.Notifier, account string, opts *Options) (*Watcher, error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}
	if account == "" {
		return nil, fmt.Errorf("account cannot be empty")
	}
	if notifier == nil {
		notifier = notify.Log{}
	}
	lifeCtx, lifeCancel := context.WithCancelCause(context.Background())
	w := &Watcher{
		lifeCtx:    lifeCtx,
		lifeCancel: lifeCancel,
		opts:       *opts,
		account:    account,
		source:     source,
		store:      store,
		notifier:   notifier,
	}
	return w, nil
}

// Start begins polling in the background.
func (w *Watcher) Start() {
	w.startOnce.Do(func() {
		w.wg.Go(func() { w.goPoll(w.lifeCtx) })
	})
}

func (w *Watcher) Close() error {
	w.lifeCancel(os.ErrClosed)
	w.wg.Wait()
	return nil
}

func (w *Watcher) goPoll(ctx context.Context) {
	ticker := time.NewTicker(w.opts.Interval)
	defer ticker.Stop()

	for {
		pctx, pcancel := context.WithTimeout(ctx, w.opts.Timeout)
		if _, err := w.Poll(pctx); err != nil {
			if !errors.Is(err, context.Canceled) && ctx.Err() == nil {
				slog.Error("could not poll order statuses (will retry)", "account", w.account, "err", err)
			}
		}
		pcancel()

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Poll fetches the order statuses once, saves them and sends a notification
// for every new order or status change. When the datastore has no orders of
// the account yet, the first poll only records the baseline.
func (w *Watcher) Poll(ctx context.Context) ([]*datastore.StatusChange, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	baseline := false
	if !w.primed {
		last, err := w.store.LastOrders(ctx, w.account)
		if err != nil {
			return nil, fmt.Errorf("could not load saved orders: %w", err)
		}
		baseline = len(last) == 0
	}

	table, err := w.source.GetOrdersStatus(ctx, w.account)
	if err != nil {
		return nil, err
	}
	changes, err := w.store.SaveOrders(ctx, w.account, table.Rows)
	if err != nil {
		return nil, fmt.Errorf("could not save orders: %w", err)
	}
	w.primed = true

	if baseline {
		slog.Info("recorded baseline order statuses", "account", w.account, "orders", len(changes))
		return changes, nil
	}

	now := time.Now()
	for _, c := range changes {
		if err := w.notifier.SendMessage(ctx, now, Message(c)); err != nil {
			slog.Error("could not send order status notification (ignored)", "order", c.Order.OrderID, "err", err)
		}
	}
	return changes, nil
}

// Message formats a status change for notifications.
func Message(c *datastore.StatusChange) string {
	o := c.Order
	if c.IsNew() {
		return fmt.Sprintf("%s %s order %s is %s", o.Symbol, o.OrderType, o.OrderID, o.Status)
	}
	return fmt.Sprintf("%s %s order %s %s → %s", o.Symbol, o.OrderType, o.OrderID, c.Previous, o.Status)
}
