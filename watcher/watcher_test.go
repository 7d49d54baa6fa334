// Copyright (c) 2025 fpxbs7777

package watcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bvkgo/kv/kvmemdb"
	"github.com/fpxbs7777/HM/datastore"
	"github.com/fpxbs7777/HM/exchange"
)

type fakeSource struct {
	mu     sync.Mutex
	orders []*exchange.OrderRow
	err    error
	calls  int
}

func (s *fakeSource) set(orders ...*exchange.OrderRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = orders
}

func (s *fakeSource) GetOrdersStatus(ctx context.Context, account string) (*exchange.Table[exchange.OrderRow], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	table := exchange.NewTable[exchange.OrderRow](exchange.OrderColumns)
	table.Rows = append(table.Rows, s.orders...)
	return table, nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *fakeNotifier) SendMessage(ctx context.Context, at time.Time, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, text)
	return nil
}

func (n *fakeNotifier) list() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

func row(id, symbol, status string) *exchange.OrderRow {
	return &exchange.OrderRow{OrderID: id, Symbol: symbol, OrderType: "buy", Status: status}
}

func TestPoll(t *testing.T) {
	ctx := context.Background()
	source := new(fakeSource)
	notifier := new(fakeNotifier)
	store := datastore.New(kvmemdb.New())

	w, err := New(source, store, notifier, "12345", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	source.set(row("1", "GGAL", "pending"))
	changes, err := w.Poll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(changes) != 1 {
		t.Fatalf("want baseline of 1 order, got %d", len(changes))
	}
	if msgs := notifier.list(); len(msgs) != 0 {
		t.Fatalf("want no notifications for the baseline, got %v", msgs)
	}

	source.set(row("1", "GGAL", "pending"), row("2", "AL30", "pending"))
	if _, err := w.Poll(ctx); err != nil {
		t.Fatal(err)
	}
	source.set(row("1", "GGAL", "executed"), row("2", "AL30", "pending"))
	if _, err := w.Poll(ctx); err != nil {
		t.Fatal(err)
	}

	msgs := notifier.list()
	want := []string{
		"AL30 buy order 2 is pending",
		"GGAL buy order 1 pending → executed",
	}
	if len(msgs) != len(want) {
		t.Fatalf("want %d notifications, got %v", len(want), msgs)
	}
	for i := range want {
		if msgs[i] != want[i] {
			t.Fatalf("want %q, got %q", want[i], msgs[i])
		}
	}
}

func TestPollWithSavedOrders(t *testing.T) {
	ctx := context.Background()
	store := datastore.New(kvmemdb.New())
	if _, err := store.SaveOrders(ctx, "12345", []*exchange.OrderRow{row("1", "GGAL", "pending")}); err != nil {
		t.Fatal(err)
	}

	source := new(fakeSource)
	notifier := new(fakeNotifier)
	w, err := New(source, store, notifier, "12345", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	source.set(row("1", "GGAL", "cancelled"))
	if _, err := w.Poll(ctx); err != nil {
		t.Fatal(err)
	}
	if msgs := notifier.list(); len(msgs) != 1 || msgs[0] != "GGAL buy order 1 pending → cancelled" {
		t.Fatalf("want change notified on the first poll, got %v", msgs)
	}
}

func TestPollError(t *testing.T) {
	failed := errors.New("server down")
	source := &fakeSource{err: failed}
	w, err := New(source, datastore.New(kvmemdb.New()), nil, "12345", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if _, err := w.Poll(context.Background()); !errors.Is(err, failed) {
		t.Fatalf("want source error, got %v", err)
	}
}

func TestStartPolls(t *testing.T) {
	source := new(fakeSource)
	w, err := New(source, datastore.New(kvmemdb.New()), nil, "12345", &Options{Interval: 10 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	w.Start()
	time.Sleep(100 * time.Millisecond)
	w.Close()

	source.mu.Lock()
	calls := source.calls
	source.mu.Unlock()
	if calls < 2 {
		t.Fatalf("want repeated polls, got %d", calls)
	}
}

func TestNewChecks(t *testing.T) {
	if _, err := New(new(fakeSource), nil, nil, "", nil); err == nil {
		t.Fatalf("want error for empty account")
	}
	if _, err := New(new(fakeSource), nil, nil, "1", &Options{Interval: -time.Second}); err == nil {
		t.Fatalf("want error for negative interval")
	}
}
