// Copyright (c) 2025 fpxbs7777

// Package datastore keeps local snapshots of order statuses and panel quotes
// in a key-value database.
package datastore

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"slices"
	"sync"
	"time"

	"github.com/bvkgo/kv"
	"github.com/fpxbs7777/HM/exchange"
)

const Keyspace = "/hmbroker"

type Datastore struct {
	db kv.Database

	// mu serializes the read-modify-write cycles on order keys.
	mu sync.Mutex
}

func New(db kv.Database) *Datastore {
	return &Datastore{db: db}
}

// storedOrder is the gob encoded form of an order with its tracking times.
type storedOrder struct {
	Order *exchange.OrderRow

	FirstSeen time.Time
	UpdatedAt time.Time
}

// orderDay holds all orders of an account placed on the same day.
type orderDay struct {
	OrderMap map[string]*storedOrder
}

// quoteSnapshot is one stored panel fetch.
type quoteSnapshot struct {
	Time   time.Time
	Quotes []*exchange.Quote
}

// StatusChange describes an order that is new or whose status changed since
// it was last saved.
type StatusChange struct {
	Order *exchange.OrderRow

	// Previous is the previously saved status. It is empty for new orders.
	Previous string
}

func (c *StatusChange) IsNew() bool {
	return c.Previous == ""
}

func ordersDir(account string) string {
	return path.Join(Keyspace, "orders", account)
}

func orderDayKey(account string, order *exchange.OrderRow) string {
	day := "0000-00-00"
	if order.OrderDate != nil {
		day = order.OrderDate.Format("2006-01-02")
	}
	return path.Join(ordersDir(account), day)
}

// unsetSettlement names the key segment of snapshots taken without a
// settlement term.
const unsetSettlement = "none"

func quotesDir(panel exchange.Panel, settlement exchange.Settlement) string {
	term := string(settlement)
	if settlement == exchange.SettlementNone {
		term = unsetSettlement
	}
	return path.Join(Keyspace, "quotes", panel.GroupName(), term)
}

// SaveOrders merges the orders into the account's stored orders by order id
// and returns the orders that are new or changed status. Changes are ordered
// by order id.
func (ds *Datastore) SaveOrders(ctx context.Context, account string, orders []*exchange.OrderRow) ([]*StatusChange, error) {
	if account == "" {
		return nil, fmt.Errorf("account cannot be empty")
	}

	kmap := make(map[string][]*exchange.OrderRow)
	for _, order := range orders {
		if order == nil || order.OrderID == "" {
			continue
		}
		key := orderDayKey(account, order)
		kmap[key] = append(kmap[key], order)
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()

	now := time.Now()
	var changes []*StatusChange
	save := func(ctx context.Context, rw kv.ReadWriter) error {
		changes = changes[:0]
		for key, orders := range kmap {
			value, err := get[orderDay](ctx, rw, key)
			if err != nil {
				if !errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("could not load orders at %q: %w", key, err)
				}
				value = &orderDay{}
			}
			if value.OrderMap == nil {
				value.OrderMap = make(map[string]*storedOrder)
			}

			modified := false
			for _, order := range orders {
				old, ok := value.OrderMap[order.OrderID]
				if ok && old.Order.Status == order.Status {
					continue
				}
				change := &StatusChange{Order: order}
				stored := &storedOrder{Order: order, FirstSeen: now, UpdatedAt: now}
				if ok {
					change.Previous = old.Order.Status
					stored.FirstSeen = old.FirstSeen
				}
				value.OrderMap[order.OrderID] = stored
				changes = append(changes, change)
				modified = true
			}
			if !modified {
				continue
			}
			if err := set(ctx, rw, key, value); err != nil {
				return fmt.Errorf("could not update orders at %q: %w", key, err)
			}
		}
		return nil
	}
	if err := kv.WithReadWriter(ctx, ds.db, save); err != nil {
		return nil, err
	}

	slices.SortFunc(changes, func(a, b *StatusChange) int {
		return compareOrderIDs(a.Order.OrderID, b.Order.OrderID)
	})
	for _, c := range changes {
		slog.Debug("saved order status", "account", account, "order", c.Order.OrderID, "status", c.Order.Status, "previous", c.Previous)
	}
	return changes, nil
}

// compareOrderIDs orders numeric ids numerically and falls back to string
// comparison otherwise.
func compareOrderIDs(a, b string) int {
	if len(a) != len(b) {
		return cmp.Compare(len(a), len(b))
	}
	return cmp.Compare(a, b)
}

// ScanOrders calls fn for every stored order of the account, ordered by the
// order date and then by order id.
func (ds *Datastore) ScanOrders(ctx context.Context, account string, fn func(*exchange.OrderRow) error) error {
	begin, end := pathRange(ordersDir(account))
	wrapper := func(ctx context.Context, key string, value *orderDay) error {
		ids := make([]string, 0, len(value.OrderMap))
		for id := range value.OrderMap {
			ids = append(ids, id)
		}
		slices.SortFunc(ids, compareOrderIDs)
		for _, id := range ids {
			if err := fn(value.OrderMap[id].Order); err != nil {
				return err
			}
		}
		return nil
	}
	return kv.WithReader(ctx, ds.db, func(ctx context.Context, r kv.Reader) error {
		return ascend(ctx, r, begin, end, wrapper)
	})
}

// LastOrders returns the most recently saved state of every order of the
// account keyed by the order id.
func (ds *Datastore) LastOrders(ctx context.Context, account string) (map[string]*exchange.OrderRow, error) {
	orderMap := make(map[string]*exchange.OrderRow)
	collect := func(order *exchange.OrderRow) error {
		orderMap[order.OrderID] = order
		return nil
	}
	if err := ds.ScanOrders(ctx, account, collect); err != nil {
		return nil, err
	}
	return orderMap, nil
}

// SaveQuotes stores a panel snapshot taken at the given time.
func (ds *Datastore) SaveQuotes(ctx context.Context, panel exchange.Panel, settlement exchange.Settlement, at time.Time, quotes []*exchange.Quote) error {
	if panel.GroupName() == "" {
		return fmt.Errorf("unknown panel %q", panel)
	}
	if !settlement.Valid() {
		return fmt.Errorf("invalid settlement %q", settlement)
	}
	key := path.Join(quotesDir(panel, settlement), fmt.Sprintf("%020d", at.UnixNano()))
	value := &quoteSnapshot{
		Time:   at,
		Quotes: quotes,
	}
	return kv.WithReadWriter(ctx, ds.db, func(ctx context.Context, rw kv.ReadWriter) error {
		return set(ctx, rw, key, value)
	})
}

// LatestQuotes returns the most recent panel snapshot and its time. Returns
// os.ErrNotExist if no snapshot was saved.
func (ds *Datastore) LatestQuotes(ctx context.Context, panel exchange.Panel, settlement exchange.Settlement) (time.Time, []*exchange.Quote, error) {
	if panel.GroupName() == "" {
		return time.Time{}, nil, fmt.Errorf("unknown panel %q", panel)
	}
	if !settlement.Valid() {
		return time.Time{}, nil, fmt.Errorf("invalid settlement %q", settlement)
	}
	begin, end := pathRange(quotesDir(panel, settlement))
	var snapshot *quoteSnapshot
	err := kv.WithReader(ctx, ds.db, func(ctx context.Context, r kv.Reader) (err error) {
		_, snapshot, err = last[quoteSnapshot](ctx, r, begin, end)
		return err
	})
	if err != nil {
		return time.Time{}, nil, err
	}
	return snapshot.Time, snapshot.Quotes, nil
}
