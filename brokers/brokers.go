// Copyright (c) 2025 fpxbs7777

// Package brokers holds the table of home-broker sites that share the same
// web backend.
package brokers

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/fpxbs7777/HM/errs"
)

// ErrNotSupported is wrapped by lookups for broker ids missing from a table.
var ErrNotSupported = errors.New("broker not supported")

type Broker struct {
	ID   int    `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`

	// Host is the site's host name, without scheme or path.
	Host string `yaml:"host" json:"host"`
}

func (b *Broker) String() string {
	return fmt.Sprintf("%d (%s)", b.ID, b.Name)
}

func (b *Broker) check() error {
	if b.ID <= 0 {
		return fmt.Errorf("broker id must be positive")
	}
	if strings.TrimSpace(b.Host) == "" {
		return fmt.Errorf("broker %d host cannot be empty", b.ID)
	}
	if strings.ContainsAny(b.Host, "/ ") {
		return fmt.Errorf("broker %d host %q must not contain scheme or path", b.ID, b.Host)
	}
	return nil
}

var defaultBrokers = []*Broker{
	{ID: 265, Name: "Negocios Financieros y Bursátiles S.A. (Cocos Capital)", Host: "cocoscap.com"},
	{ID: 284, Name: "Veta Capital S.A.", Host: "veta.xyz"},
}

// Table is an immutable set of brokers indexed by id.
type Table struct {
	byID map[int]*Broker
	ids  []int
}

// Default returns the built-in broker table.
func Default() *Table {
	t, err := NewTable(defaultBrokers)
	if err != nil {
		panic(err)
	}
	return t
}

// NewTable creates a table from the brokers list. Duplicate ids are rejected.
func NewTable(list []*Broker) (*Table, error) {
	t := &Table{byID: make(map[int]*Broker)}
	for _, b := range list {
		if err := b.check(); err != nil {
			return nil, err
		}
		if _, ok := t.byID[b.ID]; ok {
			return nil, fmt.Errorf("broker %d is listed more than once", b.ID)
		}
		v := *b
		t.byID[b.ID] = &v
		t.ids = append(t.ids, b.ID)
	}
	slices.Sort(t.ids)
	return t, nil
}

// With returns a new table where the input brokers are added to the receiver
// or replace entries with the same id.
func (t *Table) With(overrides []*Broker) (*Table, error) {
	merged := make(map[int]*Broker, len(t.byID)+len(overrides))
	for id, b := range t.byID {
		merged[id] = b
	}
	for _, b := range overrides {
		if err := b.check(); err != nil {
			return nil, err
		}
		merged[b.ID] = b
	}
	var list []*Broker
	for _, b := range merged {
		list = append(list, b)
	}
	return NewTable(list)
}

// IDs returns the broker ids in ascending order.
func (t *Table) IDs() []int {
	return slices.Clone(t.ids)
}

// List returns all brokers ordered by id.
func (t *Table) List() []*Broker {
	var list []*Broker
	for _, id := range t.ids {
		v := *t.byID[id]
		list = append(list, &v)
	}
	return list
}

// Lookup returns the broker with the given id. Unknown ids fail with an error
// that wraps ErrNotSupported and lists the supported ids.
func (t *Table) Lookup(id int) (*Broker, error) {
	b, ok := t.byID[id]
	if !ok {
		var ids []string
		for _, v := range t.ids {
			ids = append(ids, strconv.Itoa(v))
		}
		msg := fmt.Sprintf("Broker not supported. Brokers supported: %s", strings.Join(ids, ", "))
		return nil, errs.New(errs.KindNotSupported, "broker-lookup", errs.WithMessage(msg), errs.WithCause(ErrNotSupported))
	}
	v := *b
	return &v, nil
}
