// Copyright (c) 2025 fpxbs7777

package exchange

import (
	"fmt"
	"strings"
)

// DataPolicy decides what happens to upstream entries that are missing
// required fields.
type DataPolicy int

const (
	// DropInvalid skips the entry and records a DataIssue on the table.
	DropInvalid DataPolicy = iota

	// Strict fails the whole fetch with a data error.
	Strict
)

// DataIssue describes an upstream entry that was dropped during
// normalization.
type DataIssue struct {
	// Index is the position of the entry in the upstream list.
	Index int

	Missing []string

	Reason string
}

func (d *DataIssue) String() string {
	if len(d.Missing) > 0 {
		return fmt.Sprintf("entry %d: missing %s", d.Index, strings.Join(d.Missing, ", "))
	}
	return fmt.Sprintf("entry %d: %s", d.Index, d.Reason)
}

// Table is an ordered list of normalized rows with a fixed column schema.
type Table[T any] struct {
	Columns []string `json:"columns"`

	Rows []*T `json:"rows"`

	Issues []*DataIssue `json:"issues,omitempty"`
}

// NewTable returns an empty table with the given columns.
func NewTable[T any](columns []string) *Table[T] {
	return &Table[T]{
		Columns: append([]string(nil), columns...),
		Rows:    []*T{},
	}
}

func (t *Table[T]) Len() int {
	return len(t.Rows)
}
