// Copyright (c) 2025 fpxbs7777

package exchange

import (
	"fmt"
	"strconv"
	"strings"
)

// Settlement is the trade settlement term.
type Settlement string

const (
	SettlementNone Settlement = ""
	Spot           Settlement = "spot"
	Hours24        Settlement = "24hs"
	Hours48        Settlement = "48hs"
)

var settlementTerms = map[Settlement]int{
	SettlementNone: 0,
	Spot:           1,
	Hours24:        2,
	Hours48:        3,
}

// Term returns the numeric code used by the site for the settlement.
func (s Settlement) Term() int {
	return settlementTerms[s]
}

// TermString returns the term code as the site expects it in request bodies.
func (s Settlement) TermString() string {
	return strconv.Itoa(s.Term())
}

// Valid reports whether s is one of the known settlements.
func (s Settlement) Valid() bool {
	_, ok := settlementTerms[s]
	return ok
}

func (s Settlement) String() string {
	return string(s)
}

// ParseSettlement accepts the settlement names and their numeric term codes.
func ParseSettlement(v string) (Settlement, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	for s, term := range settlementTerms {
		if v == string(s) || v == strconv.Itoa(term) {
			return s, nil
		}
	}
	return SettlementNone, fmt.Errorf("invalid settlement %q (want spot, 24hs or 48hs)", v)
}

// SettlementFromTerm maps a numeric term code to the settlement.
func SettlementFromTerm(term int) (Settlement, bool) {
	for s, v := range settlementTerms {
		if v == term {
			return s, true
		}
	}
	return SettlementNone, false
}
