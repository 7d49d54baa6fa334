// Copyright (c) 2025 fpxbs7777

package exchange

import "testing"

func TestSettlementTerms(t *testing.T) {
	if got := Hours48.TermString(); got != "3" {
		t.Fatalf("want 3, got %q", got)
	}
	if got := SettlementNone.Term(); got != 0 {
		t.Fatalf("want 0, got %d", got)
	}
	for _, v := range []string{"spot", "1", " SPOT "} {
		s, err := ParseSettlement(v)
		if err != nil || s != Spot {
			t.Fatalf("%q: want spot, got %q (%v)", v, s, err)
		}
	}
	if _, err := ParseSettlement("72hs"); err == nil {
		t.Fatalf("want error for unknown settlement")
	}
	if s, ok := SettlementFromTerm(2); !ok || s != Hours24 {
		t.Fatalf("want 24hs, got %q", s)
	}
}

func TestGroupNames(t *testing.T) {
	if got := GroupName("accionesLideres"); got != "bluechips" {
		t.Fatalf("want bluechips, got %q", got)
	}
	if got := GroupName("unknown"); got != "" {
		t.Fatalf("want empty group, got %q", got)
	}
	for _, v := range []string{"letes", "short_term_government_bonds"} {
		p, err := ParsePanel(v)
		if err != nil || p != ShortTermGovernmentBonds {
			t.Fatalf("%q: want letes, got %q (%v)", v, p, err)
		}
	}
	if len(Panels()) != 6 {
		t.Fatalf("want 6 panels, got %d", len(Panels()))
	}
}
