// Copyright (c) 2025 fpxbs7777

package shda

import (
	"context"
	"strings"
	"testing"
)

func TestGetPortfolio(t *testing.T) {
	site := newTestSite(t)
	site.respond("/Consultas/GetConsulta", `{"Result":{"Activos":[
		{"Subtotal":[
			{"TICK":"GGAL","CANT":10,"PCIO":1500,"CAN0":10,"CAN2":0,"CAN3":0},
			{"TICK":"GGAL","CANT":10,"PCIO":1500,"CAN0":10,"CAN2":0,"CAN3":0}
		]},
		{"Subtotal":[
			{"TICK":"AL30","CANT":"1000","PCIO":"80.5","CAN0":1000,"CAN2":0,"CAN3":0},
			{"TICK":"Total","CANT":null,"PCIO":null}
		]},
		null
	]}}`)
	c := newTestClient(t, site)

	table, err := c.GetPortfolio(context.Background(), "23052")
	if err != nil {
		t.Fatal(err)
	}
	body := site.lastBody("/Consultas/GetConsulta")
	if !strings.Contains(body, `"comitente":"23052"`) || !strings.Contains(body, `"proceso":"22"`) {
		t.Fatalf("unexpected request body %s", body)
	}
	if table.Len() != 2 {
		t.Fatalf("want 2 holdings, got %d", table.Len())
	}
	if table.Rows[0].Symbol != "GGAL" || table.Rows[1].Symbol != "AL30" {
		t.Fatalf("unexpected holdings order %s, %s", table.Rows[0].Symbol, table.Rows[1].Symbol)
	}
	if p := table.Rows[1].Price; !p.Valid || p.Decimal.String() != "80.5" {
		t.Fatalf("want price 80.5, got %v", p)
	}
	if len(table.Issues) != 1 {
		t.Fatalf("want 1 dropped entry, got %d", len(table.Issues))
	}
}
