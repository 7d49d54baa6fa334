// Copyright (c) 2025 fpxbs7777

package shda

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/fpxbs7777/HM/errs"
	"github.com/fpxbs7777/HM/exchange"
	json "github.com/goccy/go-json"
)

const panelResponse = `{"Success":true,"Error":null,"Result":{"Stocks":[
  {"Symbol":"GGAL","Term":"3","BuyQuantity":100,"BuyPrice":1500.5,"SellPrice":1501,"SellQuantity":200,
   "LastPrice":1500.75,"VariationRate":-1.25,"StartPrice":1490,"MaxPrice":1510,"MinPrice":1480,
   "PreviousClose":1519.8,"TotalAmountTraded":123456789.5,"TotalQuantityTraded":82000,"Trades":1543,
   "TradeDate":"20250117","Hour":"16:59:58","Panel":"accionesLideres","Extra":"ignored"},
  {"Symbol":"YPFD","Term":"3","BuyQuantity":"5","BuyPrice":"-","SellPrice":30000,"SellQuantity":1,
   "LastPrice":29950,"VariationRate":0.5,"StartPrice":29800,"MaxPrice":30100,"MinPrice":29700,
   "PreviousClose":29800,"TotalAmountTraded":1000000,"TotalQuantityTraded":40,"Trades":12,
   "TradeDate":"20250117","Hour":"16:59:59","Panel":"accionesLideres"}
]}}`

func TestGetPanelRequest(t *testing.T) {
	site := newTestSite(t)
	site.respond("/Prices/GetByPanel", panelResponse)
	c := newTestClient(t, site)

	table, err := c.GetBluechips(context.Background(), exchange.Hours48)
	if err != nil {
		t.Fatal(err)
	}

	if body := site.lastBody("/Prices/GetByPanel"); body != `{"panel":"accionesLideres","term":"3"}` {
		t.Fatalf("unexpected request body %s", body)
	}
	h := site.lastHeader("/Prices/GetByPanel")
	if !strings.HasSuffix(h.Get("Referer"), "/Prices/Stocks") {
		t.Fatalf("want stocks page referer, got %q", h.Get("Referer"))
	}
	if h.Get("X-Requested-With") != "XMLHttpRequest" {
		t.Fatalf("want xhr header, got %q", h.Get("X-Requested-With"))
	}
	if h.Get("Cookie") == "" {
		t.Fatalf("want session cookie on data requests")
	}

	if table.Len() != 2 {
		t.Fatalf("want 2 rows, got %d", table.Len())
	}
	for _, q := range table.Rows {
		if q.Settlement != exchange.Hours48 || q.Group != "bluechips" {
			t.Fatalf("unexpected row %+v", q)
		}
	}
	if table.Rows[1].Bid.Valid {
		t.Fatalf("want non-numeric bid as null, got %v", table.Rows[1].Bid)
	}
	want := time.Date(2025, 1, 17, 16, 59, 58, 0, exchange.DefaultLocation)
	if dt := table.Rows[0].Datetime; dt == nil || !dt.Equal(want) {
		t.Fatalf("want %v, got %v", want, dt)
	}
}

func TestGetPanelTerms(t *testing.T) {
	site := newTestSite(t)
	site.respond("/Prices/GetByPanel", `{"Result":{"Stocks":[]}}`)
	c := newTestClient(t, site)

	ctx := context.Background()
	cases := []struct {
		panel      exchange.Panel
		settlement exchange.Settlement
		body       string
	}{
		{exchange.GeneralBoard, exchange.Spot, `{"panel":"panelGeneral","term":"1"}`},
		{exchange.Cedears, exchange.Hours24, `{"panel":"cedears","term":"2"}`},
		{exchange.GovernmentBonds, exchange.Hours48, `{"panel":"rentaFija","term":"3"}`},
		{exchange.ShortTermGovernmentBonds, exchange.SettlementNone, `{"panel":"letes","term":"0"}`},
		{exchange.CorporateBonds, exchange.Spot, `{"panel":"obligaciones","term":"1"}`},
	}
	for _, tc := range cases {
		if _, err := c.GetPanel(ctx, tc.panel, tc.settlement); err != nil {
			t.Fatal(err)
		}
		if body := site.lastBody("/Prices/GetByPanel"); body != tc.body {
			t.Fatalf("want %s, got %s", tc.body, body)
		}
	}

	if _, err := c.GetPanel(ctx, exchange.Panel("bogus"), exchange.Spot); !errs.IsKind(err, errs.KindConfig) {
		t.Fatalf("want config error for unknown panel, got %v", err)
	}
	if _, err := c.GetPanel(ctx, exchange.Cedears, exchange.Settlement("72hs")); !errs.IsKind(err, errs.KindConfig) {
		t.Fatalf("want config error for unknown settlement, got %v", err)
	}
}

func TestGetPanelEmpty(t *testing.T) {
	for _, body := range []string{`{"Result":null}`, `{"Result":{"Stocks":null}}`, `{"Result":{"Stocks":[]}}`} {
		site := newTestSite(t)
		site.respond("/Prices/GetByPanel", body)
		c := newTestClient(t, site)

		table, err := c.GetCedears(context.Background(), exchange.Spot)
		if err != nil {
			t.Fatal(err)
		}
		if table.Len() != 0 || len(table.Columns) != len(exchange.QuoteColumns) {
			t.Fatalf("%s: want empty table with schema, got %+v", body, table)
		}
	}
}

func TestGetPanelIdempotent(t *testing.T) {
	site := newTestSite(t)
	site.respond("/Prices/GetByPanel", panelResponse)
	c := newTestClient(t, site)

	ctx := context.Background()
	first, err := c.GetBluechips(ctx, exchange.Hours48)
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.GetBluechips(ctx, exchange.Hours48)
	if err != nil {
		t.Fatal(err)
	}
	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Fatalf("want identical tables, got\n%s\n%s", a, b)
	}
}

func TestGetPanelHTTPError(t *testing.T) {
	site := newTestSite(t)
	site.handle("/Prices/GetByPanel", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	c := newTestClient(t, site)

	_, err := c.GetBluechips(context.Background(), exchange.Hours48)
	if !errs.IsKind(err, errs.KindTransport) || errs.HTTPStatus(err) != http.StatusInternalServerError {
		t.Fatalf("want transport error with status 500, got %v", err)
	}
}

func TestGetPanelStrictData(t *testing.T) {
	site := newTestSite(t)
	site.respond("/Prices/GetByPanel", `{"Result":{"Stocks":[{"Symbol":"GGAL","Term":"3"}]}}`)

	opts := site.options(t)
	lenient, err := New(context.Background(), testCredentials(), opts)
	if err != nil {
		t.Fatal(err)
	}
	defer lenient.Close()
	table, err := lenient.GetBluechips(context.Background(), exchange.Hours48)
	if err != nil {
		t.Fatal(err)
	}
	if table.Len() != 0 || len(table.Issues) != 1 {
		t.Fatalf("want dropped row with one issue, got %d rows %d issues", table.Len(), len(table.Issues))
	}

	opts = site.options(t)
	opts.StrictData = true
	strict, err := New(context.Background(), testCredentials(), opts)
	if err != nil {
		t.Fatal(err)
	}
	defer strict.Close()
	if _, err := strict.GetBluechips(context.Background(), exchange.Hours48); !errs.IsKind(err, errs.KindData) {
		t.Fatalf("want data error, got %v", err)
	}
}

func TestGetPanelSummary(t *testing.T) {
	site := newTestSite(t)
	site.respond("/Prices/GetByPanel", panelResponse)
	c := newTestClient(t, site)

	table, err := c.GetPanelSummary(context.Background(), exchange.Bluechips, exchange.Hours48)
	if err != nil {
		t.Fatal(err)
	}
	if table.Len() != 2 || len(table.Columns) != 6 {
		t.Fatalf("unexpected summary table %+v", table)
	}
	if s := table.Rows[0]; s.Symbol != "GGAL" || s.Last.Decimal.String() != "1500.75" || s.Group != "bluechips" {
		t.Fatalf("unexpected summary row %+v", s)
	}
}
