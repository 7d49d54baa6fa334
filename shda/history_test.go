// Copyright (c) 2025 fpxbs7777

package shda

import (
	"context"
	"testing"
	"time"

	"github.com/fpxbs7777/HM/errs"
)

func TestGetDailyHistory(t *testing.T) {
	site := newTestSite(t)
	site.respond("/HistoricoPrecios/history", `{"s":"ok","t":[1737072000,1737331200],"o":[1490,1500],"h":[1510,1520],
		"l":[1480,1495],"c":[1500.75,1515],"v":[82000,91000]}`)
	c := newTestClient(t, site)

	from := time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	candles, err := c.GetDailyHistory(context.Background(), "ggal", from, to)
	if err != nil {
		t.Fatal(err)
	}
	if want, query := "from=1737072000&resolution=D&symbol=GGAL&to=1737331200", site.lastQuery("/HistoricoPrecios/history"); query != want {
		t.Fatalf("want query %q, got %q", want, query)
	}
	if len(candles) != 2 {
		t.Fatalf("want 2 candles, got %d", len(candles))
	}
	if candles[0].Close.String() != "1500.75" || candles[1].Volume.IntPart() != 91000 {
		t.Fatalf("unexpected candles %+v %+v", candles[0], candles[1])
	}
}

func TestGetDailyHistoryNoData(t *testing.T) {
	site := newTestSite(t)
	site.respond("/HistoricoPrecios/history", `{"s":"no_data"}`)
	c := newTestClient(t, site)

	now := time.Now()
	candles, err := c.GetDailyHistory(context.Background(), "GGAL", now, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(candles) != 0 {
		t.Fatalf("want no candles, got %d", len(candles))
	}

	site.respond("/HistoricoPrecios/history", `{"s":"error","errmsg":"unknown symbol"}`)
	if _, err := c.GetDailyHistory(context.Background(), "GGAL", now, now); !errs.IsKind(err, errs.KindData) {
		t.Fatalf("want data error, got %v", err)
	}
	if _, err := c.GetDailyHistory(context.Background(), "GGAL", now, now.Add(-48*time.Hour)); !errs.IsKind(err, errs.KindConfig) {
		t.Fatalf("want config error for inverted range, got %v", err)
	}
}

func TestDateToEpoch(t *testing.T) {
	d := time.Date(2025, 1, 17, 15, 30, 0, 0, time.UTC)
	if got := dateToEpoch(d); got != 1737072000 {
		t.Fatalf("want 1737072000, got %d", got)
	}
}
