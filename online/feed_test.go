// Copyright (c) 2025 fpxbs7777

package online

import (
	"context"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/fpxbs7777/HM/exchange"
	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/visvasity/topic"
)

type testSession struct {
	base *url.URL
	jar  http.CookieJar
}

func (s *testSession) BaseURL() *url.URL         { return s.base }
func (s *testSession) CookieJar() http.CookieJar { return s.jar }

type testServer struct {
	*httptest.Server

	conns       chan *websocket.Conn
	invocations chan *Invocation
	cookies     chan string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	s := &testServer{
		conns:       make(chan *websocket.Conn, 10),
		invocations: make(chan *Invocation, 100),
		cookies:     make(chan string, 10),
	}
	upgrader := websocket.Upgrader{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/signalr/connect" || r.URL.Query().Get("transport") != "webSockets" {
			http.NotFound(w, r)
			return
		}
		cookie := ""
		if c, err := r.Cookie("session"); err == nil {
			cookie = c.Value
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s.cookies <- cookie
		s.conns <- conn
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			inv := new(Invocation)
			if err := json.Unmarshal(msg, inv); err == nil {
				s.invocations <- inv
			}
		}
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *testServer) session(t *testing.T) *testSession {
	t.Helper()
	base, err := url.Parse(s.URL)
	if err != nil {
		t.Fatal(err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	jar.SetCookies(base, []*http.Cookie{{Name: "session", Value: "logged-in", Path: "/"}})
	return &testSession{base: base, jar: jar}
}

func (s *testServer) nextConn(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case conn := <-s.conns:
		return conn
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for websocket connection")
	}
	return nil
}

func (s *testServer) nextInvocation(t *testing.T) *Invocation {
	t.Helper()
	select {
	case inv := <-s.invocations:
		return inv
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for hub invocation")
	}
	return nil
}

func push(t *testing.T, conn *websocket.Conn, frame string) {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatal(err)
	}
}

func newTestFeed(t *testing.T, s *testServer) *Feed {
	t.Helper()
	feed, err := New(s.session(t), &Options{
		Scheme:         "ws",
		InitialBackoff: 10 * time.Millisecond,
		MaxBackoff:     50 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { feed.Close() })
	return feed
}

func waitFor[T exchange.Event](t *testing.T, r *topic.Receiver[exchange.Event]) T {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		ch := make(chan exchange.Event, 1)
		go func() {
			if ev, err := r.Receive(); err == nil {
				ch <- ev
			}
		}()
		select {
		case ev := <-ch:
			if v, ok := ev.(T); ok {
				return v
			}
		case <-deadline:
			var zero T
			t.Fatalf("timed out waiting for %T event", zero)
			return zero
		}
	}
}

const securitiesPush = `{"C":"d-1","M":[{"H":"StockPricesHub","M":"securities","A":[[
	{"Symbol":"GGAL","Term":"3","BuyQuantity":100,"BuyPrice":1500.5,"SellPrice":1501,"SellQuantity":200,
	 "LastPrice":1500.75,"VariationRate":-1.25,"StartPrice":1490,"MaxPrice":1510,"MinPrice":1480,
	 "PreviousClose":1519.8,"TotalAmountTraded":123456789.5,"TotalQuantityTraded":82000,"Trades":1543,
	 "TradeDate":"20250117","Hour":"16:59:58","Panel":"accionesLideres"}]]}]}`

func TestFeedSecurities(t *testing.T) {
	server := newTestServer(t)
	feed := newTestFeed(t, server)

	events, err := feed.Events()
	if err != nil {
		t.Fatal(err)
	}
	defer events.Close()

	ctx := context.Background()
	sub, err := feed.SubscribeSecurities(ctx, exchange.Bluechips, exchange.Hours48)
	if err != nil {
		t.Fatal(err)
	}
	if sub.Channel() != "md_bluechips_48hs" {
		t.Fatalf("want md_bluechips_48hs, got %q", sub.Channel())
	}
	if err := feed.Connect(); err != nil {
		t.Fatal(err)
	}

	conn := server.nextConn(t)
	if cookie := <-server.cookies; cookie != "logged-in" {
		t.Fatalf("want session cookie on websocket handshake, got %q", cookie)
	}
	inv := server.nextInvocation(t)
	if inv.Method != "JoinGroup" || len(inv.Args) != 1 || inv.Args[0] != "md_bluechips_48hs" || inv.Hub != "stockpriceshub" {
		t.Fatalf("unexpected invocation %+v", inv)
	}
	waitFor[*exchange.OpenEvent](t, events)

	push(t, conn, securitiesPush)
	ev := waitFor[*exchange.SecuritiesEvent](t, events)
	if len(ev.Quotes) != 1 {
		t.Fatalf("want 1 quote, got %d", len(ev.Quotes))
	}
	q := ev.Quotes[0]
	if q.Symbol != "GGAL" || q.Settlement != exchange.Hours48 || q.Group != "bluechips" || q.Bid.Decimal.String() != "1500.5" {
		t.Fatalf("unexpected quote %+v", q)
	}
}

func TestFeedReconnect(t *testing.T) {
	server := newTestServer(t)
	feed := newTestFeed(t, server)

	events, err := feed.Events()
	if err != nil {
		t.Fatal(err)
	}
	defer events.Close()

	if _, err := feed.SubscribeRepos(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := feed.Connect(); err != nil {
		t.Fatal(err)
	}

	first := server.nextConn(t)
	if inv := server.nextInvocation(t); inv.Args[0] != "md_repos" {
		t.Fatalf("want md_repos join, got %+v", inv)
	}
	waitFor[*exchange.OpenEvent](t, events)

	first.Close()
	lost := waitFor[*exchange.ErrorEvent](t, events)
	if !lost.ConnectionLost {
		t.Fatalf("want connection lost error event, got %+v", lost)
	}
	waitFor[*exchange.CloseEvent](t, events)

	server.nextConn(t)
	if inv := server.nextInvocation(t); inv.Method != "JoinGroup" || inv.Args[0] != "md_repos" {
		t.Fatalf("want md_repos rejoin after reconnect, got %+v", inv)
	}
	waitFor[*exchange.OpenEvent](t, events)
}

func TestFeedSubscriptionHandles(t *testing.T) {
	server := newTestServer(t)
	feed := newTestFeed(t, server)
	ctx := context.Background()

	if err := feed.Connect(); err != nil {
		t.Fatal(err)
	}
	server.nextConn(t)

	sub, err := feed.SubscribeOrderBook(ctx, "ggal", exchange.Hours48)
	if err != nil {
		t.Fatal(err)
	}
	if sub.Channel() != "book_GGAL_48hs" {
		t.Fatalf("want book_GGAL_48hs, got %q", sub.Channel())
	}
	if _, err := feed.SubscribeOrderBook(ctx, "GGAL", exchange.Hours48); !errors.Is(err, os.ErrExist) {
		t.Fatalf("want os.ErrExist for duplicate subscription, got %v", err)
	}
	if _, err := feed.SubscribeOrderBook(ctx, "GGAL", exchange.SettlementNone); err == nil {
		t.Fatalf("want error for missing settlement")
	}

	// The join may race with the connection setup, so wait for it before
	// checking the quit.
	for inv := server.nextInvocation(t); inv.Method != "JoinGroup"; inv = server.nextInvocation(t) {
	}
	if err := sub.Cancel(ctx); err != nil {
		t.Fatal(err)
	}
	if inv := server.nextInvocation(t); inv.Method != "QuitGroup" || inv.Args[0] != "book_GGAL_48hs" {
		t.Fatalf("want quit invocation, got %+v", inv)
	}
	if err := sub.Cancel(ctx); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("want os.ErrNotExist on second cancel, got %v", err)
	}
	if len(feed.Channels()) != 0 {
		t.Fatalf("want no active channels, got %v", feed.Channels())
	}

	if err := feed.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := feed.SubscribeOptions(ctx); !errors.Is(err, os.ErrClosed) {
		t.Fatalf("want os.ErrClosed after close, got %v", err)
	}
}

func TestFeedBookAndPortfolio(t *testing.T) {
	server := newTestServer(t)
	feed := newTestFeed(t, server)

	events, err := feed.Events()
	if err != nil {
		t.Fatal(err)
	}
	defer events.Close()

	if err := feed.Connect(); err != nil {
		t.Fatal(err)
	}
	conn := server.nextConn(t)
	waitFor[*exchange.OpenEvent](t, events)

	push(t, conn, `{"M":[{"H":"StockPricesHub","M":"orderbook","A":[{"Symbol":"GGAL","Term":3,"Levels":[
		{"Position":1,"BuyQuantity":100,"BuyPrice":1500,"SellPrice":1501,"SellQuantity":50},
		{"Position":2,"BuyQuantity":10,"BuyPrice":1499,"SellPrice":1502,"SellQuantity":5}]}]}]}`)
	book := waitFor[*exchange.OrderBookEvent](t, events)
	if book.Symbol != "GGAL" || book.Settlement != exchange.Hours48 || len(book.Levels) != 2 || book.Levels[1].Position != 2 {
		t.Fatalf("unexpected order book %+v", book)
	}

	push(t, conn, `{"M":[{"H":"StockPricesHub","M":"portfolio","A":[{"Quotes":[],"OrderBooks":[
		{"Symbol":"AL30","Term":"1","Levels":[]}]}]}]}`)
	pf := waitFor[*exchange.PortfolioEvent](t, events)
	if len(pf.Quotes) != 0 || len(pf.OrderBooks) != 1 || pf.OrderBooks[0].Settlement != exchange.Spot {
		t.Fatalf("unexpected portfolio event %+v", pf)
	}

	push(t, conn, `{"M":[{"H":"StockPricesHub","M":"securities","A":["not a list"]}]}`)
	bad := waitFor[*exchange.ErrorEvent](t, events)
	if bad.ConnectionLost {
		t.Fatalf("malformed push must not drop the connection")
	}
}
