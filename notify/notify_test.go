// Copyright (c) 2025 fpxbs7777

package notify

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fpxbs7777/HM/errs"
	"github.com/go-telegram/bot"
)

type recorder struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (r *recorder) SendMessage(ctx context.Context, at time.Time, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, text)
	return r.err
}

func TestMulti(t *testing.T) {
	failed := errors.New("failed")
	a, b := new(recorder), &recorder{err: failed}
	m := Multi{a, Log{}, b}
	if err := m.SendMessage(context.Background(), time.Now(), "hello"); !errors.Is(err, failed) {
		t.Fatalf("want joined error, got %v", err)
	}
	if len(a.messages) != 1 || len(b.messages) != 1 {
		t.Fatalf("want every notifier to receive the message")
	}
}

func TestPushover(t *testing.T) {
	var mu sync.Mutex
	var got url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		mu.Lock()
		got = r.PostForm
		mu.Unlock()
		if r.PostForm.Get("token") == "bad" {
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"status":0,"errors":["application token is invalid"]}`)
			return
		}
		io.WriteString(w, `{"status":1,"request":"r1"}`)
	}))
	defer server.Close()

	p, err := NewPushover(&PushoverKeys{ApplicationKey: "app", UserKey: "user"})
	if err != nil {
		t.Fatal(err)
	}
	p.url = server.URL

	at := time.Unix(1737118800, 0)
	if err := p.SendMessage(context.Background(), at, "GGAL order 1 executed"); err != nil {
		t.Fatal(err)
	}
	mu.Lock()
	if got.Get("message") != "GGAL order 1 executed" || got.Get("user") != "user" || got.Get("timestamp") != "1737118800" {
		t.Fatalf("unexpected pushover payload %v", got)
	}
	mu.Unlock()

	p.token = "bad"
	err = p.SendMessage(context.Background(), at, "x")
	if !errs.IsKind(err, errs.KindRejected) || !strings.Contains(err.Error(), "application token is invalid") {
		t.Fatalf("want rejected pushover error, got %v", err)
	}

	if _, err := NewPushover(&PushoverKeys{UserKey: "user"}); err == nil {
		t.Fatalf("want error for missing application key")
	}
}

func TestTelegram(t *testing.T) {
	var mu sync.Mutex
	var chats, texts []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/sendMessage") {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			r.ParseForm()
		}
		mu.Lock()
		chats = append(chats, r.FormValue("chat_id"))
		texts = append(texts, r.FormValue("text"))
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":1,"type":"private"}}}`)
	}))
	defer server.Close()

	keys := &TelegramKeys{BotToken: "123:abc", ChatIDs: []int64{11, 22}}
	tg, err := NewTelegram(keys, bot.WithServerURL(server.URL))
	if err != nil {
		t.Fatal(err)
	}
	at := time.Date(2025, 1, 17, 10, 0, 0, 0, time.UTC)
	if err := tg.SendMessage(context.Background(), at, "GGAL order 1 executed"); err != nil {
		t.Fatal(err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(chats) != 2 || chats[0] != "11" || chats[1] != "22" {
		t.Fatalf("want messages to chats 11 and 22, got %v", chats)
	}
	if want := "2025-01-17 10:00:00 UTC GGAL order 1 executed"; texts[0] != want {
		t.Fatalf("want %q, got %q", want, texts[0])
	}
}

func TestTelegramKeys(t *testing.T) {
	if err := (&TelegramKeys{ChatIDs: []int64{1}}).Check(); err == nil {
		t.Fatalf("want error for empty token")
	}
	if err := (&TelegramKeys{BotToken: "t"}).Check(); err == nil {
		t.Fatalf("want error for missing chat ids")
	}
	if err := (&TelegramKeys{BotToken: "t", ChatIDs: []int64{0}}).Check(); err == nil {
		t.Fatalf("want error for zero chat id")
	}
}
