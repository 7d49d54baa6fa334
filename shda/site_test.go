// Copyright (c) 2025 fpxbs7777

package shda

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/fpxbs7777/HM/brokers"
)

const (
	loggedInPage = `<html><body><div id="usuarioLogueado">TEST USER</div></body></html>`

	testBrokerID = 999
)

// testSite is a fake broker site. Handlers can be replaced per test.
type testSite struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]http.HandlerFunc
	bodies   map[string]string
	queries  map[string]string
	headers  map[string]http.Header
	form     url.Values
}

func newTestSite(t *testing.T) *testSite {
	t.Helper()
	s := &testSite{
		handlers: make(map[string]http.HandlerFunc),
		bodies:   make(map[string]string),
		queries:  make(map[string]string),
		headers:  make(map[string]http.Header),
	}
	s.handlers["/"] = func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "seeded", Path: "/"})
		io.WriteString(w, "<html><body>home</body></html>")
	}
	s.handlers["/Login/Ingresar"] = func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("session"); err != nil || c.Value != "seeded" {
			http.Error(w, "no session cookie", http.StatusForbidden)
			return
		}
		io.WriteString(w, loggedInPage)
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serveHTTP))
	t.Cleanup(s.Close)
	return s
}

func (s *testSite) serveHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	s.bodies[r.URL.Path] = string(body)
	s.queries[r.URL.Path] = r.URL.RawQuery
	s.headers[r.URL.Path] = r.Header.Clone()
	if r.URL.Path == "/Login/Ingresar" {
		s.form, _ = url.ParseQuery(string(body))
	}
	h, ok := s.handlers[r.URL.Path]
	s.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	r.Body = io.NopCloser(strings.NewReader(string(body)))
	h(w, r)
}

func (s *testSite) handle(p string, h http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[p] = h
}

func (s *testSite) respond(p, body string) {
	s.handle(p, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, body)
	})
}

func (s *testSite) lastBody(p string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bodies[p]
}

func (s *testSite) lastQuery(p string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries[p]
}

func (s *testSite) lastHeader(p string) http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.headers[p]
}

func (s *testSite) host() string {
	u, _ := url.Parse(s.URL)
	return u.Host
}

func (s *testSite) options(t *testing.T) *Options {
	t.Helper()
	table, err := brokers.Default().With([]*brokers.Broker{
		{ID: testBrokerID, Name: "Test Broker", Host: s.host()},
	})
	if err != nil {
		t.Fatal(err)
	}
	return &Options{
		Scheme:            "http",
		Brokers:           table,
		RequestsPerSecond: 1000,
	}
}

func testCredentials() *Credentials {
	return &Credentials{
		Broker:   testBrokerID,
		DNI:      "12345678",
		User:     "tester",
		Password: "secret",
	}
}

func newTestClient(t *testing.T, s *testSite) *Client {
	t.Helper()
	c, err := New(context.Background(), testCredentials(), s.options(t))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}
