// Copyright (c) 2025 fpxbs7777

// Package api serves a logged-in broker session over a local JSON HTTP API.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/fpxbs7777/HM/errs"
	"github.com/fpxbs7777/HM/exchange"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	// CacheTTL is how long a fetched panel is reused. Zero disables caching.
	CacheTTL time.Duration

	// Gatherer is exposed on MetricsPath when non-nil.
	Gatherer prometheus.Gatherer

	// Snapshots, when non-nil, keeps every fetched panel and serves the last
	// one when the broker site cannot be reached.
	Snapshots QuoteStore
}

// QuoteStore keeps panel snapshots. It is implemented by the local
// datastore.
type QuoteStore interface {
	SaveQuotes(ctx context.Context, panel exchange.Panel, settlement exchange.Settlement, at time.Time, quotes []*exchange.Quote) error
	LatestQuotes(ctx context.Context, panel exchange.Panel, settlement exchange.Settlement) (time.Time, []*exchange.Quote, error)
}

func (v *Options) Check() error {
	if v.CacheTTL < 0 {
		return fmt.Errorf("cache ttl cannot be negative")
	}
	return nil
}

type Server struct {
	opts Options

	broker exchange.Broker

	cache *ristretto.Cache

	router chi.Router
}

func New(broker exchange.Broker, opts *Options) (*Server, error) {
	if opts == nil {
		opts = new(Options)
	}
	if err := opts.Check(); err != nil {
		return nil, err
	}
	s := &Server{
		opts:   *opts,
		broker: broker,
	}
	if opts.CacheTTL > 0 {
		cache, err := ristretto.NewCache(&ristretto.Config{
			NumCounters: 1e4,
			MaxCost:     1 << 10,
			BufferItems: 64,
		})
		if err != nil {
			return nil, fmt.Errorf("could not create panel cache: %w", err)
		}
		s.cache = cache
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get(HealthPath, s.health)
	r.Get(PanelPath, s.getPanel)
	r.Get(OrdersPath, s.getOrders)
	r.Post(OrdersPath, s.sendOrder)
	r.Get(PortfolioPath, s.getPortfolio)
	r.Get(HistoryPath, s.getHistory)
	if opts.Gatherer != nil {
		r.Handle(MetricsPath, promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	s.router = r
	return s, nil
}

func (s *Server) Close() error {
	if s.cache != nil {
		s.cache.Close()
	}
	return nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// statusOf maps error kinds to HTTP status codes.
func statusOf(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	switch errs.KindOf(err) {
	case errs.KindConfig:
		return http.StatusBadRequest
	case errs.KindNotSupported:
		return http.StatusNotFound
	case errs.KindSession:
		return http.StatusUnauthorized
	case errs.KindRejected:
		return http.StatusConflict
	case errs.KindTransport:
		return http.StatusBadGateway
	case errs.KindData:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("could not write json response", "err", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError && !errors.Is(err, context.Canceled) {
		slog.Error("could not serve api request", "path", r.URL.Path, "err", err)
	}
	resp := &ErrorResponse{
		Error: err.Error(),
		Kind:  string(errs.KindOf(err)),
	}
	writeJSON(w, status, resp)
}

func badRequest(op, format string, args ...any) error {
	return errs.New(errs.KindConfig, op, errs.WithMessage(fmt.Sprintf(format, args...)))
}
