// Copyright (c) 2025 fpxbs7777

// Package online implements the realtime market data feed of the home-broker
// sites. A Feed reuses the cookies of a logged-in session, keeps a websocket
// connection open and publishes typed events for the subscribed channels.
package online

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/fpxbs7777/HM/errs"
	"github.com/fpxbs7777/HM/exchange"
	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/sourcegraph/conc"
	"github.com/visvasity/topic"
)

// Session is the logged-in web session the feed piggybacks on.
type Session interface {
	BaseURL() *url.URL
	CookieJar() http.CookieJar
}

type pushHandler func(ctx context.Context, args []json.RawMessage) error

type Feed struct {
	lifeCtx    context.Context
	lifeCancel context.CancelCauseFunc

	wg conc.WaitGroup

	opts Options

	wsURL  url.URL
	origin string
	dialer websocket.Dialer

	normalizer exchange.Normalizer

	events *topic.Topic[exchange.Event]

	handlerMap map[string]pushHandler

	startOnce sync.Once
	closeOnce sync.Once

	mu       sync.Mutex
	conn     *websocket.Conn
	channels map[string]*Subscription
	lastID   int64
}

var _ exchange.Feed = &Feed{}

// New creates a feed for the session. No connection is made until Connect is
// called, so that event receivers can be created first.
func New(session Session, opts *Options) (*Feed, error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, errs.New(errs.KindConfig, "new-feed", errs.WithCause(err))
	}
	base := session.BaseURL()
	if base == nil || base.Host == "" {
		return nil, errs.New(errs.KindConfig, "new-feed", errs.WithMessage("session has no host"))
	}

	query := make(url.Values)
	query.Set("transport", "webSockets")
	query.Set("connectionData", fmt.Sprintf(`[{"name":%q}]`, opts.Hub))

	policy := exchange.DropInvalid
	if opts.StrictData {
		policy = exchange.Strict
	}

	lifeCtx, lifeCancel := context.WithCancelCause(context.Background())
	f := &Feed{
		lifeCtx:    lifeCtx,
		lifeCancel: lifeCancel,
		opts:       *opts,
		wsURL: url.URL{
			Scheme:   opts.Scheme,
			Host:     base.Host,
			Path:     opts.Path,
			RawQuery: query.Encode(),
		},
		origin: base.Scheme + "://" + base.Host,
		dialer: websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			Jar:              session.CookieJar(),
			HandshakeTimeout: opts.HandshakeTimeout,
		},
		normalizer: exchange.Normalizer{
			Location: opts.Location,
			Policy:   policy,
		},
		events:     topic.New[exchange.Event](),
		handlerMap: make(map[string]pushHandler),
		channels:   make(map[string]*Subscription),
	}
	f.handlerMap["securities"] = f.onSecurities
	f.handlerMap["options"] = f.onOptions
	f.handlerMap["repos"] = f.onRepos
	f.handlerMap["orderbook"] = f.onOrderBook
	f.handlerMap["portfolio"] = f.onPortfolio
	return f, nil
}

// Connect starts the background connection loop. Lost connections are
// reopened with exponential backoff and all active channels are joined
// again.
func (f *Feed) Connect() error {
	if err := context.Cause(f.lifeCtx); err != nil {
		return err
	}
	f.startOnce.Do(func() {
		f.wg.Go(func() { f.goConnect(f.lifeCtx) })
	})
	return nil
}

// Close disconnects the feed and closes all event receivers.
func (f *Feed) Close() error {
	f.lifeCancel(os.ErrClosed)
	f.wg.Wait()
	f.closeOnce.Do(func() { f.events.Close() })
	return nil
}

// Events returns a new receiver for all feed events. Receivers must be closed
// by the caller.
func (f *Feed) Events() (*topic.Receiver[exchange.Event], error) {
	return topic.Subscribe(f.events, 0, false)
}

func (f *Feed) publish(ev exchange.Event) {
	f.events.Send(ev)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return context.Cause(ctx)
	case <-timer.C:
		return nil
	}
}

func (f *Feed) goConnect(ctx context.Context) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.opts.InitialBackoff
	b.MaxInterval = f.opts.MaxBackoff

	for ctx.Err() == nil {
		connected, err := f.connect(ctx)
		if ctx.Err() != nil {
			return
		}
		if connected {
			b.Reset()
		}
		delay := b.NextBackOff()
		slog.Warn("websocket feed is disconnected (will retry)", "url", f.wsURL.Host, "retry-after", delay, "err", err)
		if err := sleep(ctx, delay); err != nil {
			return
		}
	}
}

func (f *Feed) connect(ctx context.Context) (connected bool, status error) {
	header := make(http.Header)
	header.Set("Origin", f.origin)

	conn, _, err := f.dialer.DialContext(ctx, f.wsURL.String(), header)
	if err != nil {
		if ctx.Err() == nil {
			slog.Error("could not dial to websocket feed", "url", f.wsURL.Host, "err", err)
			f.publish(&exchange.ErrorEvent{Err: errs.New(errs.KindTransport, "feed-connect", errs.WithCause(err))})
		}
		return false, err
	}
	defer conn.Close()

	f.mu.Lock()
	f.conn = conn
	channels := make([]string, 0, len(f.channels))
	for ch := range f.channels {
		channels = append(channels, ch)
	}
	slices.Sort(channels)
	var joinErr error
	for _, ch := range channels {
		if joinErr = f.writeLocked(conn, methodJoinGroup, ch); joinErr != nil {
			break
		}
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.conn = nil
		f.mu.Unlock()
		f.publish(&exchange.CloseEvent{Time: time.Now()})
	}()
	f.publish(&exchange.OpenEvent{Time: time.Now()})

	if joinErr != nil {
		f.publish(&exchange.ErrorEvent{Err: joinErr, ConnectionLost: true})
		return true, joinErr
	}

	for {
		msg, err := readMessage(ctx, conn)
		if err != nil {
			if ctx.Err() != nil {
				return true, context.Cause(ctx)
			}
			f.publish(&exchange.ErrorEvent{Err: errs.New(errs.KindTransport, "feed-read", errs.WithCause(err)), ConnectionLost: true})
			return true, err
		}
		if err := f.handleFrame(ctx, msg); err != nil {
			slog.Error("could not handle websocket message", "err", err)
			f.publish(&exchange.ErrorEvent{Err: err})
		}
	}
}

func readMessage(ctx context.Context, conn *websocket.Conn) ([]byte, error) {
	stopc := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		conn.SetReadDeadline(time.Now())
		close(stopc)
	})

	_, msg, err := conn.ReadMessage()
	if !stop() {
		// The AfterFunc was started. Wait for it to complete, and reset the Conn's
		// deadline.
		<-stopc
		conn.SetReadDeadline(time.Time{})
		return nil, context.Cause(ctx)
	}
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// writeLocked sends a hub invocation. Caller must hold f.mu.
func (f *Feed) writeLocked(conn *websocket.Conn, method, channel string) error {
	f.lastID++
	inv := &Invocation{
		Hub:    f.opts.Hub,
		Method: method,
		Args:   []string{channel},
		ID:     f.lastID,
	}
	data, err := json.Marshal(inv)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(f.opts.WriteTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("could not send websocket invocation", "method", method, "channel", channel, "err", err)
		return err
	}
	return nil
}

func (f *Feed) handleFrame(ctx context.Context, msg []byte) error {
	frame := new(Frame)
	if err := json.Unmarshal(msg, frame); err != nil {
		return errs.New(errs.KindData, "feed", errs.WithMessage("could not decode websocket message"), errs.WithCause(err))
	}
	if frame.Error != "" {
		return errs.New(errs.KindRejected, "feed", errs.WithMessage(fmt.Sprintf("invocation %s failed: %s", frame.ID, frame.Error)))
	}
	for _, m := range frame.Messages {
		if m == nil {
			continue
		}
		handler, ok := f.handlerMap[strings.ToLower(m.Method)]
		if !ok {
			slog.Warn("could not find handler for incoming push (ignored)", "method", m.Method)
			continue
		}
		if err := handler(ctx, m.Args); err != nil {
			return err
		}
	}
	return nil
}
