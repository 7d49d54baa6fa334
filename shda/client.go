// Copyright (c) 2025 fpxbs7777

// Package shda implements a session-authenticated client for home-broker
// sites that share the same web backend. A client logs in with the user's
// credentials and scrapes the JSON endpoints used by the site's own pages.
package shda

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"path"
	"strings"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/fpxbs7777/HM/brokers"
	"github.com/fpxbs7777/HM/errs"
	"github.com/fpxbs7777/HM/exchange"
	json "github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

// ErrNotLoggedIn is returned by data operations on a client without a valid
// session.
var ErrNotLoggedIn = errors.New("you must be logged in first")

const sessionFailedMessage = "Session cannot be created.  Check the entered information and try again."

type Client struct {
	opts Options

	broker *brokers.Broker

	client  http.Client
	limiter *rate.Limiter

	normalizer exchange.Normalizer

	loggedIn atomic.Bool
}

var _ exchange.Broker = &Client{}

// New validates the credentials, resolves the broker and logs into the site.
// A client is returned only when the login succeeds.
func New(ctx context.Context, creds *Credentials, opts *Options) (*Client, error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, errs.New(errs.KindConfig, "new-client", errs.WithCause(err))
	}
	if creds == nil {
		return nil, errs.New(errs.KindConfig, "new-client", errs.WithMessage("credentials are required"))
	}
	if err := creds.Check(); err != nil {
		return nil, err
	}

	broker, err := opts.Brokers.Lookup(creds.Broker)
	if err != nil {
		return nil, err
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	c := &Client{
		opts:   *opts,
		broker: broker,
		client: http.Client{
			Jar:     jar,
			Timeout: opts.HttpClientTimeout,
		},
		limiter: rate.NewLimiter(opts.limit(), opts.Burst),
		normalizer: exchange.Normalizer{
			Location: opts.Location,
			Policy:   opts.dataPolicy(),
		},
	}

	if err := c.login(ctx, creds); err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Error("could not login to broker site", "broker", broker.ID, "host", broker.Host, "err", err)
		}
		return nil, err
	}
	slog.Info("logged in to broker site", "broker", broker.ID, "host", broker.Host)
	return c, nil
}

// Close drops the session. Data operations fail with ErrNotLoggedIn
// afterwards.
func (c *Client) Close() error {
	c.loggedIn.Store(false)
	c.client.CloseIdleConnections()
	return nil
}

// LoggedIn returns true if the client holds an authenticated session.
func (c *Client) LoggedIn() bool {
	return c.loggedIn.Load()
}

// Broker returns the broker the client is logged into.
func (c *Client) Broker() *brokers.Broker {
	v := *c.broker
	return &v
}

// CookieJar returns the session cookies, so that other connections to the
// same site can reuse the login.
func (c *Client) CookieJar() http.CookieJar {
	return c.client.Jar
}

// BaseURL returns the site root.
func (c *Client) BaseURL() *url.URL {
	return &url.URL{Scheme: c.opts.Scheme, Host: c.broker.Host, Path: "/"}
}

func (c *Client) endpoint(p string) *url.URL {
	return &url.URL{
		Scheme: c.opts.Scheme,
		Host:   c.broker.Host,
		Path:   path.Join("/", p),
	}
}

func (c *Client) origin() string {
	return c.opts.Scheme + "://" + c.broker.Host
}

func (c *Client) setDocumentHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("DNT", "1")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	req.Header.Set("Sec-Fetch-User", "?1")
}

func (c *Client) setXHRHeaders(req *http.Request, referer string) {
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("DNT", "1")
	req.Header.Set("Origin", c.origin())
	req.Header.Set("Referer", c.origin()+referer)
	req.Header.Set("Sec-Fetch-Dest", "empty")
	req.Header.Set("Sec-Fetch-Mode", "cors")
	req.Header.Set("Sec-Fetch-Site", "same-origin")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
}

func (c *Client) do(ctx context.Context, op string, req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	s := time.Now()
	resp, err := c.client.Do(req)
	d := time.Since(s)
	if d > c.opts.HttpClientTimeout {
		slog.Warn(fmt.Sprintf("%s request took %s which is more than the http client timeout %s", op, d, c.opts.HttpClientTimeout))
	}
	if err != nil {
		c.opts.Metrics.observe(op, 0, d)
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errs.New(errs.KindTransport, op, errs.WithCause(err))
	}
	c.opts.Metrics.observe(op, resp.StatusCode, d)
	return resp, nil
}

func (c *Client) login(ctx context.Context, creds *Credentials) error {
	// Landing page seeds the session cookies.
	homeURL := c.BaseURL()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, homeURL.String(), nil)
	if err != nil {
		return err
	}
	c.setDocumentHeaders(req)
	req.Header.Set("Sec-Fetch-Site", "none")

	resp, err := c.do(ctx, "login", req)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errs.New(errs.KindTransport, "login", errs.WithMessage("server down"), errs.WithHTTP(resp.StatusCode))
	}

	form := url.Values{
		"IpAddress": {""},
		"Dni":       {creds.DNI},
		"Usuario":   {creds.User},
		"Password":  {creds.Password},
	}
	loginURL := c.endpoint("/Login/Ingresar")
	req, err = http.NewRequestWithContext(ctx, http.MethodPost, loginURL.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	c.setDocumentHeaders(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Origin", c.origin()+"/")
	req.Header.Set("Referer", c.origin()+"/")
	req.Header.Set("Sec-Fetch-Site", "same-origin")

	resp, err = c.do(ctx, "login", req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errs.New(errs.KindTransport, "login", errs.WithMessage("login request failed"), errs.WithHTTP(resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return errs.New(errs.KindSession, "login", errs.WithMessage("could not parse login response"), errs.WithCause(err))
	}
	if doc.Find("#usuarioLogueado").Length() == 0 {
		msg := strings.TrimSpace(doc.Find(".callout-danger").Text())
		if msg == "" {
			msg = sessionFailedMessage
		}
		return errs.New(errs.KindSession, "login", errs.WithMessage(msg))
	}

	c.loggedIn.Store(true)
	return nil
}

// postJSON sends request as a JSON body and decodes the JSON response.
func postJSON[PT *T, T any](ctx context.Context, c *Client, op string, addrURL *url.URL, referer string, request any, response PT) error {
	if !c.LoggedIn() {
		return errs.New(errs.KindSession, op, errs.WithCause(ErrNotLoggedIn))
	}

	body, err := json.Marshal(request)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, addrURL.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	c.setXHRHeaders(req, referer)
	return doJSON(ctx, c, op, req, response)
}

// getJSON sends a GET request and decodes the JSON response.
func getJSON[PT *T, T any](ctx context.Context, c *Client, op string, addrURL *url.URL, referer string, response PT) error {
	if !c.LoggedIn() {
		return errs.New(errs.KindSession, op, errs.WithCause(ErrNotLoggedIn))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addrURL.String(), nil)
	if err != nil {
		return err
	}
	c.setXHRHeaders(req, referer)
	req.Header.Del("Content-Type")
	return doJSON(ctx, c, op, req, response)
}

func doJSON[PT *T, T any](ctx context.Context, c *Client, op string, req *http.Request, response PT) error {
	resp, err := c.do(ctx, op, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if body, err := io.ReadAll(io.LimitReader(resp.Body, 4096)); err == nil {
			slog.Warn("http request returned unsuccessful status code", "op", op, "status-code", resp.StatusCode, "body", string(body))
		}
		return errs.New(errs.KindTransport, op, errs.WithMessage(fmt.Sprintf("http %s returned %d", req.Method, resp.StatusCode)), errs.WithHTTP(resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(response); err != nil {
		return errs.New(errs.KindData, op, errs.WithMessage("could not decode response"), errs.WithCause(err))
	}
	return nil
}
