// Copyright (c) 2025 fpxbs7777

package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fpxbs7777/HM/errs"
	json "github.com/goccy/go-json"
)

const (
	pushoverURL   = "https://api.pushover.net/1/messages.json"
	pushoverTitle = "hmbroker"
)

// PushoverKeys configure the Pushover notifier.
type PushoverKeys struct {
	ApplicationKey string `json:"application_key"`
	UserKey        string `json:"user_key"`
}

func (v *PushoverKeys) Check() error {
	if len(v.ApplicationKey) == 0 {
		return fmt.Errorf("application key cannot be empty")
	}
	if len(v.UserKey) == 0 {
		return fmt.Errorf("user key cannot be empty")
	}
	return nil
}

type Pushover struct {
	token string
	user  string

	url string

	httpClient *http.Client
}

// NewPushover returns a notifier that posts to the Pushover messages API.
func NewPushover(keys *PushoverKeys) (*Pushover, error) {
	if err := keys.Check(); err != nil {
		return nil, err
	}
	p := &Pushover{
		token:      keys.ApplicationKey,
		user:       keys.UserKey,
		url:        pushoverURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	return p, nil
}

// pushoverResponse is the body of every messages API reply. Status is 1 only
// when the message was queued.
type pushoverResponse struct {
	Status  int      `json:"status"`
	Request string   `json:"request"`
	Errors  []string `json:"errors"`
}

// SendMessage queues one message with the given timestamp. Rejections by the
// service are returned as rejected-kind errors carrying the service's error
// strings.
func (p *Pushover) SendMessage(ctx context.Context, at time.Time, text string) error {
	form := url.Values{
		"token":     {p.token},
		"user":      {p.user},
		"title":     {pushoverTitle},
		"message":   {text},
		"timestamp": {strconv.FormatInt(at.Unix(), 10)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return errs.New(errs.KindTransport, "pushover", errs.WithCause(err))
	}
	defer resp.Body.Close()

	reply := new(pushoverResponse)
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(reply); err != nil {
		return errs.New(errs.KindTransport, "pushover", errs.WithHTTP(resp.StatusCode), errs.WithCause(err))
	}
	if reply.Status == 1 {
		return nil
	}
	msg := "message was not queued"
	if len(reply.Errors) > 0 {
		msg = strings.Join(reply.Errors, "; ")
	}
	return errs.New(errs.KindRejected, "pushover", errs.WithMessage(msg), errs.WithHTTP(resp.StatusCode))
}
