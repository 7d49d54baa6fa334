// Copyright (c) 2025 fpxbs7777

package online

import (
	"fmt"
	"time"

	"github.com/fpxbs7777/HM/exchange"
)

type Options struct {
	// Scheme is the websocket URL scheme. Defaults to wss.
	Scheme string

	// Path is the websocket endpoint on the broker site.
	Path string

	// Hub is the server side hub that receives group invocations.
	Hub string

	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration

	// InitialBackoff and MaxBackoff bound the delay between reconnects.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	Location *time.Location

	// StrictData makes malformed pushes produce error events instead of
	// dropping the malformed rows.
	StrictData bool
}

func (v *Options) setDefaults() {
	if v.Scheme == "" {
		v.Scheme = "wss"
	}
	if v.Path == "" {
		v.Path = "/signalr/connect"
	}
	if v.Hub == "" {
		v.Hub = "stockpriceshub"
	}
	if v.HandshakeTimeout == 0 {
		v.HandshakeTimeout = 30 * time.Second
	}
	if v.WriteTimeout == 0 {
		v.WriteTimeout = 10 * time.Second
	}
	if v.InitialBackoff == 0 {
		v.InitialBackoff = time.Second
	}
	if v.MaxBackoff == 0 {
		v.MaxBackoff = time.Minute
	}
	if v.Location == nil {
		v.Location = exchange.DefaultLocation
	}
}

// Check validates the options.
func (v *Options) Check() error {
	if v.Scheme != "wss" && v.Scheme != "ws" {
		return fmt.Errorf("unsupported websocket scheme %q", v.Scheme)
	}
	if v.InitialBackoff < 0 || v.MaxBackoff < v.InitialBackoff {
		return fmt.Errorf("invalid reconnect backoff range [%s, %s]", v.InitialBackoff, v.MaxBackoff)
	}
	return nil
}
