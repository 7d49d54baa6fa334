// Copyright (c) 2025 fpxbs7777

package shda

import (
	"fmt"
	"time"

	"github.com/fpxbs7777/HM/brokers"
	"github.com/fpxbs7777/HM/exchange"
	"golang.org/x/time/rate"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:91.0) Gecko/20100101 Firefox/91.0"

type Options struct {
	// Scheme is the URL scheme used to reach the broker site. Defaults to
	// https.
	Scheme string

	HttpClientTimeout time.Duration

	// RequestsPerSecond and Burst pace the requests sent to the site.
	RequestsPerSecond float64
	Burst             int

	UserAgent string

	// Brokers is the table used to resolve the broker id. Defaults to the
	// built-in table.
	Brokers *brokers.Table

	// Location is the timezone of dates reported by the site.
	Location *time.Location

	// StrictData makes fetches fail when an upstream entry is missing fields
	// instead of dropping the entry.
	StrictData bool

	// Metrics receives request counters when non-nil.
	Metrics *Metrics
}

func (v *Options) setDefaults() {
	if v.Scheme == "" {
		v.Scheme = "https"
	}
	if v.HttpClientTimeout == 0 {
		v.HttpClientTimeout = 30 * time.Second
	}
	if v.RequestsPerSecond == 0 {
		v.RequestsPerSecond = 5
	}
	if v.Burst == 0 {
		v.Burst = 1
	}
	if v.UserAgent == "" {
		v.UserAgent = defaultUserAgent
	}
	if v.Brokers == nil {
		v.Brokers = brokers.Default()
	}
	if v.Location == nil {
		v.Location = exchange.DefaultLocation
	}
}

// Check validates the options.
func (v *Options) Check() error {
	if v.Scheme != "https" && v.Scheme != "http" {
		return fmt.Errorf("unsupported url scheme %q", v.Scheme)
	}
	if v.HttpClientTimeout < 0 {
		return fmt.Errorf("http client timeout cannot be negative")
	}
	if v.RequestsPerSecond < 0 {
		return fmt.Errorf("requests per second cannot be negative")
	}
	if v.Burst < 0 {
		return fmt.Errorf("burst cannot be negative")
	}
	return nil
}

func (v *Options) limit() rate.Limit {
	return rate.Limit(v.RequestsPerSecond)
}

func (v *Options) dataPolicy() exchange.DataPolicy {
	if v.StrictData {
		return exchange.Strict
	}
	return exchange.DropInvalid
}
