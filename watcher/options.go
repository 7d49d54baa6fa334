// Copyright (c) 2025 fpxbs7777

package watcher

import (
	"fmt"
	"time"
)

type Options struct {
	// Interval is the time between order status polls.
	Interval time.Duration

	// Timeout bounds each poll.
	Timeout time.Duration
}

func (v *Options) setDefaults() {
	if v.Interval == 0 {
		v.Interval = time.Minute
	}
	if v.Timeout == 0 {
		v.Timeout = 30 * time.Second
	}
}

func (v *Options) Check() error {
	if v.Interval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	if v.Timeout <= 0 {
		return fmt.Errorf("poll timeout must be positive")
	}
	return nil
}
