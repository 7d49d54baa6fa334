// Copyright (c) 2025 fpxbs7777

// Package config loads the YAML settings and the JSON secrets used by the
// hmbroker commands.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fpxbs7777/HM/brokers"
	"github.com/fpxbs7777/HM/exchange"
	"github.com/fpxbs7777/HM/online"
	"github.com/fpxbs7777/HM/shda"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Brokers add to or replace entries of the built-in broker table.
	Brokers []*brokers.Broker `yaml:"brokers"`

	HttpTimeout       time.Duration `yaml:"http_timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`

	// StrictData fails fetches with incomplete upstream rows instead of
	// dropping them.
	StrictData bool `yaml:"strict_data"`

	DataDir string `yaml:"data_dir"`
	LogDir  string `yaml:"log_dir"`

	// Timezone is the IANA name of the sites' timezone. Empty means the fixed
	// Buenos Aires offset.
	Timezone string `yaml:"timezone"`

	// PollInterval is the order status polling interval of the watcher.
	PollInterval time.Duration `yaml:"poll_interval"`

	// ListenAddress is the address of the local HTTP API.
	ListenAddress string `yaml:"listen_address"`

	// CacheTTL is how long the HTTP API reuses a fetched panel.
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := new(Config)
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	if c.HttpTimeout == 0 {
		c.HttpTimeout = 30 * time.Second
	}
	if c.RequestsPerSecond == 0 {
		c.RequestsPerSecond = 5
	}
	if c.PollInterval == 0 {
		c.PollInterval = time.Minute
	}
	if c.ListenAddress == "" {
		c.ListenAddress = "127.0.0.1:10100"
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 5 * time.Second
	}
}

func (c *Config) Check() error {
	if c.HttpTimeout < 0 {
		return fmt.Errorf("http_timeout cannot be negative")
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests_per_second cannot be negative")
	}
	if c.PollInterval < time.Second {
		return fmt.Errorf("poll_interval must be at least one second")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl cannot be negative")
	}
	if _, err := c.BrokerTable(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Parse decodes a YAML configuration. Unknown keys are rejected.
func Parse(r io.Reader) (*Config, error) {
	c := new(Config)
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("could not yaml-decode config: %w", err)
	}
	c.setDefaults()
	if err := c.Check(); err != nil {
		return nil, err
	}
	return c, nil
}

// FromFile loads the configuration file. A missing file yields the default
// configuration when optional is true.
func FromFile(fpath string, optional bool) (*Config, error) {
	data, err := os.ReadFile(fpath)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	c, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fpath, err)
	}
	return c, nil
}

// BrokerTable returns the built-in broker table merged with the configured
// brokers.
func (c *Config) BrokerTable() (*brokers.Table, error) {
	if len(c.Brokers) == 0 {
		return brokers.Default(), nil
	}
	return brokers.Default().With(c.Brokers)
}

func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return exchange.DefaultLocation, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ClientOptions returns the scraping client options for the configuration.
func (c *Config) ClientOptions() (*shda.Options, error) {
	table, err := c.BrokerTable()
	if err != nil {
		return nil, err
	}
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}
	opts := &shda.Options{
		HttpClientTimeout: c.HttpTimeout,
		RequestsPerSecond: c.RequestsPerSecond,
		Brokers:           table,
		Location:          loc,
		StrictData:        c.StrictData,
	}
	return opts, nil
}

// FeedOptions returns the realtime feed options for the configuration.
func (c *Config) FeedOptions() (*online.Options, error) {
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}
	opts := &online.Options{
		Location:   loc,
		StrictData: c.StrictData,
	}
	return opts, nil
}
