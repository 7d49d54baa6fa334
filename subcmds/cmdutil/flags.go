// Copyright (c) 2025 fpxbs7777

package cmdutil

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fpxbs7777/HM/config"
	"github.com/fpxbs7777/HM/datastore"
	"github.com/fpxbs7777/HM/shda"
	"github.com/visvasity/sglog"
	"golang.org/x/term"
)

// Flags are the common flags of the commands that talk to a broker.
type Flags struct {
	dataDir     string
	configPath  string
	secretsPath string
	logDir      string
	debug       bool
}

func (f *Flags) SetFlags(fset *flag.FlagSet) {
	fset.StringVar(&f.dataDir, "data-dir", "", "path to the data directory (default $HOME/.hmbroker)")
	fset.StringVar(&f.configPath, "config", "", "path to the yaml config file (default data-dir/config.yaml)")
	fset.StringVar(&f.secretsPath, "secrets-file", "", "path to the credentials file (default data-dir/secrets.json)")
	fset.StringVar(&f.logDir, "log-dir", "", "when non-empty, write log files to this directory")
	fset.BoolVar(&f.debug, "debug", false, "when true, enables debug logging")
}

func (f *Flags) DataDir() string {
	if f.dataDir != "" {
		return f.dataDir
	}
	return filepath.Join(os.Getenv("HOME"), ".hmbroker")
}

// Config loads the config file. The default config file is optional.
func (f *Flags) Config() (*config.Config, error) {
	if f.configPath != "" {
		return config.FromFile(f.configPath, false)
	}
	c, err := config.FromFile(filepath.Join(f.DataDir(), "config.yaml"), true)
	if err != nil {
		return nil, err
	}
	if c.DataDir != "" && f.dataDir == "" {
		f.dataDir = c.DataDir
	}
	if c.LogDir != "" && f.logDir == "" {
		f.logDir = c.LogDir
	}
	return c, nil
}

func (f *Flags) Secrets() (*config.Secrets, error) {
	fpath := f.secretsPath
	if fpath == "" {
		fpath = filepath.Join(f.DataDir(), "secrets.json")
	}
	return config.SecretsFromFile(fpath)
}

// SetupLogging routes slog output to log files when a log directory is
// configured. Returned function flushes and closes the log files.
func (f *Flags) SetupLogging() func() {
	level := slog.LevelInfo
	if f.debug {
		level = slog.LevelDebug
	}
	if f.logDir == "" {
		h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
		slog.SetDefault(slog.New(h))
		return func() {}
	}
	backend := sglog.NewBackend(&sglog.Options{
		LogDirs: []string{f.logDir},
	})
	if f.debug {
		backend.SetLevel(slog.LevelDebug)
	}
	slog.SetDefault(slog.New(backend.Handler()))
	return backend.Close
}

// NewClient logs into the broker site with the configured credentials. A
// missing password is read from the terminal. Metrics may be nil.
func (f *Flags) NewClient(ctx context.Context, metrics *shda.Metrics) (*shda.Client, *config.Secrets, error) {
	cfg, err := f.Config()
	if err != nil {
		return nil, nil, err
	}
	secrets, err := f.Secrets()
	if err != nil {
		return nil, nil, err
	}
	if secrets.Login == nil {
		return nil, nil, fmt.Errorf("login credentials are not configured (see the secrets file or HMBROKER_* variables)")
	}
	if secrets.Login.Password == "" {
		password, err := ReadPassword(fmt.Sprintf("Password for %s: ", secrets.Login.User))
		if err != nil {
			return nil, nil, err
		}
		secrets.Login.Password = password
	}
	opts, err := cfg.ClientOptions()
	if err != nil {
		return nil, nil, err
	}
	opts.Metrics = metrics
	client, err := shda.New(ctx, secrets.Login, opts)
	if err != nil {
		return nil, nil, err
	}
	return client, secrets, nil
}

// OpenDatastore opens the local database in the data directory.
func (f *Flags) OpenDatastore() (*datastore.Datastore, func(), error) {
	if _, err := f.Config(); err != nil {
		return nil, nil, err
	}
	return datastore.Open(f.DataDir())
}

// ReadPassword reads a password from the terminal without echo.
func ReadPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("password is not configured and stdin is not a terminal")
	}
	fmt.Fprint(os.Stderr, prompt)
	data, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("could not read password: %w", err)
	}
	return string(data), nil
}

// Account returns the flag value or the configured default account.
func Account(flagValue string, secrets *config.Secrets) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if secrets != nil && secrets.Account != "" {
		return secrets.Account, nil
	}
	return "", fmt.Errorf("account number is required (use -account or HMBROKER_ACCOUNT)")
}
