// Copyright (c) 2025 fpxbs7777

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/fpxbs7777/HM/notify"
	"github.com/fpxbs7777/HM/shda"
	json "github.com/goccy/go-json"
)

type Secrets struct {
	Login *shda.Credentials `json:"login"`

	// Account is the default comitente number for account operations.
	Account string `json:"account"`

	Telegram *notify.TelegramKeys `json:"telegram"`
	Pushover *notify.PushoverKeys `json:"pushover"`
}

// environ holds the environment variables that override the secrets file.
type environ struct {
	Broker    int    `env:"HMBROKER_BROKER"`
	DNI       string `env:"HMBROKER_DNI"`
	User      string `env:"HMBROKER_USER"`
	Password  string `env:"HMBROKER_PASSWORD"`
	Account   string `env:"HMBROKER_ACCOUNT"`
	MasterKey string `env:"HMBROKER_MASTER_KEY"`
}

// SecretsFromFile loads the secrets file, applies the environment overrides
// and decrypts an encrypted password. A missing file is not an error; the
// secrets then come from the environment alone.
func SecretsFromFile(fpath string) (*Secrets, error) {
	s := new(Secrets)
	if fpath != "" {
		data, err := os.ReadFile(fpath)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("could not read secrets file: %w", err)
		}
		if err == nil {
			if err := json.Unmarshal(data, s); err != nil {
				return nil, fmt.Errorf("could not json-decode secrets file %q: %w", fpath, err)
			}
		}
	}

	var e environ
	if err := env.Parse(&e); err != nil {
		return nil, fmt.Errorf("could not parse environment: %w", err)
	}
	s.applyEnv(&e)

	if s.Login != nil && IsEncrypted(s.Login.Password) {
		if e.MasterKey == "" {
			return nil, fmt.Errorf("password is encrypted but HMBROKER_MASTER_KEY is not set")
		}
		password, err := Decrypt(e.MasterKey, s.Login.Password)
		if err != nil {
			return nil, fmt.Errorf("could not decrypt password: %w", err)
		}
		s.Login.Password = password
	}

	if err := s.Check(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Secrets) applyEnv(e *environ) {
	if e.Broker != 0 || e.DNI != "" || e.User != "" || e.Password != "" {
		if s.Login == nil {
			s.Login = new(shda.Credentials)
		}
	}
	if e.Broker != 0 {
		s.Login.Broker = e.Broker
	}
	if e.DNI != "" {
		s.Login.DNI = strings.TrimSpace(e.DNI)
	}
	if e.User != "" {
		s.Login.User = e.User
	}
	if e.Password != "" {
		s.Login.Password = e.Password
	}
	if e.Account != "" {
		s.Account = strings.TrimSpace(e.Account)
	}
}

// Check validates the optional sections that are present. Login credentials
// are validated when a session is created, after a missing password may have
// been prompted for.
func (s *Secrets) Check() error {
	if s.Account != "" && !shda.IsValidAccount(s.Account) {
		return fmt.Errorf("invalid account number %q", s.Account)
	}
	if s.Telegram != nil {
		if err := s.Telegram.Check(); err != nil {
			return fmt.Errorf("telegram: %w", err)
		}
	}
	if s.Pushover != nil {
		if err := s.Pushover.Check(); err != nil {
			return fmt.Errorf("pushover: %w", err)
		}
	}
	return nil
}

// Notifiers returns the configured notifiers. The log notifier is always
// included.
func (s *Secrets) Notifiers() (notify.Notifier, error) {
	list := notify.Multi{notify.Log{}}
	if s.Telegram != nil {
		tg, err := notify.NewTelegram(s.Telegram)
		if err != nil {
			return nil, err
		}
		list = append(list, tg)
	}
	if s.Pushover != nil {
		po, err := notify.NewPushover(s.Pushover)
		if err != nil {
			return nil, err
		}
		list = append(list, po)
	}
	return list, nil
}
