// Copyright (c) 2025 fpxbs7777

package shda

import (
	"log/slog"
	"strconv"

	"github.com/fpxbs7777/HM/errs"
)

// Credentials identify a home-broker user.
type Credentials struct {
	Broker   int    `json:"broker"`
	DNI      string `json:"dni"`
	User     string `json:"user"`
	Password string `json:"password"`
}

// LogValue keeps the password out of logs.
func (c *Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("broker", c.Broker),
		slog.String("dni", c.DNI),
		slog.String("user", c.User),
	)
}

// Check validates the credentials without contacting the site.
func (c *Credentials) Check() error {
	if !IsValidBroker(strconv.Itoa(c.Broker)) {
		return errs.New(errs.KindConfig, "check-credentials", errs.WithMessage("invalid broker number"))
	}
	if !IsValidDNI(c.DNI) {
		return errs.New(errs.KindConfig, "check-credentials", errs.WithMessage("invalid DNI"))
	}
	if !IsValidUser(c.User) {
		return errs.New(errs.KindConfig, "check-credentials", errs.WithMessage("invalid user"))
	}
	if !IsValidPassword(c.Password) {
		return errs.New(errs.KindConfig, "check-credentials", errs.WithMessage("invalid password"))
	}
	return nil
}

func isDigits(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func IsValidBroker(s string) bool   { return isDigits(s) }
func IsValidDNI(s string) bool      { return isDigits(s) }
func IsValidUser(s string) bool     { return len(s) > 0 }
func IsValidPassword(s string) bool { return len(s) > 0 }
func IsValidAccount(s string) bool  { return isDigits(s) }

func checkAccount(op, account string) error {
	if !IsValidAccount(account) {
		return errs.New(errs.KindConfig, op, errs.WithMessage("invalid account number"))
	}
	return nil
}
