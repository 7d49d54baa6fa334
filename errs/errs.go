// Copyright (c) 2025 fpxbs7777

// Package errs defines the error envelope shared by the home-broker clients.
//
// Every failure surfaced to a caller carries a Kind so that callers can tell
// bad configuration apart from an unreachable server, a rejected login or a
// malformed upstream payload without matching on error strings.
package errs

import (
	"errors"
	"strconv"
	"strings"
)

// Kind identifies a failure category.
type Kind string

const (
	// KindUnknown captures uncategorized failures.
	KindUnknown Kind = "unknown"
	// KindConfig indicates invalid caller supplied parameters or settings.
	KindConfig Kind = "config"
	// KindNotSupported indicates an unknown broker or capability.
	KindNotSupported Kind = "not_supported"
	// KindTransport indicates network failures and unexpected HTTP statuses.
	KindTransport Kind = "transport"
	// KindSession indicates a rejected login or a missing session.
	KindSession Kind = "session"
	// KindRejected indicates a request the broker refused, e.g. an order.
	KindRejected Kind = "rejected"
	// KindData indicates upstream payloads that do not have the expected shape.
	KindData Kind = "data"
)

// E is the structured error envelope.
type E struct {
	Kind Kind

	// Op names the failing operation, e.g. "login" or "get-panel".
	Op string

	// HTTP is the upstream status code when known.
	HTTP int

	Message string

	cause error
}

// Option configures an error envelope.
type Option func(*E)

// New constructs an error envelope for the operation and kind.
func New(kind Kind, op string, opts ...Option) *E {
	e := &E{
		Kind: kind,
		Op:   strings.TrimSpace(op),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// WithMessage attaches a human-readable message to the error.
func WithMessage(message string) Option {
	trimmed := strings.TrimSpace(message)
	return func(e *E) {
		e.Message = trimmed
	}
}

// WithHTTP records the associated HTTP status code.
func WithHTTP(status int) Option {
	return func(e *E) {
		e.HTTP = status
	}
}

// WithCause sets the underlying cause error.
func WithCause(err error) Option {
	return func(e *E) {
		e.cause = err
	}
}

func (e *E) Error() string {
	if e == nil {
		return "<nil>"
	}
	var sb strings.Builder
	if e.Op != "" {
		sb.WriteString(e.Op)
		sb.WriteString(": ")
	}
	kind := e.Kind
	if kind == "" {
		kind = KindUnknown
	}
	if e.Message != "" {
		sb.WriteString(e.Message)
	} else {
		sb.WriteString(string(kind))
		sb.WriteString(" error")
	}
	if e.HTTP > 0 {
		sb.WriteString(" (http status ")
		sb.WriteString(strconv.Itoa(e.HTTP))
		sb.WriteString(")")
	}
	if e.cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.cause.Error())
	}
	return sb.String()
}

func (e *E) Unwrap() error { return e.cause }

// KindOf returns the kind of the first error envelope in the err chain.
func KindOf(err error) Kind {
	var e *E
	if errors.As(err, &e) && e.Kind != "" {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries an error envelope of the given kind.
func IsKind(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}

// HTTPStatus returns the upstream status code recorded in the err chain, or
// zero.
func HTTPStatus(err error) int {
	var e *E
	if errors.As(err, &e) {
		return e.HTTP
	}
	return 0
}
