// Copyright (c) 2025 fpxbs7777

package errs

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := New(KindTransport, "get-panel", WithHTTP(503), WithMessage("server down"), WithCause(os.ErrDeadlineExceeded))
	out := err.Error()
	if !strings.HasPrefix(out, "get-panel: server down") {
		t.Fatalf("want op and message prefix, got %q", out)
	}
	if !strings.Contains(out, "(http status 503)") {
		t.Fatalf("want http status in error string, got %q", out)
	}
	if !errors.Is(err, os.ErrDeadlineExceeded) {
		t.Fatalf("want cause to be reachable through Unwrap")
	}
}

func TestKindOf(t *testing.T) {
	inner := New(KindSession, "login", WithMessage("Usuario bloqueado"))
	wrapped := fmt.Errorf("could not create client: %w", inner)

	if k := KindOf(wrapped); k != KindSession {
		t.Fatalf("want %q, got %q", KindSession, k)
	}
	if !IsKind(wrapped, KindSession) {
		t.Fatalf("want IsKind to match wrapped envelope")
	}
	if IsKind(nil, KindSession) {
		t.Fatalf("nil error must not match any kind")
	}
	if k := KindOf(os.ErrClosed); k != KindUnknown {
		t.Fatalf("want %q, got %q", KindUnknown, k)
	}
}

func TestMessageDefaultsToKind(t *testing.T) {
	err := New(KindData, "")
	if got := err.Error(); got != "data error" {
		t.Fatalf("want %q, got %q", "data error", got)
	}
}
