// Copyright (c) 2025 fpxbs7777

package cmdutil

import (
	"context"
	"log/slog"
	"testing"
)

func TestSetupLogging(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	ctx := context.Background()
	testcases := []struct {
		name     string
		flags    Flags
		debugLog bool
	}{
		{"stderr", Flags{}, false},
		{"stderr-debug", Flags{debug: true}, true},
		{"log-dir", Flags{logDir: t.TempDir()}, false},
		{"log-dir-debug", Flags{logDir: t.TempDir(), debug: true}, true},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			closer := tc.flags.SetupLogging()
			defer closer()

			logger := slog.Default()
			if !logger.Enabled(ctx, slog.LevelInfo) {
				t.Fatalf("want info logs enabled")
			}
			if got := logger.Enabled(ctx, slog.LevelDebug); got != tc.debugLog {
				t.Fatalf("want debug logs enabled %v, got %v", tc.debugLog, got)
			}
			slog.Debug("debug message from test")
			slog.Info("info message from test")
		})
	}
}
