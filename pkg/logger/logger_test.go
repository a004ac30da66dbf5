package logger

import (
	"context"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	l := Get()
	if l == nil {
		t.Fatal("logger is nil after initialization")
	}

	// Exercise the levels; output is not asserted.
	ctx := context.Background()
	l.Debug(ctx, "debug message", String("k", "v"))
	l.Info(ctx, "info message", Int("n", 1))
	l.Warn(ctx, "warn message", Bool("flag", true))
	l.Error(ctx, "error message", Error(nil))

	named := l.Named("store")
	if named == nil {
		t.Fatal("named logger is nil")
	}
}

func TestSetLevelString(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	for _, level := range []string{"debug", "info", "warn", "warning", "error", ""} {
		if err := SetLevelString(level); err != nil {
			t.Errorf("SetLevelString(%q) failed: %v", level, err)
		}
	}

	if err := SetLevelString("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}
