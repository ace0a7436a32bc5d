package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLogger_CarriesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:     slog.LevelDebug,
		Component: ComponentReconcile,
		Handler:   slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})

	logger.Info("Duplicate removal applied", FieldRemoved, 2, FieldSkipped, 1)

	out := buf.String()
	for _, want := range []string{
		FieldComponent + "=" + ComponentReconcile,
		FieldRemoved + "=2",
		FieldSkipped + "=1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log line missing %q:\n%s", want, out)
		}
	}
}

func TestDefault(t *testing.T) {
	logger := Default(ComponentImport)
	if logger.Component() != ComponentImport {
		t.Errorf("component = %s, want %s", logger.Component(), ComponentImport)
	}
	if logger.Logger != slog.Default() {
		t.Error("Default must wrap the process-wide slog default")
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Component: ComponentApp,
		Handler:   slog.NewTextHandler(&buf, nil),
	})

	scoped := logger.WithComponent(ComponentStore)
	if scoped.Component() != ComponentStore {
		t.Errorf("component = %s, want %s", scoped.Component(), ComponentStore)
	}
}
