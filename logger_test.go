package framebuffer

import (
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerDefaultIsSilent(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("Logger() = nil")
	}
	if l.Enabled(nil, slog.LevelError) {
		t.Error("default logger is enabled; should discard everything")
	}
}

func TestSetLogger(t *testing.T) {
	var sb strings.Builder
	custom := slog.New(slog.NewTextHandler(&sb, nil))

	SetLogger(custom)
	defer SetLogger(nil)

	Logger().Info("capture committed", "slot", 0)
	if !strings.Contains(sb.String(), "capture committed") {
		t.Error("custom logger did not receive the record")
	}
}

func TestSetLoggerNilRestoresSilence(t *testing.T) {
	SetLogger(slog.Default())
	SetLogger(nil)
	if Logger().Enabled(nil, slog.LevelError) {
		t.Error("SetLogger(nil) did not restore the silent logger")
	}
}
