package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  slog.Level
	}{
		{"debug", "debug", slog.LevelDebug},
		{"info", "info", slog.LevelInfo},
		{"warn", "warn", slog.LevelWarn},
		{"error", "error", slog.LevelError},
		{"uppercase INFO", "INFO", slog.LevelInfo},
		{"padded", " debug ", slog.LevelDebug},
		{"unknown defaults to warn", "verbose", slog.LevelWarn},
		{"empty defaults to warn", "", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		logAtInfo bool
		logAtWarn bool
	}{
		{"warn filters info", "warn", false, true},
		{"info passes info", "info", true, true},
		{"error filters warn", "error", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(tt.level, &buf)

			logger.Info("info message")
			if got := strings.Contains(buf.String(), "info message"); got != tt.logAtInfo {
				t.Errorf("info message visible = %v, want %v (buf: %q)", got, tt.logAtInfo, buf.String())
			}

			buf.Reset()
			logger.Warn("warn message", "step", 42)
			if got := strings.Contains(buf.String(), "warn message"); got != tt.logAtWarn {
				t.Errorf("warn message visible = %v, want %v (buf: %q)", got, tt.logAtWarn, buf.String())
			}
			if tt.logAtWarn && !strings.Contains(buf.String(), "step=42") {
				t.Errorf("expected structured attribute in %q", buf.String())
			}
		})
	}
}
