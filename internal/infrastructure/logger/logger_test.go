package logger

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/homematch/assistant-api/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw  string
		want zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"nonsense", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.raw); got != tt.want {
			t.Errorf("parseLevel(%q) = %s, want %s", tt.raw, got, tt.want)
		}
	}
}

func TestNewHonorsConfiguredLevel(t *testing.T) {
	cfg := &config.Config{
		ServiceName: "assistant-api",
		Environment: "production",
		LogLevel:    "error",
	}
	if got := New(cfg).GetLevel(); got != zerolog.ErrorLevel {
		t.Errorf("logger level = %s, want error", got)
	}
}
