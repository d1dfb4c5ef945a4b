package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSetLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"nonsense", zerolog.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			SetLevel(tt.level)
			if got := zerolog.GlobalLevel(); got != tt.want {
				t.Errorf("GlobalLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSetOutput(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)
	SetLevel("info")

	var buf bytes.Buffer
	SetOutput(&buf)
	Info().Str("provider", "deepseek").Msg("conversion succeeded")

	out := buf.String()
	if !strings.Contains(out, `"provider":"deepseek"`) {
		t.Errorf("log output missing field: %s", out)
	}
	if !strings.Contains(out, `"message":"conversion succeeded"`) {
		t.Errorf("log output missing message: %s", out)
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "missing"},
		{"short", "****"},
		{"sk-1234567890abcdef", "sk-1...cdef"},
	}
	for _, tt := range tests {
		if got := MaskSecret(tt.in); got != tt.want {
			t.Errorf("MaskSecret(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSetFile(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)
	defer SetOutput(os.Stderr)
	SetLevel("error")

	path := filepath.Join(t.TempDir(), "logs", "wordsmith.log")
	closer, err := SetFile(path)
	if err != nil {
		t.Fatalf("SetFile() error = %v", err)
	}
	Error().Int("status", 401).Msg("conversion failed")
	Info().Msg("filtered out")
	closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"status":401`) {
		t.Errorf("log file missing entry: %s", data)
	}
	if strings.Contains(string(data), "filtered out") {
		t.Errorf("info entry written at error level: %s", data)
	}
}

func TestDefaultLogPath(t *testing.T) {
	if got := DefaultLogPath(); filepath.Base(got) != "wordsmith.log" {
		t.Errorf("DefaultLogPath() = %q", got)
	}
}
