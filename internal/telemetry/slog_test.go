package telemetry

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := parseLevel(tc.in); got != tc.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNewLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "json", "info")
	logger.Info("validation recorded", "outcome", "claimed")

	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("json logger produced no output")
	}
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(line), &obj); err != nil {
		t.Fatalf("output is not valid JSON: %v\noutput: %s", err, line)
	}
	if obj["msg"] != "validation recorded" {
		t.Errorf("msg = %v, want validation recorded", obj["msg"])
	}
	if obj["outcome"] != "claimed" {
		t.Errorf("outcome = %v, want claimed", obj["outcome"])
	}
}

func TestNewLogger_TextFallback(t *testing.T) {
	// Unrecognised formats get the text handler rather than an error.
	for _, format := range []string{"text", "", "yaml"} {
		var buf bytes.Buffer
		newLogger(&buf, format, "info").Info("hello")
		out := buf.String()
		if strings.HasPrefix(strings.TrimSpace(out), "{") {
			t.Errorf("format %q produced JSON output: %s", format, out)
		}
		if !strings.Contains(out, "msg=hello") {
			t.Errorf("format %q output missing message: %s", format, out)
		}
	}
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "json", "warn")

	logger.Info("suppressed")
	if buf.Len() != 0 {
		t.Errorf("info record emitted at warn level: %s", buf.String())
	}

	logger.Warn("emitted")
	if buf.Len() == 0 {
		t.Error("warn record not emitted at warn level")
	}
}

func TestSetupLogger_DoesNotPanicForAllCombinations(t *testing.T) {
	formats := []string{"json", "text", "JSON", "TEXT", "", "unknown"}
	levels := []string{"debug", "info", "warn", "warning", "error", "ERROR", "", "unknown"}

	for _, format := range formats {
		for _, level := range levels {
			t.Run(format+"/"+level, func(t *testing.T) {
				defer func() {
					if r := recover(); r != nil {
						t.Errorf("SetupLogger(%q, %q) panicked: %v", format, level, r)
					}
				}()
				SetupLogger(format, level)
			})
		}
	}
	// Restore a quiet default so other tests in this binary are unaffected.
	SetupLogger("text", "error")
}
