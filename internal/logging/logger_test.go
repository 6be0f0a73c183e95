package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"bogus":   zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewJSONWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := Component(New(Options{Format: "json", Output: &buf}), "extract")
	logger.Info().Str("sheet", "Sheet1").Msg("found")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["component"] != "extract" || entry["sheet"] != "Sheet1" || entry["message"] != "found" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestVerboseEnablesDebug(t *testing.T) {
	var buf bytes.Buffer
	quiet := New(Options{Format: "json", Output: &buf})
	quiet.Debug().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug should be filtered at info level: %q", buf.String())
	}

	verbose := New(Options{Format: "json", Output: &buf, Verbose: true})
	verbose.Debug().Msg("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("verbose logger should emit debug: %q", buf.String())
	}
}

func TestPrettyFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Output: &buf, NoColor: true})
	logger.Warn().Msg("careful")
	if !strings.Contains(buf.String(), "WRN") || !strings.Contains(buf.String(), "careful") {
		t.Errorf("unexpected console output: %q", buf.String())
	}
}
