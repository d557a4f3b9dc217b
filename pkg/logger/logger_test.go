package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		" DEBUG ": zerolog.DebugLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"loud":    zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_JSONWithService(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "warn", Output: &buf, Service: "shipping-api"})

	log.Info().Msg("dropped")
	log.Warn().Str("shipment_id", "shp-1").Msg("kept")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line above level, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("expected JSON output: %v", err)
	}
	if entry["service"] != "shipping-api" || entry["shipment_id"] != "shp-1" || entry["message"] != "kept" {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestSingleton(t *testing.T) {
	Reset()
	defer Reset()

	defer func() {
		if recover() == nil {
			t.Error("expected Get before Init to panic")
		}
	}()

	var buf bytes.Buffer
	Init(Options{Output: &buf})
	Init(Options{Output: &bytes.Buffer{}, Service: "ignored"})

	hub := Component("hub")
	hub.Info().Msg("hello")
	if !strings.Contains(buf.String(), `"component":"hub"`) {
		t.Errorf("expected first Init to win, got %q", buf.String())
	}

	Reset()
	Get()
}
