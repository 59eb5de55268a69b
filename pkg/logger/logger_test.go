package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_JSONIncludesService(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Output: &buf, Service: "bookings"})

	log.Info("hello", "room_id", "r1")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if record[SERVICE] != "bookings" {
		t.Errorf("expected service attr 'bookings', got %v", record[SERVICE])
	}
	if record["room_id"] != "r1" {
		t.Errorf("expected room_id attr 'r1', got %v", record["room_id"])
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	tests := []struct {
		level    string
		logDebug bool
		logWarn  bool
	}{
		{DEBUG, true, true},
		{INFO, false, true},
		{"", false, true},
		{ERROR, false, false},
		{"WARN", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(Config{Output: &buf, Level: tt.level, Format: TEXT})

			log.Debug("debug-line")
			log.Warn("warn-line")

			out := buf.String()
			if got := strings.Contains(out, "debug-line"); got != tt.logDebug {
				t.Errorf("debug logged = %v, want %v", got, tt.logDebug)
			}
			if got := strings.Contains(out, "warn-line"); got != tt.logWarn {
				t.Errorf("warn logged = %v, want %v", got, tt.logWarn)
			}
		})
	}
}

func TestWith_CarriesAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Output: &buf}).With("user_id", "u1")

	log.Info("child")

	if !strings.Contains(buf.String(), `"user_id":"u1"`) {
		t.Errorf("expected child logger to carry user_id, got %q", buf.String())
	}
}
