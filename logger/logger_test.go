package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestJSONLogging(t *testing.T) {
	var buf bytes.Buffer

	log := NewWithWriter(Config{Level: "info", Format: "json", Version: "1.2.3"}, &buf)
	log.Info("test message", "room", "Cave", "hp", 7)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}
	if entry["msg"] != "test message" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["level"] != "INFO" {
		t.Errorf("level = %v", entry["level"])
	}
	if entry["app"] != "miniquest" || entry["version"] != "1.2.3" {
		t.Errorf("base attributes = %v, %v", entry["app"], entry["version"])
	}
	if entry["room"] != "Cave" || entry["hp"] != float64(7) {
		t.Errorf("attributes = %v", entry)
	}
}

func TestTextLogging(t *testing.T) {
	var buf bytes.Buffer

	log := NewWithWriter(Config{Level: "debug", Format: "text"}, &buf)
	log.Debug("event", "type", "player_moved")

	out := buf.String()
	if !strings.Contains(out, "msg=event") || !strings.Contains(out, "type=player_moved") {
		t.Errorf("output = %q", out)
	}
	if strings.Contains(out, "version=") {
		t.Errorf("empty version should be omitted: %q", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	log := NewWithWriter(Config{Level: "warn", Format: "text"}, &buf)
	log.Info("hidden")
	log.Warn("shown")

	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := (Config{Level: tt.in}).LogLevel(); got != tt.want {
			t.Errorf("LogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "miniquest.log")

	log, closer, err := New(Config{Level: "info", Format: "text", File: path})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	log.Info("hello")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if !strings.Contains(string(data), "msg=hello") {
		t.Errorf("log file = %q", data)
	}
}

func TestNew_Discard(t *testing.T) {
	log, closer, err := New(Config{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	log.Info("nowhere")
	if err := closer.Close(); err != nil {
		t.Errorf("Close = %v", err)
	}
}
