package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: LevelWarn, Output: &buf, Prefix: "test"})

	log.Debug("debug message")
	log.Info("info message")
	log.Warn("warn message")
	log.Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Error("messages below level should be suppressed")
	}
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
		t.Error("messages at or above level should appear")
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: LevelDebug, Output: &buf}).
		WithComponent("action").
		WithField("track", "lead")

	log.Info("replayed")

	out := buf.String()
	if !strings.Contains(out, "component=action") {
		t.Errorf("missing component field: %s", out)
	}
	if !strings.Contains(out, "track=lead") {
		t.Errorf("missing custom field: %s", out)
	}
}

func TestFormatArgs(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: LevelDebug, Output: &buf})

	log.Info("applied %d patches", 3)

	if !strings.Contains(buf.String(), "applied 3 patches") {
		t.Errorf("format args not applied: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{"ERROR", LevelError},
		{"bogus", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDiscard(t *testing.T) {
	// Must not panic and must write nothing observable.
	log := Discard()
	log.Error("dropped")
}
