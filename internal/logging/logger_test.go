package logging

import (
	"log/slog"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected slog.Level
	}{
		{name: "debug", input: "debug", expected: slog.LevelDebug},
		{name: "info", input: "info", expected: slog.LevelInfo},
		{name: "warn", input: "warn", expected: slog.LevelWarn},
		{name: "warning alias", input: "warning", expected: slog.LevelWarn},
		{name: "error", input: "error", expected: slog.LevelError},
		{name: "uppercase", input: "DEBUG", expected: slog.LevelDebug},
		{name: "empty defaults to info", input: "", expected: slog.LevelInfo},
		{name: "garbage defaults to info", input: "loud", expected: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestGetLogger_SameInstancePerModule(t *testing.T) {
	a := GetLogger("testmodule")
	b := GetLogger("testmodule")
	if a != b {
		t.Error("GetLogger returned different instances for the same module")
	}
}

func TestModuleLevel_Overrides(t *testing.T) {
	config := Config{
		Level:   "info",
		Modules: map[string]string{"capture": "debug"},
	}

	if got := moduleLevel(config, "capture"); got != slog.LevelDebug {
		t.Errorf("module override level = %v, want debug", got)
	}
	if got := moduleLevel(config, "api"); got != slog.LevelInfo {
		t.Errorf("fallback level = %v, want info", got)
	}
}

func TestSetModuleLevel(t *testing.T) {
	GetLogger("levelmod")

	SetModuleLevel("levelmod", "error")
	mu.RLock()
	levelVar := moduleLevelVars["levelmod"]
	mu.RUnlock()
	if levelVar.Level() != slog.LevelError {
		t.Errorf("level after SetModuleLevel = %v, want error", levelVar.Level())
	}

	// Unknown module is a no-op, not a panic.
	SetModuleLevel("no-such-module", "debug")
}

func TestRingBuffer_Ordering(t *testing.T) {
	rb := NewRingBuffer(3)
	for i := 0; i < 5; i++ {
		rb.Write(LogEntry{
			Timestamp: time.Now(),
			Level:     "info",
			Message:   string(rune('a' + i)),
		})
	}

	entries := rb.ReadAll()
	if len(entries) != 3 {
		t.Fatalf("ReadAll returned %d entries, want 3", len(entries))
	}
	// Oldest two were evicted.
	for i, want := range []string{"c", "d", "e"} {
		if entries[i].Message != want {
			t.Errorf("entry %d = %q, want %q", i, entries[i].Message, want)
		}
	}
}

func TestRingBuffer_Empty(t *testing.T) {
	rb := NewRingBuffer(4)
	if rb.ReadAll() != nil {
		t.Error("ReadAll on empty buffer should return nil")
	}
	if rb.Count() != 0 {
		t.Errorf("Count = %d, want 0", rb.Count())
	}
}

func TestBufferHandler_CapturesModuleAndAttrs(t *testing.T) {
	rb := NewRingBuffer(8)
	levelVar := &slog.LevelVar{}
	handler := NewBufferHandler(rb, levelVar)

	logger := slog.New(handler).With("module", "capture")
	logger.Info("stream opened", "handle", 3)

	entries := rb.ReadAll()
	if len(entries) != 1 {
		t.Fatalf("buffer holds %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Module != "capture" {
		t.Errorf("module = %q, want capture", e.Module)
	}
	if e.Message != "stream opened" {
		t.Errorf("message = %q", e.Message)
	}
	if e.Attributes["handle"] != int64(3) {
		t.Errorf("handle attribute = %v (%T), want 3", e.Attributes["handle"], e.Attributes["handle"])
	}
	if e.Level != "info" {
		t.Errorf("level = %q, want info", e.Level)
	}
}

func TestBufferHandler_LevelFilter(t *testing.T) {
	rb := NewRingBuffer(8)
	levelVar := &slog.LevelVar{}
	levelVar.Set(slog.LevelWarn)
	handler := NewBufferHandler(rb, levelVar)

	logger := slog.New(handler)
	logger.Info("filtered")
	logger.Warn("kept")

	entries := rb.ReadAll()
	if len(entries) != 1 || entries[0].Message != "kept" {
		t.Errorf("unexpected entries: %+v", entries)
	}
}
