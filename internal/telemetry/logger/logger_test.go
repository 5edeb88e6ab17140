package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	l.Info("pool created", "class_count", 12)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["msg"] != "pool created" {
		t.Fatalf("msg = %v, want %q", entry["msg"], "pool created")
	}
	if entry["class_count"] != float64(12) {
		t.Fatalf("class_count = %v, want 12", entry["class_count"])
	}
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "text", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	l.Info("arena reset")
	if !strings.Contains(buf.String(), "arena reset") {
		t.Fatalf("output missing message: %q", buf.String())
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "warn", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	l.Debug("hidden")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below warn, got %q", buf.String())
	}

	l.Warn("visible")
	if buf.Len() == 0 {
		t.Fatal("warn entry was filtered")
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer SetLevel("info")

	SetLevel("error")
	if GetLevel() != "error" {
		t.Fatalf("GetLevel = %q, want error", GetLevel())
	}

	l.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected no info output at error level, got %q", buf.String())
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	l.With("resource", "slab").Info("allocated")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["resource"] != "slab" {
		t.Fatalf("resource = %v, want slab", entry["resource"])
	}
}

func TestParseLevel_Defaults(t *testing.T) {
	if got := parseLevel("bogus"); got != parseLevel("info") {
		t.Fatalf("unknown level should default to info, got %v", got)
	}
}
