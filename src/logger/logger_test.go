package logger

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"
)

func TestWithComponent(t *testing.T) {
	log := Logger()
	entry := log.WithComponent("test")
	if v, ok := entry.Entry.Data["component"]; !ok || v != "test" {
		t.Fatalf("component field missing: %v", entry.Entry.Data)
	}
}

func TestConfigureInvalidLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	log := Logger()
	if err := log.Configure("invalid", "json", "stdout", 0); err == nil {
		t.Fatalf("expected error for invalid level")
	}
}

func TestConfigureInvalidFormat(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	log := Logger()
	if err := log.Configure("info", "xml", "stdout", 0); err == nil {
		t.Fatalf("expected error for invalid format")
	}
}

func TestConfigureEnvOverridesLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")

	log := Logger()
	if err := log.Configure("warn", "text", "stdout", 0); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if log.GetLevel().String() != "debug" {
		t.Fatalf("level = %s, want debug", log.GetLevel())
	}
}

func TestConfigureFileOutput(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	log := Logger()
	path := filepath.Join(t.TempDir(), "crawler.log")
	if err := log.Configure("info", "json", path, 0); err != nil {
		t.Fatalf("configure: %v", err)
	}
}

func TestLogRunSummary(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	log := Logger()
	if err := log.Configure("info", "json", "stdout", 0); err != nil {
		t.Fatalf("configure: %v", err)
	}
	var buf bytes.Buffer
	log.SetOutput(&buf)

	LogRunSummary(log.WithComponent("crawler"), Fields{"accepted": 3}, 1500*time.Microsecond)

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if line["message"] != "run finished" {
		t.Errorf("message = %v", line["message"])
	}
	if line["duration_ms"] != 1.5 {
		t.Errorf("duration_ms = %v, want 1.5", line["duration_ms"])
	}
	if line["accepted"] != float64(3) {
		t.Errorf("accepted = %v, want 3", line["accepted"])
	}
}
