package applog

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestInfof_NoDoubleFormattingWithPercent(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	SetLogLevel("info")

	msg := "[refresh] inserted 172 breeds (100.0% of payload)"
	Infof(msg)

	out := buf.String()
	if !strings.Contains(out, "(100.0% of payload)") {
		t.Fatalf("log output missing expected percent segment: %s", out)
	}
	if strings.Contains(out, "%!o(MISSING)") || strings.Contains(out, "%!(NOVERB)") {
		t.Fatalf("log output shows fmt artifact: %s", out)
	}
}

func TestSetLogLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	defer SetLogLevel("info")

	SetLogLevel("warn")
	Infof("hidden")
	Warnf("shown %d", 1)
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line leaked at warn level: %s", out)
	}
	if !strings.Contains(out, "shown 1") || !strings.Contains(out, "WARN") {
		t.Fatalf("warn line missing: %s", out)
	}

	SetLogLevel("bogus")
	if GetLogLevel() != LevelWarn {
		t.Fatalf("unknown level name must not change level, got %v", GetLogLevel())
	}
	SetLogLevel("DEBUG")
	if GetLogLevel() != LevelDebug {
		t.Fatalf("expected debug level, got %v", GetLogLevel())
	}
}
