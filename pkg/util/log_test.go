package util

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestSetLogLevel(t *testing.T) {
	if err := SetLogLevel("debug"); err != nil {
		t.Errorf("SetLogLevel(debug) returned error: %v", err)
	}
	if err := SetLogLevel("not-a-level"); err == nil {
		t.Error("expected error for invalid level")
	}
	SetLogLevel("info")
}

func TestWithDevice(t *testing.T) {
	var buf bytes.Buffer
	SetLogOutput(&buf)
	defer SetLogOutput(os.Stderr)

	WithDevice("192.168.1.1").Info("connected")

	out := buf.String()
	if !strings.Contains(out, "192.168.1.1") {
		t.Errorf("log output missing device field: %q", out)
	}
	if !strings.Contains(out, "connected") {
		t.Errorf("log output missing message: %q", out)
	}
}

func TestWithStep(t *testing.T) {
	var buf bytes.Buffer
	SetLogOutput(&buf)
	defer SetLogOutput(os.Stderr)

	WithStep("Commit").Warn("slow commit")

	if !strings.Contains(buf.String(), "Commit") {
		t.Errorf("log output missing step field: %q", buf.String())
	}
}
