package util

import (
	"errors"
	"strings"
	"testing"
)

func TestValidationError_Single(t *testing.T) {
	err := NewValidationError("interface name is required")
	if !strings.Contains(err.Error(), "interface name is required") {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, ErrValidationFailed) {
		t.Error("ValidationError should unwrap to ErrValidationFailed")
	}
}

func TestValidationError_Multiple(t *testing.T) {
	err := NewValidationError("bad IP", "bad zone")
	msg := err.Error()
	if !strings.Contains(msg, "bad IP") || !strings.Contains(msg, "bad zone") {
		t.Errorf("Error() = %q, want both messages", msg)
	}
}

func TestValidationBuilder(t *testing.T) {
	var b ValidationBuilder
	b.Add(true, "should not appear")
	b.Add(false, "condition failed")
	b.AddErrorf("bad value: %d", 42)

	if !b.HasErrors() {
		t.Fatal("builder should have errors")
	}

	err := b.Build()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Build() returned %T, want *ValidationError", err)
	}
	if len(verr.Errors) != 2 {
		t.Errorf("got %d errors, want 2", len(verr.Errors))
	}
}

func TestValidationBuilder_Empty(t *testing.T) {
	var b ValidationBuilder
	if b.Build() != nil {
		t.Error("empty builder should build nil")
	}
}

func TestDeviceBusyError(t *testing.T) {
	err := &DeviceBusyError{Address: "192.168.1.1"}
	if !errors.Is(err, ErrDeviceBusy) {
		t.Error("DeviceBusyError should unwrap to ErrDeviceBusy")
	}
	if !strings.Contains(err.Error(), "192.168.1.1") {
		t.Errorf("Error() = %q, want address included", err.Error())
	}
}
