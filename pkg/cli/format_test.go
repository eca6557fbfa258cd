package cli

import (
	"strings"
	"testing"

	"github.com/srxwire-net/srxwire/pkg/engine"
)

func TestDotPad(t *testing.T) {
	got := DotPad("Commit", 12)
	if !strings.HasPrefix(got, "Commit ") {
		t.Errorf("DotPad = %q", got)
	}
	if len(got) != 12 {
		t.Errorf("len = %d, want 12", len(got))
	}

	// Names at or past the width are returned unchanged.
	if got := DotPad("LoadInterfaceConfig", 10); got != "LoadInterfaceConfig" {
		t.Errorf("DotPad long name = %q", got)
	}
	if got := DotPad("x", 0); got != "x" {
		t.Errorf("DotPad zero width = %q", got)
	}
}

func TestStepLine(t *testing.T) {
	ok := StepLine(engine.StepResult{Step: engine.StepConnect, OK: true})
	if !strings.Contains(ok, "Connect") || !strings.Contains(ok, "ok") {
		t.Errorf("StepLine ok = %q", ok)
	}

	failed := StepLine(engine.StepResult{Step: engine.StepCommit, OK: false, Err: "rejected"})
	if !strings.Contains(failed, "failed") || !strings.Contains(failed, "rejected") {
		t.Errorf("StepLine failed = %q", failed)
	}
}

func TestOutcomeSummary(t *testing.T) {
	good := OutcomeSummary(&engine.Outcome{Success: true, Message: "configuration applied successfully"})
	if !strings.Contains(good, "configuration applied successfully") {
		t.Errorf("OutcomeSummary = %q", good)
	}
}
