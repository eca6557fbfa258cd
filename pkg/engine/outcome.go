package engine

import "time"

// Step names the stages of the apply sequence, in canonical order.
type Step string

const (
	StepConnect             Step = "Connect"
	StepBackup              Step = "Backup"
	StepLoadInterfaceConfig Step = "LoadInterfaceConfig"
	StepConfigureIP         Step = "ConfigureIP"
	StepAssignZone          Step = "AssignZone"
	StepCreatePolicies      Step = "CreatePolicies"
	StepValidate            Step = "Validate"
	StepCommit              Step = "Commit"
)

// Sequence returns the canonical step order for a full configuration run.
func Sequence() []Step {
	return []Step{
		StepConnect,
		StepBackup,
		StepLoadInterfaceConfig,
		StepConfigureIP,
		StepAssignZone,
		StepCreatePolicies,
		StepValidate,
		StepCommit,
	}
}

// StepResult records one executed step.
type StepResult struct {
	Step     Step          `json:"step"`
	OK       bool          `json:"ok"`
	Detail   string        `json:"detail,omitempty"`
	Err      string        `json:"error,omitempty"`
	Commands []string      `json:"commands,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Outcome is the immutable result of one configuration attempt. The
// completed steps always form a strict prefix of the canonical sequence;
// FailedStep is set if and only if Success is false and the prefix is
// shorter than the full sequence.
type Outcome struct {
	Success    bool         `json:"success"`
	Message    string       `json:"message"`
	Steps      []StepResult `json:"steps"`
	FailedStep Step         `json:"failed_step,omitempty"`
	Commands   []string     `json:"commands,omitempty"`
	Simulated  bool         `json:"simulated"`
	DryRun     bool         `json:"dry_run,omitempty"`
	Timestamp  time.Time    `json:"timestamp"`
}

// CompletedSteps returns the names of the steps that succeeded, in order.
func (o *Outcome) CompletedSteps() []Step {
	var steps []Step
	for _, r := range o.Steps {
		if r.OK {
			steps = append(steps, r.Step)
		}
	}
	return steps
}
