package report

import "time"

// Step statuses recorded in a StepResult.
const (
	StatusPassed  = "passed"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// StepResult captures the outcome of a single executed command.
type StepResult struct {
	Script        string        `json:"script"`
	StepName      string        `json:"step_name"`
	Command       string        `json:"command"`
	Args          []string      `json:"args,omitempty"`
	Status        string        `json:"status"`
	Duration      time.Duration `json:"-"`
	DurationMS    int64         `json:"duration_ms"`
	Stdout        string        `json:"stdout,omitempty"`
	Stderr        string        `json:"stderr,omitempty"`
	ExitCode      int           `json:"exit_code"`
	LaunchFailure bool          `json:"launch_failure,omitempty"`
	DryRun        bool          `json:"dry_run"`
}

// Summary aggregates the results of one top-level script invocation.
type Summary struct {
	Script     string        `json:"script"`
	TotalSteps int           `json:"total_steps"`
	Passed     int           `json:"passed"`
	Failed     int           `json:"failed"`
	Skipped    int           `json:"skipped"`
	Duration   time.Duration `json:"-"`
	DurationMS int64         `json:"duration_ms"`
	ExitCode   int           `json:"exit_code"`
}
