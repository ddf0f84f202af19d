package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/bgricker/devdrive/internal/manifest"
	"github.com/bgricker/devdrive/internal/report"
	"github.com/bgricker/devdrive/internal/sequencer"
)

func TestRenderTrace(t *testing.T) {
	trace := sequencer.Trace{
		Script: "tests",
		Results: []report.StepResult{
			{Script: "start", StepName: "stack up", Status: report.StatusPassed, Duration: 1200 * time.Millisecond},
			{Script: "start", StepName: "migrate apply", Status: report.StatusPassed, Duration: 300 * time.Millisecond},
			{Script: "tests", StepName: "test suite", Status: report.StatusFailed, ExitCode: 101, Stderr: "assertion failed\nsee log"},
		},
		Summary: report.Summary{Script: "tests", TotalSteps: 5, Passed: 2, Failed: 1, Duration: 1500 * time.Millisecond},
	}

	buf := &bytes.Buffer{}
	if err := NewPretty(buf).RenderTrace(trace); err != nil {
		t.Fatalf("render: %v", err)
	}
	got := buf.String()

	for _, want := range []string{
		"Script tests",
		"✓ stack up (1.2s)",
		"✗ test suite",
		"exit code 101",
		"assertion failed",
		"SUMMARY: 2 passed, 1 failed, 0 skipped (1.5s)",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, got)
		}
	}
}

func TestRenderTraceLaunchFailure(t *testing.T) {
	trace := sequencer.Trace{
		Script: "start",
		Results: []report.StepResult{
			{Script: "start", StepName: "stack up", Status: report.StatusFailed, ExitCode: 127, LaunchFailure: true, Stderr: `exec: "docker": executable file not found in $PATH`},
		},
		Summary: report.Summary{Script: "start", TotalSteps: 2, Failed: 1, ExitCode: 127},
	}

	buf := &bytes.Buffer{}
	if err := NewPretty(buf).RenderTrace(trace); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "launch failure") {
		t.Fatalf("expected launch failure marker, got:\n%s", buf.String())
	}
}

func TestRenderList(t *testing.T) {
	plans := []ScriptPlan{
		{
			Name: "tests",
			Plan: []sequencer.Command{
				{Script: "start", Step: manifest.Step{Name: "stack up", Run: "docker compose up -d"}},
				{Script: "tests", Step: manifest.Step{Name: "test suite", Run: "cargo test"}},
			},
		},
	}

	buf := &bytes.Buffer{}
	if err := NewPretty(buf).RenderList(plans); err != nil {
		t.Fatalf("render: %v", err)
	}
	got := buf.String()

	if !strings.Contains(got, "Script tests") {
		t.Fatalf("expected script header, got:\n%s", got)
	}
	if !strings.Contains(got, "stack up (via start)") {
		t.Fatalf("expected inherited step origin, got:\n%s", got)
	}
	if strings.Contains(got, "test suite (via") {
		t.Fatalf("own steps must not carry an origin, got:\n%s", got)
	}
}
