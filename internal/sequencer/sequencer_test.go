package sequencer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bgricker/devdrive/internal/manifest"
	"github.com/bgricker/devdrive/internal/report"
)

// fakeRunner records invocations and reports scripted exit codes.
type fakeRunner struct {
	exitCodes map[string]int
	calls     []string
}

func (f *fakeRunner) Run(ctx context.Context, command string, args []string) report.StepResult {
	line := strings.TrimSpace(command + " " + strings.Join(args, " "))
	f.calls = append(f.calls, line)

	code := f.exitCodes[line]
	status := report.StatusPassed
	if code != 0 {
		status = report.StatusFailed
	}
	return report.StepResult{Command: command, Args: args, Status: status, ExitCode: code}
}

func newTestSequencer(t *testing.T, scripts []manifest.Script, runner StepRunner) *Sequencer {
	t.Helper()
	reg, err := manifest.NewRegistry(scripts)
	if err != nil {
		t.Fatalf("build registry: %v", err)
	}
	return New(Options{Registry: reg, Runner: runner})
}

func TestExecuteZeroStepScript(t *testing.T) {
	fake := &fakeRunner{}
	seq := newTestSequencer(t, []manifest.Script{{Name: "noop"}}, fake)

	trace, err := seq.Execute(context.Background(), "noop")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if trace.Summary.ExitCode != 0 || trace.Summary.TotalSteps != 0 {
		t.Fatalf("expected synthetic success, got %+v", trace.Summary)
	}
	if len(fake.calls) != 0 {
		t.Fatalf("runner must not be invoked for a zero-step script, got %v", fake.calls)
	}
}

func TestExecuteStopsAtFirstFailure(t *testing.T) {
	fake := &fakeRunner{exitCodes: map[string]int{"step two": 9}}
	seq := newTestSequencer(t, []manifest.Script{{
		Name: "chain",
		Steps: []manifest.Step{
			{Run: "step one"},
			{Run: "step two"},
			{Run: "step three"},
		},
	}}, fake)

	trace, err := seq.Execute(context.Background(), "chain")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if len(fake.calls) != 2 {
		t.Fatalf("expected execution to stop after the failing step, got calls %v", fake.calls)
	}
	if trace.Summary.ExitCode != 9 {
		t.Fatalf("expected exit code 9 propagated, got %d", trace.Summary.ExitCode)
	}
	last := trace.Results[len(trace.Results)-1]
	if last.Status != report.StatusFailed || last.ExitCode != 9 {
		t.Fatalf("expected failing result as cause, got %+v", last)
	}
}

func TestExecuteUnknownScript(t *testing.T) {
	fake := &fakeRunner{}
	seq := newTestSequencer(t, []manifest.Script{{Name: "known"}}, fake)

	_, err := seq.Execute(context.Background(), "absent")
	if !errors.Is(err, ErrUnknownScript) {
		t.Fatalf("expected ErrUnknownScript, got %v", err)
	}
	if len(fake.calls) != 0 {
		t.Fatalf("runner must not run for an unknown script, got %v", fake.calls)
	}
}

func TestFlattenDetectsDirectCycle(t *testing.T) {
	fake := &fakeRunner{}
	seq := newTestSequencer(t, []manifest.Script{{
		Name:  "loop",
		Steps: []manifest.Step{{Script: "loop"}},
	}}, fake)

	_, err := seq.Execute(context.Background(), "loop")
	if !errors.Is(err, ErrCyclicReference) {
		t.Fatalf("expected ErrCyclicReference, got %v", err)
	}
	if len(fake.calls) != 0 {
		t.Fatalf("runner must not run before cycle detection, got %v", fake.calls)
	}
}

func TestFlattenDetectsTransitiveCycle(t *testing.T) {
	fake := &fakeRunner{}
	seq := newTestSequencer(t, []manifest.Script{
		{Name: "a", Steps: []manifest.Step{{Run: "echo a"}, {Script: "b"}}},
		{Name: "b", Steps: []manifest.Step{{Script: "c"}}},
		{Name: "c", Steps: []manifest.Step{{Script: "a"}}},
	}, fake)

	_, err := seq.Flatten("a")
	if !errors.Is(err, ErrCyclicReference) {
		t.Fatalf("expected ErrCyclicReference, got %v", err)
	}
	if !strings.Contains(err.Error(), "a -> b -> c -> a") {
		t.Fatalf("expected cycle path in error, got %v", err)
	}
}

func TestFlattenSharedReferenceIsNotACycle(t *testing.T) {
	// Two siblings referencing the same script is composition, not a cycle.
	fake := &fakeRunner{}
	seq := newTestSequencer(t, []manifest.Script{
		{Name: "common", Steps: []manifest.Step{{Run: "echo common"}}},
		{Name: "left", Steps: []manifest.Step{{Script: "common"}}},
		{Name: "right", Steps: []manifest.Step{{Script: "common"}}},
		{Name: "both", Steps: []manifest.Step{{Script: "left"}, {Script: "right"}}},
	}, fake)

	plan, err := seq.Flatten("both")
	if err != nil {
		t.Fatalf("flatten: %v", err)
	}
	if len(plan) != 2 {
		t.Fatalf("expected 2 flattened commands, got %d", len(plan))
	}
}

func TestFlattenDefaultComposites(t *testing.T) {
	seq := New(Options{Registry: manifest.Default()})

	for _, name := range []string{manifest.ScriptTests, manifest.ScriptApp} {
		plan, err := seq.Flatten(name)
		if err != nil {
			t.Fatalf("flatten %s: %v", name, err)
		}
		if len(plan) != 5 {
			t.Fatalf("expected %s to flatten to 5 commands, got %d", name, len(plan))
		}

		want := []string{
			"docker compose up -d",
			"sqlx migrate run",
			"", // payload differs per script
			"sqlx migrate revert",
			"docker compose down",
		}
		for i, run := range want {
			if run == "" {
				continue
			}
			if plan[i].Step.Run != run {
				t.Fatalf("%s command %d: expected %q, got %q", name, i, run, plan[i].Step.Run)
			}
		}
	}
}

func TestExecuteAppEndToEndSuccess(t *testing.T) {
	fake := &fakeRunner{}
	seq := New(Options{Registry: manifest.Default(), Runner: fake})

	trace, err := seq.Execute(context.Background(), manifest.ScriptApp)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if trace.Summary.ExitCode != 0 || trace.Summary.Passed != 5 {
		t.Fatalf("expected 5 passing steps, got %+v", trace.Summary)
	}

	wantOrder := []string{
		"docker compose up -d",
		"sqlx migrate run",
		"cargo run",
		"sqlx migrate revert",
		"docker compose down",
	}
	if len(fake.calls) != len(wantOrder) {
		t.Fatalf("expected %d calls, got %v", len(wantOrder), fake.calls)
	}
	for i, want := range wantOrder {
		if fake.calls[i] != want {
			t.Fatalf("call %d: expected %q, got %q", i, want, fake.calls[i])
		}
	}
}

func TestExecuteTestsPayloadFailureSkipsShutdown(t *testing.T) {
	fake := &fakeRunner{exitCodes: map[string]int{"cargo test": 1}}
	seq := New(Options{Registry: manifest.Default(), Runner: fake})

	trace, err := seq.Execute(context.Background(), manifest.ScriptTests)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	// Fail-fast without compensation: shutdown's steps never run.
	if len(trace.Results) != 3 {
		t.Fatalf("expected 3 results in trace, got %d", len(trace.Results))
	}
	if trace.Summary.ExitCode != 1 {
		t.Fatalf("expected payload exit code propagated, got %d", trace.Summary.ExitCode)
	}
	for _, call := range fake.calls {
		if strings.Contains(call, "revert") || strings.Contains(call, "down") {
			t.Fatalf("shutdown step %q must not run after payload failure", call)
		}
	}
}

func TestExecuteDryRunSkipsRunner(t *testing.T) {
	fake := &fakeRunner{}
	stderr := &bytes.Buffer{}
	seq := New(Options{Registry: manifest.Default(), Runner: fake, DryRun: true, Stderr: stderr})

	trace, err := seq.Execute(context.Background(), manifest.ScriptStart)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(fake.calls) != 0 {
		t.Fatalf("dry run must not invoke the runner, got %v", fake.calls)
	}
	if trace.Summary.Skipped != 2 {
		t.Fatalf("expected 2 skipped steps, got %+v", trace.Summary)
	}
	if !strings.Contains(stderr.String(), "+ docker compose up -d") {
		t.Fatalf("expected plan echoed to stderr, got %q", stderr.String())
	}
}
