package sequencer

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/bgricker/devdrive/internal/manifest"
	"github.com/bgricker/devdrive/internal/report"
)

// StepRunner executes one literal command and reports its outcome.
type StepRunner interface {
	Run(ctx context.Context, command string, args []string) report.StepResult
}

// Command is one flattened literal step together with the script that
// contributed it.
type Command struct {
	Script string        `json:"script"`
	Step   manifest.Step `json:"step"`
}

// Trace is the Run Context of one top-level invocation: the ordered record of
// every step executed before the script completed or aborted.
type Trace struct {
	Script  string
	Results []report.StepResult
	Summary report.Summary
}

// Options configure a Sequencer.
type Options struct {
	Registry *manifest.Registry
	Runner   StepRunner
	DryRun   bool
	Stderr   io.Writer
	Logger   *logrus.Logger
}

// Sequencer resolves named scripts into flat command lists and executes them
// strictly in order with fail-fast semantics.
type Sequencer struct {
	opts Options
}

// New creates a sequencer over the supplied registry and runner.
func New(opts Options) *Sequencer {
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}
	if opts.Logger == nil {
		opts.Logger = logrus.New()
		opts.Logger.SetOutput(io.Discard)
	}
	return &Sequencer{opts: opts}
}

// Flatten resolves name into its ordered list of literal commands, expanding
// script references depth-first. It fails with ErrUnknownScript for absent
// names and ErrCyclicReference when a name reappears on the expansion path.
func (s *Sequencer) Flatten(name string) ([]Command, error) {
	return s.expand(name, nil)
}

func (s *Sequencer) expand(name string, path []string) ([]Command, error) {
	for _, ancestor := range path {
		if ancestor == name {
			cycle := append(append([]string{}, path...), name)
			return nil, fmt.Errorf("%w: %s", ErrCyclicReference, strings.Join(cycle, " -> "))
		}
	}

	script, ok := s.opts.Registry.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScript, name)
	}

	path = append(path, name)
	commands := make([]Command, 0, len(script.Steps))
	for _, step := range script.Steps {
		if step.Script != "" {
			nested, err := s.expand(step.Script, path)
			if err != nil {
				return nil, err
			}
			commands = append(commands, nested...)
			continue
		}
		commands = append(commands, Command{Script: name, Step: step})
	}
	return commands, nil
}

// Execute runs the named script. Commands run one at a time, in order; the
// first nonzero exit aborts the remaining steps and becomes the trace's exit
// code. Step failures live in the trace, not the error: Execute returns an
// error only for resolution problems (unknown script, cyclic reference).
//
// Execute never compensates on failure. When a payload step inside a
// composite script fails, the enclosing script's remaining steps, including
// any shutdown reference, are deliberately left unexecuted so the operator
// can inspect the environment before tearing it down by hand.
func (s *Sequencer) Execute(ctx context.Context, name string) (Trace, error) {
	commands, err := s.Flatten(name)
	if err != nil {
		return Trace{}, err
	}

	trace := Trace{
		Script:  name,
		Results: make([]report.StepResult, 0, len(commands)),
		Summary: report.Summary{Script: name, TotalSteps: len(commands)},
	}

	for _, command := range commands {
		argv := command.Step.Argv()

		if s.opts.DryRun {
			fmt.Fprintln(s.opts.Stderr, "+ "+command.Step.Run)
			result := report.StepResult{
				Script:   command.Script,
				StepName: command.Step.Label(),
				Command:  argv[0],
				Args:     argv[1:],
				Status:   report.StatusSkipped,
				DryRun:   true,
			}
			trace.Results = append(trace.Results, result)
			trace.Summary.Skipped++
			continue
		}

		s.opts.Logger.WithFields(logrus.Fields{
			"script": command.Script,
			"step":   command.Step.Label(),
		}).Debug("running step")

		result := s.opts.Runner.Run(ctx, argv[0], argv[1:])
		result.Script = command.Script
		result.StepName = command.Step.Label()
		trace.Results = append(trace.Results, result)
		trace.Summary.Duration += result.Duration

		if result.ExitCode != 0 {
			trace.Summary.Failed++
			trace.Summary.ExitCode = result.ExitCode
			s.opts.Logger.WithFields(logrus.Fields{
				"script":    command.Script,
				"step":      command.Step.Label(),
				"exit_code": result.ExitCode,
			}).Error("step failed, aborting remaining steps")
			break
		}
		trace.Summary.Passed++
	}

	trace.Summary.DurationMS = trace.Summary.Duration.Milliseconds()
	return trace, nil
}
