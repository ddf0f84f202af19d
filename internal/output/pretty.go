package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bgricker/devdrive/internal/report"
	"github.com/bgricker/devdrive/internal/sequencer"
)

// PrettyRenderer renders execution results in a human-friendly format.
type PrettyRenderer struct {
	out io.Writer
}

// NewPretty creates a PrettyRenderer writing to the provided writer.
func NewPretty(out io.Writer) *PrettyRenderer {
	return &PrettyRenderer{out: out}
}

// RenderList renders each script with its flattened command plan.
func (p *PrettyRenderer) RenderList(scripts []ScriptPlan) error {
	for _, sc := range scripts {
		if _, err := fmt.Fprintf(p.out, "Script %s\n", sc.Name); err != nil {
			return err
		}
		for _, command := range sc.Plan {
			label := command.Step.Label()
			origin := ""
			if command.Script != sc.Name {
				origin = fmt.Sprintf(" (via %s)", command.Script)
			}
			if _, err := fmt.Fprintf(p.out, "  • %s%s\n", label, origin); err != nil {
				return err
			}
		}
	}
	return nil
}

// RenderTrace shows execution outcomes for one invocation with a summary.
func (p *PrettyRenderer) RenderTrace(trace sequencer.Trace) error {
	if _, err := fmt.Fprintf(p.out, "Script %s\n", trace.Script); err != nil {
		return err
	}

	for _, res := range trace.Results {
		glyph := statusGlyph(res.Status)
		if _, err := fmt.Fprintf(p.out, "  %s %s (%s)\n", glyph, res.StepName, formatDuration(res.Duration)); err != nil {
			return err
		}
		if res.Status == report.StatusFailed {
			kind := fmt.Sprintf("exit code %d", res.ExitCode)
			if res.LaunchFailure {
				kind = "launch failure"
			}
			if _, err := fmt.Fprintf(p.out, "    %s\n", kind); err != nil {
				return err
			}
			if res.Stderr != "" {
				if _, err := fmt.Fprintf(p.out, "    stderr:\n%s\n", indent(res.Stderr, "      ")); err != nil {
					return err
				}
			}
		}
		if res.DryRun {
			if _, err := fmt.Fprintf(p.out, "    command: %s %s\n", res.Command, strings.Join(res.Args, " ")); err != nil {
				return err
			}
		}
	}

	s := trace.Summary
	_, err := fmt.Fprintf(p.out, "SUMMARY: %d passed, %d failed, %d skipped (%s)\n",
		s.Passed, s.Failed, s.Skipped, formatDuration(s.Duration))
	return err
}

// ScriptPlan pairs a script name with its flattened commands for listing.
type ScriptPlan struct {
	Name string              `json:"name"`
	Plan []sequencer.Command `json:"plan"`
}

func statusGlyph(status string) string {
	switch status {
	case report.StatusPassed:
		return "✓"
	case report.StatusFailed:
		return "✗"
	case report.StatusSkipped:
		return "-"
	default:
		return "?"
	}
}

func indent(s, pad string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = pad + lines[i]
	}
	return strings.Join(lines, "\n")
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Truncate(time.Millisecond).String()
}
