package output

import (
	"encoding/json"
	"io"

	"github.com/bgricker/devdrive/internal/report"
)

// JSONRenderer emits structured execution data.
type JSONRenderer struct {
	out io.Writer
}

// NewJSON creates a JSON renderer writing to out.
func NewJSON(out io.Writer) *JSONRenderer {
	return &JSONRenderer{out: out}
}

// Report captures the JSON output schema.
type Report struct {
	Manifest string              `json:"manifest,omitempty"`
	Scripts  []ScriptPlan        `json:"scripts,omitempty"`
	Steps    []report.StepResult `json:"steps,omitempty"`
	Summary  *report.Summary     `json:"summary,omitempty"`
}

// Render encodes the report as JSON.
func (j *JSONRenderer) Render(report Report) error {
	enc := json.NewEncoder(j.out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
