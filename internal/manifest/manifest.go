package manifest

import (
	"fmt"
	"sort"
	"strings"
)

// Step is one unit of a Script. Exactly one of Run or Script is set: Run holds
// a literal command line, Script names another script to expand in place.
type Step struct {
	Name   string `json:"name,omitempty"`
	Run    string `json:"run,omitempty"`
	Script string `json:"script,omitempty"`
}

// Label returns the step's display name, falling back to its content.
func (s Step) Label() string {
	if s.Name != "" {
		return s.Name
	}
	if s.Run != "" {
		return s.Run
	}
	return "script " + s.Script
}

// Argv splits a literal command line into executable and arguments. Run lines
// are split on whitespace; there is no shell interpretation or quoting.
func (s Step) Argv() []string {
	return strings.Fields(s.Run)
}

// Script is a named, ordered sequence of steps. Scripts are defined once at
// load time and never mutated afterwards.
type Script struct {
	Name  string `json:"name"`
	Steps []Step `json:"steps"`
}

// Registry holds the loaded scripts. Read-only after construction.
type Registry struct {
	scripts map[string]Script
}

// NewRegistry builds a registry from the provided scripts. Duplicate names are
// rejected so a manifest cannot silently shadow one definition with another.
func NewRegistry(scripts []Script) (*Registry, error) {
	byName := make(map[string]Script, len(scripts))
	for _, sc := range scripts {
		if sc.Name == "" {
			return nil, fmt.Errorf("script with empty name")
		}
		if _, ok := byName[sc.Name]; ok {
			return nil, fmt.Errorf("duplicate script %q", sc.Name)
		}
		byName[sc.Name] = sc
	}
	return &Registry{scripts: byName}, nil
}

// Lookup returns the script registered under name.
func (r *Registry) Lookup(name string) (Script, bool) {
	sc, ok := r.scripts[name]
	return sc, ok
}

// Names returns all registered script names sorted lexicographically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.scripts))
	for name := range r.scripts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func validateStep(script string, idx int, step Step) error {
	hasRun := strings.TrimSpace(step.Run) != ""
	hasRef := strings.TrimSpace(step.Script) != ""
	switch {
	case hasRun && hasRef:
		return fmt.Errorf("script %q step %d: run and script are mutually exclusive", script, idx+1)
	case !hasRun && !hasRef:
		return fmt.Errorf("script %q step %d: requires run or script", script, idx+1)
	}
	return nil
}
