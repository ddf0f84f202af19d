package manifest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// document mirrors the manifest file schema. Option keys handled by the config
// package share the same file and are ignored here.
type document struct {
	Scripts map[string][]stepDocument `yaml:"scripts" toml:"scripts"`
}

type stepDocument struct {
	Name   string `yaml:"name" toml:"name"`
	Run    string `yaml:"run" toml:"run"`
	Script string `yaml:"script" toml:"script"`
}

// Parse reads the manifest at path and returns its scripts merged over the
// built-in defaults. User scripts replace defaults of the same name whole;
// steps are never merged across definitions.
func Parse(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest %q: %w", path, err)
	}
	defer f.Close()
	return decode(f, path)
}

func decode(r io.Reader, displayPath string) (*Registry, error) {
	var doc document
	switch strings.ToLower(filepath.Ext(displayPath)) {
	case ".toml":
		if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("parse manifest %q: %w", displayPath, err)
		}
	default:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("parse manifest %q: %w", displayPath, err)
		}
	}

	scripts, err := convertScripts(doc)
	if err != nil {
		return nil, fmt.Errorf("manifest %q: %w", displayPath, err)
	}
	return NewRegistry(mergeDefaults(scripts))
}

func convertScripts(doc document) ([]Script, error) {
	names := make([]string, 0, len(doc.Scripts))
	for name := range doc.Scripts {
		names = append(names, name)
	}
	sort.Strings(names)

	scripts := make([]Script, 0, len(names))
	for _, name := range names {
		sc := Script{Name: name}
		for idx, stepDoc := range doc.Scripts[name] {
			step := Step{
				Name:   strings.TrimSpace(stepDoc.Name),
				Run:    strings.TrimSpace(stepDoc.Run),
				Script: strings.TrimSpace(stepDoc.Script),
			}
			if err := validateStep(name, idx, step); err != nil {
				return nil, err
			}
			sc.Steps = append(sc.Steps, step)
		}
		scripts = append(scripts, sc)
	}
	return scripts, nil
}

func mergeDefaults(overrides []Script) []Script {
	overridden := make(map[string]struct{}, len(overrides))
	for _, sc := range overrides {
		overridden[sc.Name] = struct{}{}
	}
	merged := make([]Script, 0, len(overrides)+4)
	for _, sc := range defaultScripts() {
		if _, ok := overridden[sc.Name]; ok {
			continue
		}
		merged = append(merged, sc)
	}
	return append(merged, overrides...)
}
