package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoManifest indicates that no manifest file exists under the root.
// Callers fall back to the built-in Default registry.
var ErrNoManifest = errors.New("no manifest found")

// Candidate manifest file names, checked in order.
var candidates = []string{".devdrive.yml", ".devdrive.yaml", ".devdrive.toml"}

// Locate returns the manifest path under root. An explicit path, when given,
// is validated and wins over the default candidates.
func Locate(root, explicit string) (string, error) {
	if explicit != "" {
		return resolveExplicit(root, explicit)
	}
	for _, name := range candidates {
		path := filepath.Join(root, name)
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return "", fmt.Errorf("stat manifest %q: %w", path, err)
		}
		if info.IsDir() {
			return "", fmt.Errorf("manifest %q is a directory", path)
		}
		return path, nil
	}
	return "", ErrNoManifest
}

// Load locates and parses the manifest under root, falling back to the
// built-in defaults when no file exists.
func Load(root, explicit string) (*Registry, string, error) {
	path, err := Locate(root, explicit)
	if err != nil {
		if errors.Is(err, ErrNoManifest) {
			return Default(), "", nil
		}
		return nil, "", err
	}
	reg, err := Parse(path)
	if err != nil {
		return nil, "", err
	}
	return reg, path, nil
}

func resolveExplicit(root, input string) (string, error) {
	path := input
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("manifest %q not found", input)
		}
		return "", fmt.Errorf("stat manifest %q: %w", input, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("manifest %q is a directory", input)
	}
	return path, nil
}
