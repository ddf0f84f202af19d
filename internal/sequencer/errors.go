package sequencer

import "errors"

var (
	// ErrUnknownScript indicates the requested name is not in the registry.
	// Reported before any command runs.
	ErrUnknownScript = errors.New("unknown script")

	// ErrCyclicReference indicates a script references itself, directly or
	// transitively. Detected during expansion, before any command runs.
	ErrCyclicReference = errors.New("cyclic script reference")
)
