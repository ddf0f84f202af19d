package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// FileName is the lock file created under the project root for the duration
// of one top-level script invocation.
const FileName = ".devdrive.lock"

// ErrHeld indicates another invocation currently holds the lock.
var ErrHeld = errors.New("another invocation is running")

// Lock serialises top-level script invocations for one project root. The
// external container stack and database schema are shared mutable state, so
// two concurrent invocations could corrupt them.
type Lock struct {
	path string
	log  *logrus.Logger
}

// Acquire takes the invocation lock under root. A held lock fails immediately
// with ErrHeld and the recorded owner pid; devdrive never waits.
func Acquire(root string, log *logrus.Logger) (*Lock, error) {
	path := filepath.Join(root, FileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			owner := ownerPid(path)
			return nil, fmt.Errorf("%w: %s held by pid %s (remove the file if that process is gone)", ErrHeld, path, owner)
		}
		return nil, fmt.Errorf("acquire lock %q: %w", path, err)
	}
	fmt.Fprintf(f, "%d\n", os.Getpid())
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("write lock %q: %w", path, err)
	}
	log.WithField("path", path).Debug("acquired invocation lock")
	return &Lock{path: path, log: log}, nil
}

// Release removes the lock file.
func (l *Lock) Release() error {
	l.log.WithField("path", l.path).Debug("released invocation lock")
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("release lock %q: %w", l.path, err)
	}
	return nil
}

func ownerPid(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return "unknown"
	}
	pid := strings.TrimSpace(string(data))
	if pid == "" {
		return "unknown"
	}
	return pid
}
