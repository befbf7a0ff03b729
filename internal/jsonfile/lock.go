package jsonfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked is returned when another process holds the record file.
var ErrLocked = errors.New("record file is in use by another defectlog process")

// Lock is an exclusive lock on a record file, held on a sibling
// "<path>.lock" file. The OS releases it if the process dies.
type Lock struct {
	fl *flock.Flock
}

// LockPath returns the lock file guarding the record file at path.
func LockPath(path string) string {
	return path + ".lock"
}

// TryLock takes the lock for the record file at path without waiting.
func TryLock(path string) (*Lock, error) {
	lockPath := LockPath(path)
	if dir := filepath.Dir(lockPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create lock dir: %w", err)
		}
	}

	fl := flock.New(lockPath)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", lockPath, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, lockPath)
	}
	return &Lock{fl: fl}, nil
}

// Unlock releases the lock. The lock file itself stays.
func (l *Lock) Unlock() error {
	return l.fl.Unlock()
}
