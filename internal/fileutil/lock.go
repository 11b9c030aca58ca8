package fileutil

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrLocked is returned by TryLock when another process holds the lock.
var ErrLocked = errors.New("lock held by another process")

// TryLock takes an exclusive advisory lock on path without blocking. The
// returned function releases it.
func TryLock(path string) (func() error, error) {
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrLocked)
	}
	return lock.Unlock, nil
}

// Lock takes an exclusive advisory lock on path, waiting for other holders.
func Lock(path string) (func() error, error) {
	lock := flock.New(path)
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	return lock.Unlock, nil
}
