// Copyright (c) 2026 Keysafe Team
// Keysafe - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"fmt"

	"github.com/gofrs/flock"
)

// FileLock is an exclusive advisory lock on `<vault file>.lock`. It keeps a
// file-backed vault single-writer across processes.
type FileLock struct {
	fl *flock.Flock
}

// AcquireLock takes the lock for the vault file at path without blocking.
// ErrVaultBusy is returned when another process holds it.
func AcquireLock(path string) (*FileLock, error) {
	lockPath := path + ".lock"
	fl := flock.New(lockPath)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", lockPath, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (%s)", ErrVaultBusy, lockPath)
	}
	dbLogf("db: acquired vault lock %s", lockPath)
	return &FileLock{fl: fl}, nil
}

// Path returns the lock file path.
func (l *FileLock) Path() string { return l.fl.Path() }

// Release unlocks. It is safe to call on a nil lock.
func (l *FileLock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
