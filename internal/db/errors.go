// Copyright (c) 2025 ToeiRei
// Keysafe - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when the addressed folder, item or credential
	// row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when attempting to insert a record that already exists.
	ErrDuplicate = errors.New("duplicate record")
	// ErrConstraint is returned when a write violates a foreign key or NOT NULL constraint.
	ErrConstraint = errors.New("constraint violation")
	// ErrVaultBusy is returned when another process holds the vault lock.
	ErrVaultBusy = errors.New("vault is in use by another process")
)

// StorageError reports a failed store operation. The vault is left in its
// prior consistent state; callers surface the error and do not retry.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// wrapErr turns a low-level error into a *StorageError for op.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &StorageError{Op: op, Err: ErrNotFound}
	}
	return &StorageError{Op: op, Err: MapDBError(err)}
}

// MapDBError inspects low-level driver errors and maps common constraint
// violations to package-level sentinel errors. This is a conservative,
// string-based mapping to avoid importing SQL driver packages here.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	le := strings.ToLower(err.Error())
	// MySQL duplicate entry, Postgres unique violation (23505), SQLite unique constraint
	if strings.Contains(le, "duplicate") || strings.Contains(le, "unique") || strings.Contains(le, "23505") || strings.Contains(le, "1062") {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	// Foreign key (Postgres 23503, MySQL 1452) and NOT NULL (Postgres 23502, MySQL 1048)
	if strings.Contains(le, "foreign key") || strings.Contains(le, "not null") || strings.Contains(le, "23503") ||
		strings.Contains(le, "23502") || strings.Contains(le, "1452") || strings.Contains(le, "1048") {
		return fmt.Errorf("%w: %v", ErrConstraint, err)
	}
	return err
}
