// Copyright (c) 2026 Keysafe Team
// Keysafe - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import "errors"

var (
	// ErrProtectedNode is returned when deleting a root folder.
	ErrProtectedNode = errors.New("root folders cannot be deleted")
	// ErrAuthMismatch is returned when the old credential given to a change
	// does not match the stored one.
	ErrAuthMismatch = errors.New("current master password is incorrect")
	// ErrConfirmationMismatch is returned when two entries of a new credential differ.
	ErrConfirmationMismatch = errors.New("passwords do not match")
	// ErrEmptyCredential is returned for an empty master credential.
	ErrEmptyCredential = errors.New("master password must not be empty")
	// ErrNoSelection is returned when saving without a loaded or created item.
	ErrNoSelection = errors.New("no item selected")
	// ErrSessionTerminated ends the session: verification was exhausted or a
	// mandatory prompt was cancelled. The vault must not be opened.
	ErrSessionTerminated = errors.New("session terminated")
	// ErrLocked is returned by vault operations issued before unlocking.
	ErrLocked = errors.New("vault is locked")
	// ErrInvalidState is returned for gate calls that do not apply to the
	// current state, e.g. Setup once a credential exists.
	ErrInvalidState = errors.New("operation not valid in current state")
	// ErrUnknownRequest is returned by Dispatch for a nil or foreign request.
	ErrUnknownRequest = errors.New("unknown request")
)
