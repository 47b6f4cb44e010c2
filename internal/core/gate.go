// Copyright (c) 2026 Keysafe Team
// Keysafe - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/toeirei/keysafe/internal/logging"
)

// DefaultMaxAttempts is the verification budget per session.
const DefaultMaxAttempts = 3

// State is the authentication state of a session.
type State int

const (
	Uninitialized State = iota
	AwaitingSetup
	Locked
	Unlocked
	Terminated
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case AwaitingSetup:
		return "awaiting-setup"
	case Locked:
		return "locked"
	case Unlocked:
		return "unlocked"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// VerifyResult is the outcome of one verification attempt.
type VerifyResult struct {
	Unlocked bool
	// Remaining is the number of attempts left after this one.
	Remaining int
}

// Gate is the master-credential state machine. It is not safe for concurrent
// use; Vault serializes access.
type Gate struct {
	store       CredentialStore
	maxAttempts int
	state       State
	remaining   int
}

// NewGate returns a Gate in the Uninitialized state. maxAttempts below 1
// selects DefaultMaxAttempts.
func NewGate(store CredentialStore, maxAttempts int) *Gate {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Gate{store: store, maxAttempts: maxAttempts, remaining: maxAttempts}
}

// State returns the current state.
func (g *Gate) State() State { return g.state }

// Remaining returns the verification attempts left.
func (g *Gate) Remaining() int { return g.remaining }

// Start inspects the store: without a credential the gate awaits setup,
// otherwise it is Locked. Start is a no-op once the session has moved past
// those states.
func (g *Gate) Start(ctx context.Context) (State, error) {
	switch g.state {
	case Unlocked, Terminated:
		return g.state, nil
	}
	n, err := g.store.CountMasterCredentials(ctx)
	if err != nil {
		return g.state, fmt.Errorf("check master credential: %w", err)
	}
	if n == 0 {
		g.state = AwaitingSetup
	} else {
		g.state = Locked
	}
	logging.Debugf("auth: session starts %s", g.state)
	return g.state, nil
}

// Setup stores the first master credential when both entries match. It
// never unlocks: on success the gate is Locked and the credential must be
// verified like on any later start. Mismatches are not limited.
func (g *Gate) Setup(ctx context.Context, pw1, pw2 string) error {
	if g.state != AwaitingSetup {
		return fmt.Errorf("setup in state %s: %w", g.state, ErrInvalidState)
	}
	if pw1 != pw2 {
		return ErrConfirmationMismatch
	}
	if pw1 == "" {
		return ErrEmptyCredential
	}
	if err := g.store.SetMasterCredential(ctx, pw1); err != nil {
		return err
	}
	g.state = Locked
	g.remaining = g.maxAttempts
	logging.Infof("auth: master password created")
	return nil
}

// Verify compares candidate with the stored credential. A match unlocks the
// session. A mismatch spends one attempt; spending the last one terminates
// the session and returns ErrSessionTerminated.
func (g *Gate) Verify(ctx context.Context, candidate string) (VerifyResult, error) {
	switch g.state {
	case Unlocked:
		return VerifyResult{Unlocked: true, Remaining: g.remaining}, nil
	case Terminated:
		return VerifyResult{}, ErrSessionTerminated
	case Locked:
	default:
		return VerifyResult{}, fmt.Errorf("verify in state %s: %w", g.state, ErrInvalidState)
	}

	stored, ok, err := g.store.GetMasterCredential(ctx)
	if err != nil {
		return VerifyResult{Remaining: g.remaining}, err
	}
	if !ok {
		// The credential vanished after Start; require a new setup.
		g.state = AwaitingSetup
		return VerifyResult{Remaining: g.remaining}, fmt.Errorf("master credential missing: %w", ErrInvalidState)
	}

	if equal(stored, candidate) {
		g.state = Unlocked
		logging.Infof("auth: vault unlocked")
		return VerifyResult{Unlocked: true, Remaining: g.remaining}, nil
	}

	g.remaining--
	logging.Warnf("auth: wrong master password, %d attempt(s) left", g.remaining)
	if g.remaining <= 0 {
		g.remaining = 0
		g.state = Terminated
		return VerifyResult{}, ErrSessionTerminated
	}
	return VerifyResult{Remaining: g.remaining}, nil
}

// Abandon terminates the session after a cancelled prompt. It does not
// count as a failed attempt.
func (g *Gate) Abandon() {
	if g.state != Unlocked {
		g.state = Terminated
	}
}

// ChangeCredential replaces the master credential after re-checking the old
// one. The session stays unlocked.
func (g *Gate) ChangeCredential(ctx context.Context, oldPw, new1, new2 string) error {
	if g.state != Unlocked {
		return ErrLocked
	}
	stored, ok, err := g.store.GetMasterCredential(ctx)
	if err != nil {
		return err
	}
	if !ok || !equal(stored, oldPw) {
		return ErrAuthMismatch
	}
	if new1 != new2 {
		return ErrConfirmationMismatch
	}
	if new1 == "" {
		return ErrEmptyCredential
	}
	if err := g.store.SetMasterCredential(ctx, new1); err != nil {
		return err
	}
	logging.Infof("auth: master password changed")
	return nil
}

func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
