// Copyright (c) 2026 Keysafe Team
// Keysafe - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/toeirei/keysafe/internal/i18n"
	"github.com/toeirei/keysafe/internal/prompt"
)

// Authenticate drives a gate from start to Unlocked with the given
// prompter: first-run setup (repeated until both entries match), then
// verification with the gate's attempt budget.
//
// It returns nil once unlocked. Exhausted attempts and cancelled prompts
// return an error matching ErrSessionTerminated; a cancellation also matches
// prompt.ErrCancelled. Callers must not open the vault after such an error.
func Authenticate(ctx context.Context, g *Gate, p prompt.Prompter) error {
	state, err := g.Start(ctx)
	if err != nil {
		return err
	}

	if state == AwaitingSetup {
		if err := runSetup(ctx, g, p); err != nil {
			return err
		}
	}

	for g.State() == Locked {
		pw, err := p.Secret(ctx, i18n.T("auth.verify_prompt"))
		if err != nil {
			return abandon(g, err)
		}
		res, err := g.Verify(ctx, pw)
		switch {
		case errors.Is(err, ErrSessionTerminated):
			p.Notify(ctx, i18n.T("auth.terminated"))
			return err
		case err != nil:
			return err
		case !res.Unlocked:
			p.Notify(ctx, i18n.T("auth.wrong_password", res.Remaining))
		}
	}

	if g.State() != Unlocked {
		return fmt.Errorf("authentication ended in state %s: %w", g.State(), ErrSessionTerminated)
	}
	return nil
}

func runSetup(ctx context.Context, g *Gate, p prompt.Prompter) error {
	p.Notify(ctx, i18n.T("auth.setup_intro"))
	for {
		pw1, err := p.Secret(ctx, i18n.T("auth.setup_prompt"))
		if err != nil {
			return abandon(g, err)
		}
		pw2, err := p.Secret(ctx, i18n.T("auth.setup_confirm"))
		if err != nil {
			return abandon(g, err)
		}
		err = g.Setup(ctx, pw1, pw2)
		switch {
		case err == nil:
			p.Notify(ctx, i18n.T("auth.setup_done"))
			return nil
		case errors.Is(err, ErrConfirmationMismatch):
			p.Notify(ctx, i18n.T("auth.setup_mismatch"))
		case errors.Is(err, ErrEmptyCredential):
			p.Notify(ctx, i18n.T("auth.setup_empty"))
		default:
			return err
		}
	}
}

// abandon terminates the session for a failed prompt. Errors other than a
// cancellation (e.g. a closed terminal) also end the session.
func abandon(g *Gate, err error) error {
	g.Abandon()
	return fmt.Errorf("%w: %w", ErrSessionTerminated, err)
}
