// Copyright (c) 2026 Keysafe Team
// Keysafe - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package prompt models user prompts as blocking request/response calls.
// Tea renders them with bubbletea; Line reads plain lines and hides secrets
// with x/term when attached to a terminal.
package prompt

import (
	"context"
	"errors"
	"io"
	"os"

	"golang.org/x/term"
)

// ErrCancelled is returned when the user dismisses a prompt (Esc, Ctrl+C or
// end of input).
var ErrCancelled = errors.New("prompt cancelled")

// Prompter asks the user for input.
type Prompter interface {
	// Secret reads a value without echoing it.
	Secret(ctx context.Context, label string) (string, error)
	// Input reads a visible value, pre-filled with initial where supported.
	Input(ctx context.Context, label, initial string) (string, error)
	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, question string) (bool, error)
	// Notify shows an informational message.
	Notify(ctx context.Context, msg string)
}

// Styles accepted by New.
const (
	StyleTUI   = "tui"
	StylePlain = "plain"
)

// New returns the prompter for style. The TUI style needs a terminal on
// both ends and falls back to Line otherwise.
func New(style string, in *os.File, out io.Writer) Prompter {
	if style == StyleTUI && isTerminal(in) && isTerminalWriter(out) {
		return NewTea(in, out)
	}
	return NewLine(in, out)
}

func isTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}
