// Copyright (c) 2026 Keysafe Team
// Keysafe - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/toeirei/keysafe/internal/i18n"
	"golang.org/x/term"
)

// Line is a line-oriented Prompter. Secrets are read with echo disabled
// when the input is a terminal.
type Line struct {
	in     io.Reader
	fd     int
	isTerm bool
	r      *bufio.Reader
	out    io.Writer
}

// NewLine returns a Line prompter reading from in and writing to out.
func NewLine(in io.Reader, out io.Writer) *Line {
	l := &Line{in: in, r: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		l.fd = int(f.Fd())
		l.isTerm = true
	}
	return l
}

func (l *Line) readLine() (string, error) {
	s, err := l.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && s == "" {
			return "", ErrCancelled
		}
		if !errors.Is(err, io.EOF) {
			return "", err
		}
	}
	return strings.TrimRight(s, "\r\n"), nil
}

// Secret implements Prompter.
func (l *Line) Secret(ctx context.Context, label string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	_, _ = fmt.Fprint(l.out, label+" ")
	if l.isTerm {
		b, err := term.ReadPassword(l.fd)
		_, _ = fmt.Fprintln(l.out)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrCancelled, err)
		}
		return string(b), nil
	}
	return l.readLine()
}

// Input implements Prompter. An empty answer keeps initial.
func (l *Line) Input(ctx context.Context, label, initial string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if initial != "" {
		_, _ = fmt.Fprintf(l.out, "%s [%s] ", label, initial)
	} else {
		_, _ = fmt.Fprint(l.out, label+" ")
	}
	s, err := l.readLine()
	if err != nil {
		return "", err
	}
	if s == "" {
		return initial, nil
	}
	return s, nil
}

// Confirm implements Prompter. Anything but an explicit yes is a no.
func (l *Line) Confirm(ctx context.Context, question string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, _ = fmt.Fprintf(l.out, "%s %s ", question, i18n.T("prompt.yes_no"))
	s, err := l.readLine()
	if err != nil {
		return false, err
	}
	return IsYes(s), nil
}

// Notify implements Prompter.
func (l *Line) Notify(_ context.Context, msg string) {
	_, _ = fmt.Fprintln(l.out, msg)
}

// IsYes reports whether answer is an affirmative reply in English or the
// active language.
func IsYes(answer string) bool {
	a := strings.ToLower(strings.TrimSpace(answer))
	if a == "" {
		return false
	}
	switch a {
	case "y", "yes":
		return true
	}
	for _, w := range strings.Split(i18n.T("prompt.yes_words"), ",") {
		if a == strings.TrimSpace(w) {
			return true
		}
	}
	return false
}

var _ Prompter = (*Line)(nil)
