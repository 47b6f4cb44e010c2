// Copyright (c) 2026 Keysafe Team
// Keysafe - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/toeirei/keysafe/internal/i18n"
)

var (
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)
	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("60")).
			Padding(0, 1)
)

// Tea is a Prompter that runs a short bubbletea program per prompt.
type Tea struct {
	in  io.Reader
	out io.Writer
}

// NewTea returns a Tea prompter bound to the given terminal streams.
func NewTea(in io.Reader, out io.Writer) *Tea {
	return &Tea{in: in, out: out}
}

func (t *Tea) run(ctx context.Context, m tea.Model) (tea.Model, error) {
	p := tea.NewProgram(m,
		tea.WithInput(t.in),
		tea.WithOutput(t.out),
		tea.WithContext(ctx),
	)
	final, err := p.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil, ErrCancelled
		}
		return nil, fmt.Errorf("prompt: %w", err)
	}
	return final, nil
}

// Secret implements Prompter.
func (t *Tea) Secret(ctx context.Context, label string) (string, error) {
	return t.input(ctx, newInputModel(label, "", true))
}

// Input implements Prompter.
func (t *Tea) Input(ctx context.Context, label, initial string) (string, error) {
	return t.input(ctx, newInputModel(label, initial, false))
}

func (t *Tea) input(ctx context.Context, m inputModel) (string, error) {
	final, err := t.run(ctx, m)
	if err != nil {
		return "", err
	}
	res := final.(inputModel)
	if res.cancelled {
		return "", ErrCancelled
	}
	return res.input.Value(), nil
}

// Confirm implements Prompter.
func (t *Tea) Confirm(ctx context.Context, question string) (bool, error) {
	final, err := t.run(ctx, confirmModel{question: question})
	if err != nil {
		return false, err
	}
	res := final.(confirmModel)
	if res.cancelled {
		return false, ErrCancelled
	}
	return res.answer, nil
}

// Notify implements Prompter.
func (t *Tea) Notify(_ context.Context, msg string) {
	_, _ = fmt.Fprintln(t.out, noticeStyle.Render(msg))
}

// inputModel reads one line, masked when secret is set.
type inputModel struct {
	label     string
	input     textinput.Model
	done      bool
	cancelled bool
}

func newInputModel(label, initial string, secret bool) inputModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.SetValue(initial)
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	ti.Focus()
	return inputModel{label: label, input: ti}
}

func (m inputModel) Init() tea.Cmd { return textinput.Blink }

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyEsc, tea.KeyCtrlC, tea.KeyCtrlD:
			m.cancelled = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		labelStyle.Render(m.label),
		m.input.View(),
		hintStyle.Render(i18n.T("prompt.input_hint")),
	) + "\n"
}

// confirmModel answers a yes/no question with y/n or the arrow keys.
type confirmModel struct {
	question  string
	answer    bool
	done      bool
	cancelled bool
}

func (m confirmModel) Init() tea.Cmd { return nil }

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch k.Type {
	case tea.KeyEnter:
		m.done = true
		return m, tea.Quit
	case tea.KeyEsc, tea.KeyCtrlC, tea.KeyCtrlD:
		m.cancelled = true
		return m, tea.Quit
	case tea.KeyLeft, tea.KeyRight, tea.KeyTab:
		m.answer = !m.answer
		return m, nil
	}
	switch k.String() {
	case "y", "Y":
		m.answer, m.done = true, true
		return m, tea.Quit
	case "n", "N":
		m.answer, m.done = false, true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.done || m.cancelled {
		return ""
	}
	yes, no := i18n.T("prompt.yes"), i18n.T("prompt.no")
	btn := lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color("255")).Background(lipgloss.Color("239"))
	focused := btn.Background(lipgloss.Color("60"))
	if m.answer {
		yes = focused.Render(yes)
		no = btn.Render(no)
	} else {
		yes = btn.Render(yes)
		no = focused.Render(no)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		labelStyle.Render(m.question),
		lipgloss.JoinHorizontal(lipgloss.Center, yes, "  ", no),
	) + "\n"
}

var _ Prompter = (*Tea)(nil)
