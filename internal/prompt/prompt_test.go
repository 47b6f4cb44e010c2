package prompt

import (
	"bytes"
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLine_SecretInputConfirm(t *testing.T) {
	var out bytes.Buffer
	l := NewLine(strings.NewReader("s3cret\n\nnew value\nyes\nn\n"), &out)
	ctx := context.Background()

	pw, err := l.Secret(ctx, "Password:")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", pw)

	v, err := l.Input(ctx, "Title:", "keep")
	require.NoError(t, err)
	assert.Equal(t, "keep", v)

	v, err = l.Input(ctx, "Title:", "keep")
	require.NoError(t, err)
	assert.Equal(t, "new value", v)

	ok, err := l.Confirm(ctx, "Delete?")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l.Confirm(ctx, "Delete?")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = l.Secret(ctx, "Password:")
	assert.ErrorIs(t, err, ErrCancelled)

	l.Notify(ctx, "done")
	assert.Contains(t, out.String(), "Password:")
	assert.Contains(t, out.String(), "done")
}

func TestLine_LastLineWithoutNewline(t *testing.T) {
	l := NewLine(strings.NewReader("tail"), &bytes.Buffer{})
	v, err := l.Secret(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "tail", v)
}

func TestLine_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := NewLine(strings.NewReader("x\n"), &bytes.Buffer{})
	_, err := l.Secret(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsYes(t *testing.T) {
	for _, s := range []string{"y", "YES", " yes "} {
		assert.True(t, IsYes(s), s)
	}
	for _, s := range []string{"", "no", "nope", "n"} {
		assert.False(t, IsYes(s), s)
	}
}

func TestNew_FallsBackToLineWithoutTerminal(t *testing.T) {
	p := New(StyleTUI, nil, &bytes.Buffer{})
	_, ok := p.(*Line)
	assert.True(t, ok)
}

func typeRunes(m tea.Model, s string) tea.Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestInputModel_MasksAndSubmits(t *testing.T) {
	var m tea.Model = newInputModel("Master password", "", true)
	m = typeRunes(m, "hunter2")
	assert.NotContains(t, m.View(), "hunter2")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	im := m.(inputModel)
	assert.True(t, im.done)
	assert.Equal(t, "hunter2", im.input.Value())
}

func TestInputModel_Escape(t *testing.T) {
	var m tea.Model = newInputModel("x", "pre", false)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, m.(inputModel).cancelled)
}

func TestConfirmModel(t *testing.T) {
	var m tea.Model = confirmModel{question: "Delete?"}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'y'}})
	cm := m.(confirmModel)
	assert.True(t, cm.done)
	assert.True(t, cm.answer)

	m = confirmModel{question: "Delete?"}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.(confirmModel).answer)

	m = confirmModel{question: "Delete?"}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, m.(confirmModel).cancelled)
}
