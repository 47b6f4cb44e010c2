package core

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/toeirei/keysafe/internal/db"
	"github.com/toeirei/keysafe/internal/model"
	"github.com/toeirei/keysafe/internal/prompt"
)

var dsnSeq atomic.Int64

// newStore returns an initialized in-memory sqlite store private to t.
func newStore(t *testing.T) *db.BunStore {
	t.Helper()
	dsn := fmt.Sprintf("file:core_%d?mode=memory&cache=shared", dsnSeq.Add(1))
	s, err := db.NewStoreFromDSN("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Initialize(context.Background(), db.DefaultRootName))
	return s
}

func rootID(t *testing.T, s FolderStore) int {
	t.Helper()
	folders, err := s.ListFolders(context.Background())
	require.NoError(t, err)
	for _, f := range folders {
		if f.IsRoot() {
			return f.ID
		}
	}
	t.Fatalf("no root folder")
	return 0
}

// unlockedVault returns an opened vault with master password "P@ss1234",
// already verified.
func unlockedVault(t *testing.T) (*Vault, *db.BunStore) {
	t.Helper()
	ctx := context.Background()
	s := newStore(t)
	v := NewVault(s, Options{})
	_, err := v.Open(ctx)
	require.NoError(t, err)
	require.NoError(t, v.Setup(ctx, "P@ss1234", "P@ss1234"))
	res, err := v.Verify(ctx, "P@ss1234")
	require.NoError(t, err)
	require.True(t, res.Unlocked)
	return v, s
}

// scripted is a Prompter that replays canned answers.
type scripted struct {
	secrets  []string
	confirms []bool
	notes    []string
	asked    []string
}

func (p *scripted) Secret(_ context.Context, label string) (string, error) {
	p.asked = append(p.asked, label)
	if len(p.secrets) == 0 {
		return "", prompt.ErrCancelled
	}
	s := p.secrets[0]
	p.secrets = p.secrets[1:]
	return s, nil
}

func (p *scripted) Input(ctx context.Context, label, initial string) (string, error) {
	return p.Secret(ctx, label)
}

func (p *scripted) Confirm(_ context.Context, _ string) (bool, error) {
	if len(p.confirms) == 0 {
		return false, prompt.ErrCancelled
	}
	c := p.confirms[0]
	p.confirms = p.confirms[1:]
	return c, nil
}

func (p *scripted) Notify(_ context.Context, msg string) { p.notes = append(p.notes, msg) }

func confirmWith(answer bool, called *int) ConfirmFunc {
	return func(_ context.Context, _ model.Folder) (bool, error) {
		*called++
		return answer, nil
	}
}

// newStoreNoInit returns an empty in-memory store without tables.
func newStoreNoInit(t *testing.T) *db.BunStore {
	t.Helper()
	dsn := fmt.Sprintf("file:core_%d?mode=memory&cache=shared", dsnSeq.Add(1))
	s, err := db.NewStoreFromDSN("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}
