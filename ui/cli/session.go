// Copyright (c) 2026 Keysafe Team
// Keysafe - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/toeirei/keysafe/internal/core"
	"github.com/toeirei/keysafe/internal/db"
	"github.com/toeirei/keysafe/internal/i18n"
	"github.com/toeirei/keysafe/internal/logging"
	"github.com/toeirei/keysafe/internal/model"
	"github.com/toeirei/keysafe/internal/prompt"
)

// session is one open vault plus the lock and prompter that go with it.
type session struct {
	store  *db.BunStore
	lock   *db.FileLock
	vault  *core.Vault
	prompt prompt.Prompter
	out    io.Writer
}

// openSession locks a file-backed vault, opens its store and starts the
// authentication gate. The vault is still locked afterwards.
func (a *app) openSession(cmd *cobra.Command) (*session, error) {
	ctx := cmd.Context()
	s := &session{out: cmd.OutOrStdout(), prompt: a.prompter(cmd)}

	if a.cfg.Database.Type == "sqlite" {
		if path, ok := db.SQLitePath(a.cfg.Database.Dsn); ok {
			lock, err := db.AcquireLock(path)
			if err != nil {
				return nil, err
			}
			s.lock = lock
		}
	}

	store, err := db.NewStoreFromDSN(a.cfg.Database.Type, a.cfg.Database.Dsn)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("open vault: %w", err)
	}
	s.store = store

	s.vault = core.NewVault(store, core.Options{
		RootName:      a.cfg.Vault.RootName,
		NewFolderName: a.cfg.Vault.NewFolderName,
		NewItemTitle:  a.cfg.Vault.NewItemTitle,
		MaxAttempts:   a.cfg.Vault.MaxAttempts,
	})
	state, err := s.vault.Open(ctx)
	if err != nil {
		s.Close()
		return nil, err
	}
	logging.Debugf("vault opened in state %s", state)
	return s, nil
}

// unlockedSession opens the vault and runs the authentication flow.
func (a *app) unlockedSession(cmd *cobra.Command) (*session, error) {
	s, err := a.openSession(cmd)
	if err != nil {
		return nil, err
	}
	if err := s.vault.Authenticate(cmd.Context(), s.prompt); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the store and the lock.
func (s *session) Close() {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			logging.Warnf("close store: %v", err)
		}
	}
	if err := s.lock.Release(); err != nil {
		logging.Warnf("release vault lock: %v", err)
	}
}

func (s *session) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}

// prompter picks the prompt implementation. Prompts are written to stderr
// so stdout stays clean for piping.
func (a *app) prompter(cmd *cobra.Command) prompt.Prompter {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok {
		return prompt.New(a.cfg.Prompt.Style, f, cmd.ErrOrStderr())
	}
	return prompt.NewLine(in, cmd.ErrOrStderr())
}

// confirmDelete asks before removing a folder unless skip is set.
func confirmDelete(p prompt.Prompter, skip bool) core.ConfirmFunc {
	if skip {
		return nil
	}
	return func(ctx context.Context, f model.Folder) (bool, error) {
		ok, err := p.Confirm(ctx, i18n.T("folder.delete_confirm", f.Name))
		if errors.Is(err, prompt.ErrCancelled) {
			return false, nil
		}
		return ok, err
	}
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, errors.New(i18n.T("cli.invalid_id", arg))
	}
	return id, nil
}
