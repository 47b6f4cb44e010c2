// Copyright (c) 2026 Keysafe Team
// Keysafe - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/toeirei/keysafe/internal/core"
	"github.com/toeirei/keysafe/internal/i18n"
)

func (a *app) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the vault and choose the master password",
		Long: `Creates the database tables and the root folder, then asks for the
master password twice. The new password is verified once before the
command reports success.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			if s.vault.State() != core.AwaitingSetup {
				s.printf("%s\n", i18n.T("init.already"))
				return nil
			}
			if err := s.vault.Authenticate(cmd.Context(), s.prompt); err != nil {
				return err
			}
			s.printf("%s\n", i18n.T("init.success"))
			return nil
		},
	}
}

func (a *app) newPasswdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "passwd",
		Short: "Change the master password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.unlockedSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			ctx := cmd.Context()

			oldPw, err := s.prompt.Secret(ctx, i18n.T("passwd.current"))
			if err != nil {
				return err
			}
			new1, err := s.prompt.Secret(ctx, i18n.T("passwd.new"))
			if err != nil {
				return err
			}
			new2, err := s.prompt.Secret(ctx, i18n.T("passwd.confirm"))
			if err != nil {
				return err
			}

			err = s.vault.ChangeCredential(ctx, oldPw, new1, new2)
			switch {
			case err == nil:
				s.printf("%s\n", i18n.T("passwd.success"))
				return nil
			case errors.Is(err, core.ErrAuthMismatch):
				return errors.New(i18n.T("passwd.wrong_current"))
			case errors.Is(err, core.ErrConfirmationMismatch):
				return errors.New(i18n.T("auth.setup_mismatch"))
			case errors.Is(err, core.ErrEmptyCredential):
				return errors.New(i18n.T("auth.setup_empty"))
			default:
				return err
			}
		},
	}
}
