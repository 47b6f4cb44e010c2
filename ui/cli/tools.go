// Copyright (c) 2026 Keysafe Team
// Keysafe - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/toeirei/keysafe/internal/credential"
	"github.com/toeirei/keysafe/internal/db"
	"github.com/toeirei/keysafe/internal/i18n"
	"github.com/toeirei/keysafe/internal/logging"
)

func (a *app) newGenerateCmd() *cobra.Command {
	var length int
	var copyIt bool
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a random password",
		Long:  "Generates a password from letters, digits and !@#$%^&* and prints it with its strength.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if length <= 0 {
				length = a.cfg.Generator.Length
			}
			pw, err := credential.Generate(length)
			if err != nil {
				return err
			}
			score, band := credential.Evaluate(pw)
			out := cmd.OutOrStdout()
			if copyIt {
				if err := clipboardWrite(pw); err != nil {
					return fmt.Errorf("%s: %w", i18n.T("cli.clipboard_failed"), err)
				}
				_, _ = fmt.Fprintln(out, i18n.T("generate.copied"))
			} else {
				_, _ = fmt.Fprintln(out, pw)
			}
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), i18n.T("strength.result", score, strengthLabel(band)))
			return nil
		},
	}
	cmd.Flags().IntVarP(&length, "length", "l", 0, "Password length (default from config)")
	cmd.Flags().BoolVarP(&copyIt, "copy", "c", false, "Copy to the clipboard instead of printing")
	return cmd
}

func (a *app) newStrengthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strength [PASSWORD]",
		Short: "Rate a password",
		Long:  "Scores a password from 0 to 5. Without an argument the password is read without echo.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var pw string
			if len(args) == 1 {
				pw = args[0]
			} else {
				var err error
				pw, err = a.prompter(cmd).Secret(cmd.Context(), i18n.T("strength.prompt"))
				if err != nil {
					return err
				}
			}
			score, band := credential.Evaluate(pw)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), i18n.T("strength.result", score, strengthLabel(band)))
			return nil
		},
	}
}

func strengthLabel(s credential.Strength) string {
	return i18n.T("strength." + string(s))
}

func (a *app) newMaintenanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "maintenance",
		Short: "Run database maintenance (VACUUM/ANALYZE)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Authenticate first; maintenance runs on its own connection.
			s, err := a.unlockedSession(cmd)
			if err != nil {
				return err
			}
			dbType := s.store.Type()
			_ = s.store.Close()
			s.store = nil
			defer s.Close()

			logging.Infof("running maintenance on %s database", dbType)
			if err := db.RunMaintenance(cmd.Context(), dbType, a.cfg.Database.Dsn); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), i18n.T("maintenance.success"))
			return nil
		},
	}
}
