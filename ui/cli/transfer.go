// Copyright (c) 2026 Keysafe Team
// Keysafe - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/toeirei/keysafe/internal/backup"
	"github.com/toeirei/keysafe/internal/i18n"
	"github.com/toeirei/keysafe/internal/kdbx"
	"github.com/toeirei/keysafe/internal/prompt"
)

func (a *app) newBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup [output-file]",
		Short: "Back up the vault to a compressed file",
		Long: `Writes every folder, item and the master password to a zstd-compressed
JSON file. The file is not encrypted; keep it somewhere safe.
If no output file is given, a default name is generated
(e.g. keysafe-backup-2026-01-02.json.zst).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFile := backup.DefaultFileName(time.Now())
			if len(args) > 0 {
				outputFile = backup.NormalizePath(args[0])
			}

			s, err := a.unlockedSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			data, err := s.vault.Export(cmd.Context())
			if err != nil {
				return err
			}
			if err := backup.WriteFile(outputFile, data); err != nil {
				return fmt.Errorf("%s: %w", i18n.T("backup.failed"), err)
			}
			s.printf("%s\n", i18n.T("backup.success", outputFile, len(data.Folders), len(data.Items)))
			return nil
		},
	}
}

func (a *app) newRestoreCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "restore <backup-file>",
		Short: "Replace the vault with the contents of a backup",
		Long: `Restores a backup written by 'keysafe backup'. All current folders and
items are removed first. The master password of the backup replaces the
current one for the next session.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Validate the file before asking for anything.
			data, err := backup.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", i18n.T("restore.read_failed"), err)
			}

			s, err := a.unlockedSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			ctx := cmd.Context()

			if !yes {
				ok, err := s.prompt.Confirm(ctx, i18n.T("restore.confirm", len(data.Folders), len(data.Items)))
				if err != nil && !errors.Is(err, prompt.ErrCancelled) {
					return err
				}
				if !ok {
					s.printf("%s\n", i18n.T("cli.cancelled"))
					return nil
				}
			}
			if err := s.vault.Import(ctx, data); err != nil {
				return err
			}
			s.printf("%s\n", i18n.T("restore.success", len(data.Folders), len(data.Items)))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func (a *app) newExportKdbxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-kdbx <output-file>",
		Short: "Export the vault to a KeePass (KDBX 4) database",
		Long: `Writes the folder tree as KeePass groups and the items as entries. The
file is encrypted with a separate password that is asked for twice.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.unlockedSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			ctx := cmd.Context()

			pw1, err := s.prompt.Secret(ctx, i18n.T("kdbx.password_prompt"))
			if err != nil {
				return err
			}
			pw2, err := s.prompt.Secret(ctx, i18n.T("kdbx.password_confirm"))
			if err != nil {
				return err
			}
			if pw1 != pw2 {
				return errors.New(i18n.T("auth.setup_mismatch"))
			}

			data, err := s.vault.Export(ctx)
			if err != nil {
				return err
			}
			if err := kdbx.ExportFile(args[0], data, pw1); err != nil {
				if errors.Is(err, kdbx.ErrEmptyPassword) {
					return errors.New(i18n.T("auth.setup_empty"))
				}
				return fmt.Errorf("%s: %w", i18n.T("kdbx.failed"), err)
			}
			s.printf("%s\n", i18n.T("kdbx.success", args[0], len(data.Items)))
			return nil
		},
	}
}
