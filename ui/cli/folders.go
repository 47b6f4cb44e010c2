// Copyright (c) 2026 Keysafe Team
// Keysafe - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"github.com/toeirei/keysafe/internal/core"
	"github.com/toeirei/keysafe/internal/i18n"
)

func (a *app) newFolderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "folder",
		Aliases: []string{"folders"},
		Short:   "Manage the folder tree",
	}
	cmd.AddCommand(a.newFolderTreeCmd(), a.newFolderAddCmd(), a.newFolderRenameCmd(), a.newFolderDeleteCmd())
	return cmd
}

func (a *app) newFolderTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Print the folder tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.unlockedSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			forest, err := s.vault.Tree(cmd.Context())
			if err != nil {
				return err
			}
			forest.Walk(func(n *core.Node, depth int) {
				s.printf("%s%s\n", strings.Repeat("  ", depth), n.Folder.String())
			})
			if len(forest.Orphans) > 0 {
				s.printf("%s\n", i18n.T("folder.orphans", len(forest.Orphans)))
				for _, o := range forest.Orphans {
					s.printf("  %s\n", o.String())
				}
			}
			return nil
		},
	}
}

func (a *app) newFolderAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add PARENT_ID [NAME]",
		Short: "Add a subfolder",
		Long:  "Adds a subfolder under PARENT_ID. Without NAME the configured default name is used.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			parentID, err := parseID(args[0])
			if err != nil {
				return err
			}
			name := ""
			if len(args) == 2 {
				name = args[1]
			}

			s, err := a.unlockedSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			f, err := s.vault.AddSubfolder(cmd.Context(), parentID, name)
			if err != nil {
				return err
			}
			s.printf("%s\n", i18n.T("folder.added", f.Name, f.ID))
			return nil
		},
	}
}

func (a *app) newFolderRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename ID NAME",
		Short: "Rename a folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			s, err := a.unlockedSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			changed, err := s.vault.RenameFolder(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			if !changed {
				s.printf("%s\n", i18n.T("folder.rename_unchanged"))
				return nil
			}
			s.printf("%s\n", i18n.T("folder.renamed", id, args[1]))
			return nil
		},
	}
}

func (a *app) newFolderDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a folder and the items directly inside it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			s, err := a.unlockedSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			deleted, err := s.vault.DeleteFolder(cmd.Context(), id, confirmDelete(s.prompt, yes))
			if errors.Is(err, core.ErrProtectedNode) {
				return errors.New(i18n.T("folder.root_protected"))
			}
			if err != nil {
				return err
			}
			if !deleted {
				s.printf("%s\n", i18n.T("cli.cancelled"))
				return nil
			}
			s.printf("%s\n", i18n.T("folder.deleted", id))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
