// Copyright (c) 2026 Keysafe Team
// Keysafe - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/toeirei/keysafe/internal/core"
	"github.com/toeirei/keysafe/internal/credential"
	"github.com/toeirei/keysafe/internal/i18n"
	"github.com/toeirei/keysafe/internal/logging"
	"github.com/toeirei/keysafe/internal/model"
	"github.com/toeirei/keysafe/internal/prompt"
)

// clipboardWrite is swapped out in tests.
var clipboardWrite = clipboard.WriteAll

// itemFlags binds the five item fields to command flags.
type itemFlags struct {
	fields   model.ItemFields
	generate bool
	length   int
}

func (f *itemFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.fields.Title, "title", "", "Item title")
	fs.StringVar(&f.fields.Username, "username", "", "User name")
	fs.StringVar(&f.fields.Password, "password", "", "Password (prefer --generate or the interactive prompt)")
	fs.StringVar(&f.fields.URL, "url", "", "URL")
	fs.StringVar(&f.fields.Notes, "notes", "", "Notes")
	fs.BoolVar(&f.generate, "generate", false, "Generate a random password")
	fs.IntVar(&f.length, "length", 0, "Length of a generated password (default from config)")
}

// anySet reports whether at least one field flag was passed.
func anySet(fs *pflag.FlagSet) bool {
	for _, name := range []string{"title", "username", "password", "url", "notes", "generate"} {
		if fs.Changed(name) {
			return true
		}
	}
	return false
}

// apply overwrites the fields whose flags were passed.
func (f *itemFlags) apply(fs *pflag.FlagSet, dst *model.ItemFields, defaultLength int) error {
	if fs.Changed("title") {
		dst.Title = f.fields.Title
	}
	if fs.Changed("username") {
		dst.Username = f.fields.Username
	}
	if fs.Changed("password") {
		dst.Password = f.fields.Password
	}
	if fs.Changed("url") {
		dst.URL = f.fields.URL
	}
	if fs.Changed("notes") {
		dst.Notes = f.fields.Notes
	}
	if f.generate {
		n := f.length
		if n <= 0 {
			n = defaultLength
		}
		pw, err := credential.Generate(n)
		if err != nil {
			return err
		}
		dst.Password = pw
	}
	return nil
}

func (a *app) newItemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "item",
		Aliases: []string{"items"},
		Short:   "Manage the items of a folder",
	}
	cmd.AddCommand(
		a.newItemListCmd(),
		a.newItemAddCmd(),
		a.newItemShowCmd(),
		a.newItemEditCmd(),
		a.newItemDeleteCmd(),
		a.newItemCopyCmd(),
	)
	return cmd
}

func (a *app) newItemListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list FOLDER_ID",
		Short: "List the items of a folder, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folderID, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := a.unlockedSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			resp, err := s.vault.Dispatch(cmd.Context(), core.FolderSelected{FolderID: folderID})
			if err != nil {
				return err
			}
			list := resp.(core.ItemList)
			if len(list.Items) == 0 {
				s.printf("%s\n", i18n.T("item.list_empty"))
				return nil
			}
			for _, it := range list.Items {
				s.printf("%6d  %s\n", it.ID, displayTitle(it.Title))
			}
			return nil
		},
	}
}

func displayTitle(title string) string {
	if title == "" {
		return i18n.T("item.untitled")
	}
	return title
}

func (a *app) newItemAddCmd() *cobra.Command {
	var f itemFlags
	cmd := &cobra.Command{
		Use:   "add FOLDER_ID",
		Short: "Add an item to a folder",
		Long: `Adds an item to FOLDER_ID. Without field flags the item is created with
the configured default title and empty fields.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folderID, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := a.unlockedSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			ctx := cmd.Context()

			var fields *model.ItemFields
			if anySet(cmd.Flags()) {
				// Resolve every field before the first write.
				fields = &model.ItemFields{Title: a.cfg.Vault.NewItemTitle}
				if err := f.apply(cmd.Flags(), fields, a.cfg.Generator.Length); err != nil {
					return err
				}
			}
			created, err := addItem(ctx, s.vault, folderID, fields)
			if err != nil {
				return err
			}
			s.printf("%s\n", i18n.T("item.added", created.ItemID, folderID))
			return nil
		},
	}
	f.register(cmd.Flags())
	return cmd
}

// itemWriter is the part of core.Vault used to add items.
type itemWriter interface {
	Dispatch(ctx context.Context, req core.Request) (core.Response, error)
	DeleteItem(ctx context.Context, itemID int) error
}

// addItem creates an item in folderID and, when fields is set, saves them
// into it. A failed save removes the placeholder again.
func addItem(ctx context.Context, v itemWriter, folderID int, fields *model.ItemFields) (core.ItemCreated, error) {
	resp, err := v.Dispatch(ctx, core.AddItemRequested{FolderID: folderID})
	if err != nil {
		return core.ItemCreated{}, err
	}
	created := resp.(core.ItemCreated)
	if fields == nil {
		return created, nil
	}
	if _, err := v.Dispatch(ctx, core.SaveRequested{ItemID: created.ItemID, Fields: *fields}); err != nil {
		if delErr := v.DeleteItem(ctx, created.ItemID); delErr != nil {
			logging.Warnf("remove placeholder item %d: %v", created.ItemID, delErr)
		}
		return core.ItemCreated{}, err
	}
	return created, nil
}

func (a *app) newItemShowCmd() *cobra.Command {
	var reveal bool
	cmd := &cobra.Command{
		Use:   "show ITEM_ID",
		Short: "Show an item",
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

			it, err := s.vault.LoadItem(cmd.Context(), id)
			if err != nil {
				return err
			}
			pw := it.Password
			if !reveal && pw != "" {
				pw = strings.Repeat("*", 8)
			}
			s.printf("%-10s %d\n", i18n.T("item.field_id"), it.ID)
			s.printf("%-10s %d\n", i18n.T("item.field_folder"), it.FolderID)
			s.printf("%-10s %s\n", i18n.T("item.field_title"), it.Title)
			s.printf("%-10s %s\n", i18n.T("item.field_username"), it.Username)
			s.printf("%-10s %s\n", i18n.T("item.field_password"), pw)
			s.printf("%-10s %s\n", i18n.T("item.field_url"), it.URL)
			s.printf("%-10s %s\n", i18n.T("item.field_notes"), it.Notes)
			return nil
		},
	}
	cmd.Flags().BoolVar(&reveal, "reveal", false, "Print the password in clear text")
	return cmd
}

func (a *app) newItemEditCmd() *cobra.Command {
	var f itemFlags
	cmd := &cobra.Command{
		Use:   "edit ITEM_ID",
		Short: "Edit an item",
		Long: `Overwrites the fields of ITEM_ID. With field flags only the given fields
change; without them every field is asked for interactively, pre-filled
with its current value. An empty password answer keeps the old one.`,
		Args: cobra.ExactArgs(1),
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
			ctx := cmd.Context()

			it, err := s.vault.LoadItem(ctx, id)
			if err != nil {
				return err
			}
			fields := it.Fields()
			if anySet(cmd.Flags()) {
				err = f.apply(cmd.Flags(), &fields, a.cfg.Generator.Length)
			} else {
				err = askFields(ctx, s.prompt, &fields)
			}
			if err != nil {
				return err
			}

			if _, err := s.vault.Dispatch(ctx, core.SaveRequested{ItemID: id, Fields: fields}); err != nil {
				return err
			}
			s.printf("%s\n", i18n.T("item.saved", id))
			return nil
		},
	}
	f.register(cmd.Flags())
	return cmd
}

// askFields prompts for every field in turn.
func askFields(ctx context.Context, p prompt.Prompter, fields *model.ItemFields) error {
	visible := []struct {
		label string
		dst   *string
	}{
		{i18n.T("item.field_title"), &fields.Title},
		{i18n.T("item.field_username"), &fields.Username},
		{i18n.T("item.field_url"), &fields.URL},
		{i18n.T("item.field_notes"), &fields.Notes},
	}
	for _, v := range visible {
		val, err := p.Input(ctx, v.label, *v.dst)
		if err != nil {
			return err
		}
		*v.dst = val
	}
	pw, err := p.Secret(ctx, i18n.T("item.password_prompt"))
	if err != nil {
		return err
	}
	if pw != "" {
		fields.Password = pw
	}
	return nil
}

func (a *app) newItemDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete ITEM_ID",
		Short: "Delete an item",
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
			ctx := cmd.Context()

			it, err := s.vault.LoadItem(ctx, id)
			if err != nil {
				return err
			}
			if !yes {
				ok, err := s.prompt.Confirm(ctx, i18n.T("item.delete_confirm", displayTitle(it.Title)))
				if err != nil && !errors.Is(err, prompt.ErrCancelled) {
					return err
				}
				if !ok {
					s.printf("%s\n", i18n.T("cli.cancelled"))
					return nil
				}
			}
			if err := s.vault.DeleteItem(ctx, id); err != nil {
				return err
			}
			s.printf("%s\n", i18n.T("item.deleted", id))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func (a *app) newItemCopyCmd() *cobra.Command {
	var field string
	cmd := &cobra.Command{
		Use:   "copy ITEM_ID",
		Short: "Copy a field of an item to the clipboard",
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

			it, err := s.vault.LoadItem(cmd.Context(), id)
			if err != nil {
				return err
			}
			val, err := fieldValue(it.Fields(), field)
			if err != nil {
				return err
			}
			if err := clipboardWrite(val); err != nil {
				return fmt.Errorf("%s: %w", i18n.T("cli.clipboard_failed"), err)
			}
			s.printf("%s\n", i18n.T("item.copied", field))
			return nil
		},
	}
	cmd.Flags().StringVar(&field, "field", "password", "Field to copy (title, username, password, url, notes)")
	return cmd
}

func fieldValue(f model.ItemFields, name string) (string, error) {
	switch strings.ToLower(name) {
	case "title":
		return f.Title, nil
	case "username", "user":
		return f.Username, nil
	case "password", "pass":
		return f.Password, nil
	case "url":
		return f.URL, nil
	case "notes":
		return f.Notes, nil
	}
	return "", errors.New(i18n.T("item.unknown_field", name))
}
