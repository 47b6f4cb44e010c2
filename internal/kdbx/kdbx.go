// Copyright (c) 2026 Keysafe Team
// Keysafe - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package kdbx exports a vault snapshot as an encrypted KeePass (KDBX 4)
// database. Folders become groups and items become entries.
package kdbx

import (
	"errors"
	"fmt"
	"io"
	"os"

	gokeepasslib "github.com/tobischo/gokeepasslib/v3"
	w "github.com/tobischo/gokeepasslib/v3/wrappers"
	"github.com/toeirei/keysafe/internal/core"
	"github.com/toeirei/keysafe/internal/model"
)

// OrphanGroupName holds folders that are not reachable from a root.
const OrphanGroupName = "Unfiled"

// ErrEmptyPassword is returned when no export password is given.
var ErrEmptyPassword = errors.New("export password must not be empty")

// Build converts data into an unlocked KeePass database protected by password.
func Build(data *model.BackupData, password string) (*gokeepasslib.Database, error) {
	if password == "" {
		return nil, ErrEmptyPassword
	}
	if data == nil {
		return nil, errors.New("nothing to export")
	}

	byFolder := make(map[int][]model.Item)
	for _, it := range data.Items {
		byFolder[it.FolderID] = append(byFolder[it.FolderID], it)
	}

	var toGroup func(n *core.Node) gokeepasslib.Group
	toGroup = func(n *core.Node) gokeepasslib.Group {
		g := gokeepasslib.NewGroup()
		g.Name = n.Folder.Name
		for _, it := range byFolder[n.Folder.ID] {
			g.Entries = append(g.Entries, toEntry(it))
		}
		for _, c := range n.Children {
			g.Groups = append(g.Groups, toGroup(c))
		}
		return g
	}

	forest := core.BuildTree(data.Folders)
	var groups []gokeepasslib.Group
	for _, r := range forest.Roots {
		groups = append(groups, toGroup(r))
	}
	if len(forest.Orphans) > 0 {
		orphans := gokeepasslib.NewGroup()
		orphans.Name = OrphanGroupName
		for _, f := range forest.Orphans {
			g := gokeepasslib.NewGroup()
			g.Name = f.Name
			for _, it := range byFolder[f.ID] {
				g.Entries = append(g.Entries, toEntry(it))
			}
			orphans.Groups = append(orphans.Groups, g)
		}
		groups = append(groups, orphans)
	}

	db := gokeepasslib.NewDatabase(gokeepasslib.WithDatabaseKDBXVersion4())
	db.Credentials = gokeepasslib.NewPasswordCredentials(password)
	db.Content.Meta.DatabaseName = "Keysafe"
	db.Content.Root = &gokeepasslib.RootData{Groups: groups}
	return db, nil
}

func toEntry(it model.Item) gokeepasslib.Entry {
	e := gokeepasslib.NewEntry()
	e.Values = append(e.Values,
		value("Title", it.Title, false),
		value("UserName", it.Username, false),
		value("Password", it.Password, true),
		value("URL", it.URL, false),
		value("Notes", it.Notes, false),
	)
	return e
}

func value(key, content string, protected bool) gokeepasslib.ValueData {
	return gokeepasslib.ValueData{
		Key:   key,
		Value: gokeepasslib.V{Content: content, Protected: w.NewBoolWrapper(protected)},
	}
}

// Export encodes data as a KDBX stream.
func Export(out io.Writer, data *model.BackupData, password string) error {
	db, err := Build(data, password)
	if err != nil {
		return err
	}
	if err := db.LockProtectedEntries(); err != nil {
		return fmt.Errorf("lock protected entries: %w", err)
	}
	if err := gokeepasslib.NewEncoder(out).Encode(db); err != nil {
		return fmt.Errorf("encode kdbx: %w", err)
	}
	return nil
}

// ExportFile writes a KDBX file at path with owner-only permissions.
func ExportFile(path string, data *model.BackupData, password string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Export(f, data, password); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Open decodes and unlocks a KDBX file, mainly to verify an export.
func Open(path, password string) (*gokeepasslib.Database, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	db := gokeepasslib.NewDatabase()
	db.Credentials = gokeepasslib.NewPasswordCredentials(password)
	if err := gokeepasslib.NewDecoder(f).Decode(db); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := db.UnlockProtectedEntries(); err != nil {
		return nil, fmt.Errorf("unlock protected entries: %w", err)
	}
	return db, nil
}
