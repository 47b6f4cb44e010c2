// Copyright (c) 2026 Keysafe Team
// Keysafe - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package backup reads and writes vault snapshots as zstd-compressed JSON.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/toeirei/keysafe/internal/model"
)

// Extension is appended to backup file names that lack it.
const Extension = ".zst"

var (
	// ErrUnsupportedVersion is returned for backups of an unknown schema version.
	ErrUnsupportedVersion = errors.New("unsupported backup schema version")
	// ErrInvalidBackup is returned when a backup is internally inconsistent.
	ErrInvalidBackup = errors.New("invalid backup")
)

// DefaultFileName returns keysafe-backup-YYYY-MM-DD.json.zst for now.
func DefaultFileName(now time.Time) string {
	return fmt.Sprintf("keysafe-backup-%s.json%s", now.Format("2006-01-02"), Extension)
}

// NormalizePath appends Extension when missing.
func NormalizePath(p string) string {
	if strings.HasSuffix(p, Extension) {
		return p
	}
	return p + Extension
}

// Write encodes data as indented JSON through a zstd stream.
func Write(w io.Writer, data *model.BackupData) error {
	if data == nil {
		return fmt.Errorf("%w: nothing to write", ErrInvalidBackup)
	}
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("could not create zstd writer: %w", err)
	}
	enc := json.NewEncoder(zw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		_ = zw.Close()
		return fmt.Errorf("could not encode json to zstd writer: %w", err)
	}
	return zw.Close()
}

// Read decodes and validates a backup produced by Write.
func Read(r io.Reader) (*model.BackupData, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("could not create zstd reader: %w", err)
	}
	defer zr.Close()

	var data model.BackupData
	if err := json.NewDecoder(zr).Decode(&data); err != nil {
		return nil, fmt.Errorf("could not decode json from zstd reader: %w", err)
	}
	if err := Validate(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// WriteFile writes a backup to path with owner-only permissions.
func WriteFile(path string, data *model.BackupData) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("could not create file: %w", err)
	}
	if err := Write(f, data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReadFile reads and validates the backup at path.
func ReadFile(path string) (*model.BackupData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Read(f)
}

// Validate checks that a backup can be imported: a known schema version,
// unique positive ids, at least one root folder, no folder that is its own
// parent, and items that reference folders inside the backup. A parent id
// pointing outside the backup is kept: deleting a folder leaves its
// subfolders orphaned and they are restored as they were stored.
func Validate(data *model.BackupData) error {
	if data == nil {
		return fmt.Errorf("%w: empty", ErrInvalidBackup)
	}
	if data.SchemaVersion != model.BackupSchemaVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, data.SchemaVersion)
	}

	folders := make(map[int]bool, len(data.Folders))
	roots := 0
	for _, f := range data.Folders {
		if f.ID <= 0 || folders[f.ID] {
			return fmt.Errorf("%w: bad or duplicate folder id %d", ErrInvalidBackup, f.ID)
		}
		folders[f.ID] = true
		if f.IsRoot() {
			roots++
		}
	}
	if roots == 0 {
		return fmt.Errorf("%w: no root folder", ErrInvalidBackup)
	}
	for _, f := range data.Folders {
		if f.ParentID != nil && *f.ParentID == f.ID {
			return fmt.Errorf("%w: folder %d is its own parent", ErrInvalidBackup, f.ID)
		}
	}

	items := make(map[int]bool, len(data.Items))
	for _, it := range data.Items {
		if it.ID <= 0 || items[it.ID] {
			return fmt.Errorf("%w: bad or duplicate item id %d", ErrInvalidBackup, it.ID)
		}
		items[it.ID] = true
		if !folders[it.FolderID] {
			return fmt.Errorf("%w: item %d references unknown folder %d", ErrInvalidBackup, it.ID, it.FolderID)
		}
	}
	if data.Master != nil && data.Master.Password == "" {
		return fmt.Errorf("%w: empty master credential", ErrInvalidBackup)
	}
	return nil
}
