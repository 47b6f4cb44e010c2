// Copyright (c) 2026 Keysafe Team
// Keysafe - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"

	"github.com/toeirei/keysafe/internal/model"
)

// DefaultRootName is the name of the root folder created in an empty vault.
const DefaultRootName = "Root"

// FolderStore covers folder rows.
type FolderStore interface {
	CreateFolder(ctx context.Context, parentID *int, name string) (int, error)
	RenameFolder(ctx context.Context, id int, name string) error
	// DeleteFolder removes the folder and every item whose folder_id equals id.
	// Child folders are left untouched.
	DeleteFolder(ctx context.Context, id int) error
	GetFolder(ctx context.Context, id int) (*model.Folder, error)
	// ListFolders returns all folders in insertion (id) order.
	ListFolders(ctx context.Context) ([]model.Folder, error)
	CountFolders(ctx context.Context) (int, error)
}

// ItemStore covers item rows.
type ItemStore interface {
	CreateItem(ctx context.Context, folderID int, fields model.ItemFields) (int, error)
	UpdateItem(ctx context.Context, id int, fields model.ItemFields) error
	GetItem(ctx context.Context, id int) (*model.Item, error)
	DeleteItem(ctx context.Context, id int) error
	// ListItems returns the items of a folder, most recently created first.
	ListItems(ctx context.Context, folderID int) ([]model.ItemSummary, error)
}

// CredentialStore covers the single master credential row.
type CredentialStore interface {
	// GetMasterCredential returns the stored credential and whether one exists.
	GetMasterCredential(ctx context.Context) (string, bool, error)
	// SetMasterCredential replaces any existing credential.
	SetMasterCredential(ctx context.Context, password string) error
	CountMasterCredentials(ctx context.Context) (int, error)
}

// Store is the full persistent store of a vault.
type Store interface {
	FolderStore
	ItemStore
	CredentialStore

	// Initialize creates missing tables and, when no folder exists, a single
	// root folder called rootName. It is idempotent.
	Initialize(ctx context.Context, rootName string) error

	ExportDataForBackup(ctx context.Context) (*model.BackupData, error)
	// ImportDataFromBackup wipes the vault and replaces it with backup.
	ImportDataFromBackup(ctx context.Context, backup *model.BackupData) error

	Close() error
}
