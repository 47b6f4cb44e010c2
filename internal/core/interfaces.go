// Copyright (c) 2026 Keysafe Team
// Keysafe - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package core holds the vault logic: the folder tree, the item manager, the
// authentication gate and the Vault facade that serializes them. The
// interfaces below describe the storage boundary; internal/db implements them.
package core

import (
	"context"

	"github.com/toeirei/keysafe/internal/model"
)

// FolderStore is the folder part of the persistent store.
type FolderStore interface {
	CreateFolder(ctx context.Context, parentID *int, name string) (int, error)
	RenameFolder(ctx context.Context, id int, name string) error
	DeleteFolder(ctx context.Context, id int) error
	GetFolder(ctx context.Context, id int) (*model.Folder, error)
	ListFolders(ctx context.Context) ([]model.Folder, error)
}

// ItemStore is the item part of the persistent store.
type ItemStore interface {
	CreateItem(ctx context.Context, folderID int, fields model.ItemFields) (int, error)
	UpdateItem(ctx context.Context, id int, fields model.ItemFields) error
	GetItem(ctx context.Context, id int) (*model.Item, error)
	DeleteItem(ctx context.Context, id int) error
	ListItems(ctx context.Context, folderID int) ([]model.ItemSummary, error)
}

// CredentialStore holds the single master credential.
type CredentialStore interface {
	GetMasterCredential(ctx context.Context) (string, bool, error)
	SetMasterCredential(ctx context.Context, password string) error
	CountMasterCredentials(ctx context.Context) (int, error)
}

// Store is everything a Vault needs from persistence.
type Store interface {
	FolderStore
	ItemStore
	CredentialStore
	Initialize(ctx context.Context, rootName string) error
	ExportDataForBackup(ctx context.Context) (*model.BackupData, error)
	ImportDataFromBackup(ctx context.Context, backup *model.BackupData) error
}

// ConfirmFunc asks the user to approve a destructive operation on folder.
type ConfirmFunc func(ctx context.Context, folder model.Folder) (bool, error)
