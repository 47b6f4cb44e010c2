// Copyright (c) 2026 Keysafe Team
// Keysafe - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/toeirei/keysafe/internal/model"
	"github.com/toeirei/keysafe/internal/prompt"
)

// Options configures a Vault. Zero values select the package defaults.
type Options struct {
	RootName      string
	NewFolderName string
	NewItemTitle  string
	MaxAttempts   int
}

// Vault is the single entry point of the presentation layer. Every method
// runs under one mutex, so a Vault is safe for concurrent use and never
// issues two mutations against its store at once. Everything except the
// authentication methods requires the Unlocked state.
type Vault struct {
	mu    sync.Mutex
	store Store
	opts  Options
	gate  *Gate
	tree  *FolderTree
	items *ItemManager
}

// NewVault wires the managers around store. Call Open before anything else.
func NewVault(store Store, opts Options) *Vault {
	return &Vault{
		store: store,
		opts:  opts,
		gate:  NewGate(store, opts.MaxAttempts),
		tree:  NewFolderTree(store, opts.NewFolderName),
		items: NewItemManager(store, opts.NewItemTitle),
	}
}

// Open initializes the store (tables and root folder) and starts the gate.
func (v *Vault) Open(ctx context.Context) (State, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.store.Initialize(ctx, v.opts.RootName); err != nil {
		return v.gate.State(), fmt.Errorf("initialize vault: %w", err)
	}
	return v.gate.Start(ctx)
}

// State returns the authentication state.
func (v *Vault) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.gate.State()
}

// Setup stores the first master credential. See Gate.Setup.
func (v *Vault) Setup(ctx context.Context, pw1, pw2 string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.gate.Setup(ctx, pw1, pw2)
}

// Verify checks one candidate credential. See Gate.Verify.
func (v *Vault) Verify(ctx context.Context, candidate string) (VerifyResult, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.gate.Verify(ctx, candidate)
}

// Abandon terminates the session.
func (v *Vault) Abandon() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.gate.Abandon()
}

// Authenticate runs the interactive setup and verification flow.
func (v *Vault) Authenticate(ctx context.Context, p prompt.Prompter) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Authenticate(ctx, v.gate, p)
}

// ChangeCredential replaces the master credential. See Gate.ChangeCredential.
func (v *Vault) ChangeCredential(ctx context.Context, oldPw, new1, new2 string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.gate.ChangeCredential(ctx, oldPw, new1, new2)
}

func (v *Vault) unlocked() error {
	if v.gate.State() != Unlocked {
		return ErrLocked
	}
	return nil
}

// Tree loads the folder forest.
func (v *Vault) Tree(ctx context.Context) (*Forest, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.unlocked(); err != nil {
		return nil, err
	}
	return v.tree.Load(ctx)
}

// AddSubfolder creates a folder under parentID.
func (v *Vault) AddSubfolder(ctx context.Context, parentID int, name string) (model.Folder, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.unlocked(); err != nil {
		return model.Folder{}, err
	}
	return v.tree.AddSubfolder(ctx, parentID, name)
}

// RenameFolder renames a folder; an empty name is a no-op reported as false.
func (v *Vault) RenameFolder(ctx context.Context, folderID int, name string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.unlocked(); err != nil {
		return false, err
	}
	return v.tree.Rename(ctx, folderID, name)
}

// DeleteFolder deletes a non-root folder and its direct items after confirm
// approves.
func (v *Vault) DeleteFolder(ctx context.Context, folderID int, confirm ConfirmFunc) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.unlocked(); err != nil {
		return false, err
	}
	deleted, err := v.tree.Delete(ctx, folderID, confirm)
	if deleted {
		v.items.ForgetFolder(folderID)
	}
	return deleted, err
}

// ListItems lists a folder's items, newest first, and clears the selection.
func (v *Vault) ListItems(ctx context.Context, folderID int) ([]model.ItemSummary, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.unlocked(); err != nil {
		return nil, err
	}
	return v.items.ListForFolder(ctx, folderID)
}

// CreateItem adds a placeholder item and selects it.
func (v *Vault) CreateItem(ctx context.Context, folderID int) (model.Item, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.unlocked(); err != nil {
		return model.Item{}, err
	}
	return v.items.Create(ctx, folderID)
}

// LoadItem reads and selects an item.
func (v *Vault) LoadItem(ctx context.Context, itemID int) (model.Item, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.unlocked(); err != nil {
		return model.Item{}, err
	}
	return v.items.Load(ctx, itemID)
}

// SaveItem overwrites the selected item's fields.
func (v *Vault) SaveItem(ctx context.Context, fields model.ItemFields) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.unlocked(); err != nil {
		return err
	}
	return v.items.Save(ctx, fields)
}

// DeleteItem removes a single item.
func (v *Vault) DeleteItem(ctx context.Context, itemID int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.unlocked(); err != nil {
		return err
	}
	return v.items.Delete(ctx, itemID)
}

// SelectedItem returns the selected item id.
func (v *Vault) SelectedItem() (int, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.items.Selected()
}

// Export returns a snapshot of the whole vault for backups and exports.
func (v *Vault) Export(ctx context.Context) (*model.BackupData, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.unlocked(); err != nil {
		return nil, err
	}
	return v.store.ExportDataForBackup(ctx)
}

// Import replaces the vault with data. The session stays unlocked even when
// the imported master credential differs.
func (v *Vault) Import(ctx context.Context, data *model.BackupData) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.unlocked(); err != nil {
		return err
	}
	if err := v.store.ImportDataFromBackup(ctx, data); err != nil {
		return err
	}
	v.items.ClearSelection()
	return nil
}
