// Copyright (c) 2026 Keysafe Team
// Keysafe - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"

	"github.com/toeirei/keysafe/internal/model"
)

// DefaultNewItemTitle is the title of freshly created items.
const DefaultNewItemTitle = "New item"

// ItemManager performs item CRUD and tracks the current selection, the item
// that Save writes to.
type ItemManager struct {
	store        ItemStore
	newItemTitle string

	selected       int
	selectedFolder int
	hasSelection   bool
}

// NewItemManager returns an ItemManager. An empty newItemTitle selects
// DefaultNewItemTitle.
func NewItemManager(store ItemStore, newItemTitle string) *ItemManager {
	if newItemTitle == "" {
		newItemTitle = DefaultNewItemTitle
	}
	return &ItemManager{store: store, newItemTitle: newItemTitle}
}

// Selected returns the selected item id.
func (m *ItemManager) Selected() (int, bool) {
	return m.selected, m.hasSelection
}

// ClearSelection forgets the selected item.
func (m *ItemManager) ClearSelection() {
	m.selected, m.selectedFolder, m.hasSelection = 0, 0, false
}

func (m *ItemManager) selectItem(it model.Item) {
	m.selected, m.selectedFolder, m.hasSelection = it.ID, it.FolderID, true
}

// ForgetFolder clears the selection when it belongs to folderID.
func (m *ItemManager) ForgetFolder(folderID int) {
	if m.hasSelection && m.selectedFolder == folderID {
		m.ClearSelection()
	}
}

// ListForFolder returns the folder's items, newest first. Focusing a folder
// clears the selection.
func (m *ItemManager) ListForFolder(ctx context.Context, folderID int) ([]model.ItemSummary, error) {
	m.ClearSelection()
	return m.store.ListItems(ctx, folderID)
}

// Create adds a placeholder item to folderID and selects it.
func (m *ItemManager) Create(ctx context.Context, folderID int) (model.Item, error) {
	fields := model.ItemFields{Title: m.newItemTitle}
	id, err := m.store.CreateItem(ctx, folderID, fields)
	if err != nil {
		return model.Item{}, err
	}
	it := model.Item{ID: id, FolderID: folderID, ItemFields: fields}
	m.selectItem(it)
	return it, nil
}

// Load reads an item and selects it. Missing fields read as empty strings.
func (m *ItemManager) Load(ctx context.Context, itemID int) (model.Item, error) {
	it, err := m.store.GetItem(ctx, itemID)
	if err != nil {
		return model.Item{}, err
	}
	m.selectItem(*it)
	return *it, nil
}

// Save overwrites all five fields of the selected item.
func (m *ItemManager) Save(ctx context.Context, fields model.ItemFields) error {
	if !m.hasSelection {
		return ErrNoSelection
	}
	return m.store.UpdateItem(ctx, m.selected, fields)
}

// Delete removes an item, clearing the selection if it was selected.
func (m *ItemManager) Delete(ctx context.Context, itemID int) error {
	if err := m.store.DeleteItem(ctx, itemID); err != nil {
		return err
	}
	if m.hasSelection && m.selected == itemID {
		m.ClearSelection()
	}
	return nil
}
