// Copyright (c) 2026 Keysafe Team
// Keysafe - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"fmt"

	"github.com/toeirei/keysafe/internal/model"
)

// Request is a message from the presentation layer. The set is closed:
// FolderSelected, AddItemRequested and SaveRequested.
type Request interface{ isRequest() }

// Response answers a Request: ItemList, ItemCreated or Saved.
type Response interface{ isResponse() }

// FolderSelected reports a change of folder focus.
type FolderSelected struct{ FolderID int }

// AddItemRequested asks for a new item in FolderID.
type AddItemRequested struct{ FolderID int }

// SaveRequested persists Fields into ItemID, which must be the selected
// item. A zero ItemID means the selected item.
type SaveRequested struct {
	ItemID int
	Fields model.ItemFields
}

func (FolderSelected) isRequest()   {}
func (AddItemRequested) isRequest() {}
func (SaveRequested) isRequest()    {}

// ItemList answers FolderSelected.
type ItemList struct {
	FolderID int
	Items    []model.ItemSummary
}

// ItemCreated answers AddItemRequested; the item is now selected.
type ItemCreated struct{ ItemID int }

// Saved answers SaveRequested.
type Saved struct{ ItemID int }

func (ItemList) isResponse()    {}
func (ItemCreated) isResponse() {}
func (Saved) isResponse()       {}

// Dispatch routes a request to the matching operation. The response is nil
// whenever the error is not.
func (v *Vault) Dispatch(ctx context.Context, req Request) (Response, error) {
	var (
		resp Response
		err  error
	)
	switch r := req.(type) {
	case FolderSelected:
		resp, err = v.OnFolderSelected(ctx, r.FolderID)
	case AddItemRequested:
		resp, err = v.OnAddItemRequested(ctx, r.FolderID)
	case SaveRequested:
		resp, err = v.OnSaveRequested(ctx, r.ItemID, r.Fields)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownRequest, req)
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// OnFolderSelected returns the folder's item list.
func (v *Vault) OnFolderSelected(ctx context.Context, folderID int) (ItemList, error) {
	items, err := v.ListItems(ctx, folderID)
	if err != nil {
		return ItemList{}, err
	}
	return ItemList{FolderID: folderID, Items: items}, nil
}

// OnAddItemRequested creates an item and returns its id.
func (v *Vault) OnAddItemRequested(ctx context.Context, folderID int) (ItemCreated, error) {
	it, err := v.CreateItem(ctx, folderID)
	if err != nil {
		return ItemCreated{}, err
	}
	return ItemCreated{ItemID: it.ID}, nil
}

// OnSaveRequested saves fields into the selected item.
func (v *Vault) OnSaveRequested(ctx context.Context, itemID int, fields model.ItemFields) (Saved, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.unlocked(); err != nil {
		return Saved{}, err
	}
	sel, ok := v.items.Selected()
	if !ok || (itemID != 0 && itemID != sel) {
		return Saved{}, ErrNoSelection
	}
	if err := v.items.Save(ctx, fields); err != nil {
		return Saved{}, err
	}
	return Saved{ItemID: sel}, nil
}
