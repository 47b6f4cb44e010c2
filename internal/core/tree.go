// Copyright (c) 2026 Keysafe Team
// Keysafe - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"fmt"

	"github.com/toeirei/keysafe/internal/logging"
	"github.com/toeirei/keysafe/internal/model"
)

// DefaultNewFolderName names subfolders created without a name.
const DefaultNewFolderName = "New subfolder"

// Node is a folder with its attached children, in store order.
type Node struct {
	Folder   model.Folder
	Children []*Node
}

// Forest is the projection of the folder table. Roots holds every folder
// reachable from a parentless folder. Orphans lists, in store order, folders
// whose parent is missing or that sit on a parent cycle, together with their
// descendants.
type Forest struct {
	Roots   []*Node
	Orphans []model.Folder
	index   map[int]*Node
}

// Find returns the attached node for id, or nil for unknown ids and orphans.
func (f *Forest) Find(id int) *Node {
	if f == nil {
		return nil
	}
	return f.index[id]
}

// Walk visits attached nodes depth-first, parents before children.
func (f *Forest) Walk(fn func(n *Node, depth int)) {
	var visit func(n *Node, depth int)
	visit = func(n *Node, depth int) {
		fn(n, depth)
		for _, c := range n.Children {
			visit(c, depth+1)
		}
	}
	for _, r := range f.Roots {
		visit(r, 0)
	}
}

// Len returns the number of attached folders.
func (f *Forest) Len() int { return len(f.index) }

// BuildTree builds a Forest in two passes: one node per folder first, then
// each folder is attached to its parent in store order. Anything not
// reachable from a root ends up in Orphans.
func BuildTree(folders []model.Folder) *Forest {
	nodes := make(map[int]*Node, len(folders))
	for _, f := range folders {
		nodes[f.ID] = &Node{Folder: f}
	}

	var roots []*Node
	for _, f := range folders {
		n := nodes[f.ID]
		if f.ParentID == nil {
			roots = append(roots, n)
			continue
		}
		if p, ok := nodes[*f.ParentID]; ok {
			p.Children = append(p.Children, n)
		}
	}

	forest := &Forest{Roots: roots, index: make(map[int]*Node, len(folders))}
	var mark func(n *Node)
	mark = func(n *Node) {
		if _, seen := forest.index[n.Folder.ID]; seen {
			return
		}
		forest.index[n.Folder.ID] = n
		for _, c := range n.Children {
			mark(c)
		}
	}
	for _, r := range roots {
		mark(r)
	}

	for _, f := range folders {
		if _, ok := forest.index[f.ID]; !ok {
			forest.Orphans = append(forest.Orphans, f)
		}
	}
	if len(forest.Orphans) > 0 {
		logging.Warnf("folder tree: %d folder(s) are not reachable from a root folder", len(forest.Orphans))
	}
	return forest
}

// FolderTree enforces the structural rules of the folder hierarchy on top of
// the store. It keeps no state besides its configuration; the Forest is
// rebuilt from the store by Load.
type FolderTree struct {
	store         FolderStore
	newFolderName string
}

// NewFolderTree returns a FolderTree. An empty newFolderName selects
// DefaultNewFolderName.
func NewFolderTree(store FolderStore, newFolderName string) *FolderTree {
	if newFolderName == "" {
		newFolderName = DefaultNewFolderName
	}
	return &FolderTree{store: store, newFolderName: newFolderName}
}

// Load reads every folder and builds the Forest.
func (t *FolderTree) Load(ctx context.Context) (*Forest, error) {
	folders, err := t.store.ListFolders(ctx)
	if err != nil {
		return nil, fmt.Errorf("load folders: %w", err)
	}
	return BuildTree(folders), nil
}

// AddSubfolder creates a folder under parentID, which must exist. An empty
// name uses the configured default.
func (t *FolderTree) AddSubfolder(ctx context.Context, parentID int, name string) (model.Folder, error) {
	if _, err := t.store.GetFolder(ctx, parentID); err != nil {
		return model.Folder{}, fmt.Errorf("parent folder %d: %w", parentID, err)
	}
	if name == "" {
		name = t.newFolderName
	}
	id, err := t.store.CreateFolder(ctx, model.IntPtr(parentID), name)
	if err != nil {
		return model.Folder{}, err
	}
	logging.Debugf("folder tree: created folder %d under %d", id, parentID)
	return model.Folder{ID: id, ParentID: model.IntPtr(parentID), Name: name}, nil
}

// Rename sets a folder's name. An empty name is ignored and reported as
// false.
func (t *FolderTree) Rename(ctx context.Context, folderID int, newName string) (bool, error) {
	if newName == "" {
		return false, nil
	}
	if err := t.store.RenameFolder(ctx, folderID, newName); err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes a non-root folder and its direct items once confirm
// approves. A nil confirm counts as approval. Subfolders are kept and become
// orphans. It reports whether anything was deleted.
func (t *FolderTree) Delete(ctx context.Context, folderID int, confirm ConfirmFunc) (bool, error) {
	f, err := t.store.GetFolder(ctx, folderID)
	if err != nil {
		return false, err
	}
	if f.IsRoot() {
		return false, fmt.Errorf("%w: %s", ErrProtectedNode, f)
	}
	if confirm != nil {
		ok, err := confirm(ctx, *f)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	if err := t.store.DeleteFolder(ctx, folderID); err != nil {
		return false, err
	}
	logging.Debugf("folder tree: deleted folder %d", folderID)
	return true, nil
}
