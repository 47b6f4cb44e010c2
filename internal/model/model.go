// Copyright (c) 2026 Keysafe Team
// Keysafe - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

// package model defines the core data structures of a Keysafe vault.
package model // import "github.com/toeirei/keysafe/internal/model"

import "fmt"

// Folder is a named node in the folder forest. A folder without a parent is
// a root and can never be deleted.
type Folder struct {
	ID       int    `json:"id"`
	ParentID *int   `json:"parent_id"`
	Name     string `json:"name"`
}

// IsRoot reports whether the folder has no parent.
func (f Folder) IsRoot() bool {
	return f.ParentID == nil
}

// String returns the folder name followed by its id.
func (f Folder) String() string {
	return fmt.Sprintf("%s (#%d)", f.Name, f.ID)
}

// ItemFields holds the five mutable text fields of an item. Saves always
// overwrite all of them together.
type ItemFields struct {
	Title    string `json:"title"`
	Username string `json:"username"`
	Password string `json:"password"`
	URL      string `json:"url"`
	Notes    string `json:"notes"`
}

// Item is a single credential record owned by exactly one folder.
type Item struct {
	ID       int `json:"id"`
	FolderID int `json:"folder_id"`
	ItemFields
}

// Fields returns a copy of the mutable fields.
func (i Item) Fields() ItemFields {
	return i.ItemFields
}

// ItemSummary is the list-view projection of an item.
type ItemSummary struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// IntPtr returns a pointer to v. Handy for building parent ids.
func IntPtr(v int) *int {
	return &v
}
