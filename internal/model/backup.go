// Copyright (c) 2026 Keysafe Team
// Keysafe - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package model

// BackupSchemaVersion is the current version of BackupData.
const BackupSchemaVersion = 1

// BackupData is a container for all data exported for a backup.
type BackupData struct {
	// SchemaVersion helps in handling migrations during restore.
	SchemaVersion int `json:"schema_version"`

	Folders []Folder          `json:"folders"`
	Items   []Item            `json:"items"`
	Master  *MasterCredential `json:"master,omitempty"`
}

// MasterCredential is the single secret gating access to the vault.
// The value is stored and compared as plain text.
type MasterCredential struct {
	Password string `json:"password"`
}
