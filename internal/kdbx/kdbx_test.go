package kdbx

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gokeepasslib "github.com/tobischo/gokeepasslib/v3"
	"github.com/toeirei/keysafe/internal/model"
)

func sample() *model.BackupData {
	return &model.BackupData{
		SchemaVersion: model.BackupSchemaVersion,
		Folders: []model.Folder{
			{ID: 1, Name: "Root"},
			{ID: 2, ParentID: model.IntPtr(1), Name: "Mail"},
			{ID: 3, ParentID: model.IntPtr(42), Name: "Lost"},
		},
		Items: []model.Item{
			{ID: 1, FolderID: 2, ItemFields: model.ItemFields{Title: "web", Username: "me", Password: "s3cret", URL: "https://mail", Notes: "n"}},
			{ID: 2, FolderID: 3, ItemFields: model.ItemFields{Title: "stray"}},
		},
	}
}

func TestBuild_MirrorsFolders(t *testing.T) {
	db, err := Build(sample(), "export-pw")
	require.NoError(t, err)
	groups := db.Content.Root.Groups
	require.Len(t, groups, 2)

	root := groups[0]
	assert.Equal(t, "Root", root.Name)
	require.Len(t, root.Groups, 1)
	mail := root.Groups[0]
	assert.Equal(t, "Mail", mail.Name)
	require.Len(t, mail.Entries, 1)
	e := mail.Entries[0]
	assert.Equal(t, "web", e.GetTitle())
	assert.Equal(t, "me", e.GetContent("UserName"))
	assert.Equal(t, "s3cret", e.GetPassword())
	assert.Equal(t, "https://mail", e.GetContent("URL"))

	assert.Equal(t, OrphanGroupName, groups[1].Name)
	require.Len(t, groups[1].Groups, 1)
	assert.Equal(t, "stray", groups[1].Groups[0].Entries[0].GetTitle())
}

func TestBuild_RequiresPassword(t *testing.T) {
	_, err := Build(sample(), "")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestExportFile_OpenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.kdbx")
	require.NoError(t, ExportFile(path, sample(), "export-pw"))

	db, err := Open(path, "export-pw")
	require.NoError(t, err)
	var titles []string
	var walk func(gs []gokeepasslib.Group)
	walk = func(gs []gokeepasslib.Group) {
		for _, g := range gs {
			for _, e := range g.Entries {
				titles = append(titles, e.GetTitle())
				if e.GetTitle() == "web" {
					assert.Equal(t, "s3cret", e.GetPassword())
				}
			}
			walk(g.Groups)
		}
	}
	walk(db.Content.Root.Groups)
	assert.ElementsMatch(t, []string{"web", "stray"}, titles)

	_, err = Open(path, "wrong")
	assert.Error(t, err)
}
