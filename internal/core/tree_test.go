package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toeirei/keysafe/internal/db"
	"github.com/toeirei/keysafe/internal/model"
)

func ids(nodes []*Node) []int {
	out := make([]int, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Folder.ID)
	}
	return out
}

func TestBuildTree_AttachesInStoreOrder(t *testing.T) {
	folders := []model.Folder{
		{ID: 1, Name: "Root"},
		{ID: 2, ParentID: model.IntPtr(1), Name: "b"},
		{ID: 3, ParentID: model.IntPtr(1), Name: "a"},
		// child listed before its parent still attaches
		{ID: 5, ParentID: model.IntPtr(4), Name: "grandchild"},
		{ID: 4, ParentID: model.IntPtr(2), Name: "child"},
	}
	f := BuildTree(folders)
	require.Len(t, f.Roots, 1)
	assert.Equal(t, []int{2, 3}, ids(f.Roots[0].Children))
	assert.Equal(t, []int{5}, ids(f.Find(4).Children))
	assert.Empty(t, f.Orphans)
	assert.Equal(t, 5, f.Len())

	var visited []int
	var depths []int
	f.Walk(func(n *Node, depth int) {
		visited = append(visited, n.Folder.ID)
		depths = append(depths, depth)
	})
	assert.Equal(t, []int{1, 2, 4, 5, 3}, visited)
	assert.Equal(t, []int{0, 1, 2, 3, 1}, depths)
}

func TestBuildTree_OrphansAndCycles(t *testing.T) {
	folders := []model.Folder{
		{ID: 1, Name: "Root"},
		{ID: 2, ParentID: model.IntPtr(99), Name: "missing parent"},
		{ID: 3, ParentID: model.IntPtr(2), Name: "under orphan"},
		{ID: 4, ParentID: model.IntPtr(5), Name: "cycle a"},
		{ID: 5, ParentID: model.IntPtr(4), Name: "cycle b"},
		{ID: 6, ParentID: model.IntPtr(6), Name: "self"},
	}
	f := BuildTree(folders)
	require.Len(t, f.Roots, 1)
	assert.Empty(t, f.Roots[0].Children)
	var orphanIDs []int
	for _, o := range f.Orphans {
		orphanIDs = append(orphanIDs, o.ID)
	}
	assert.Equal(t, []int{2, 3, 4, 5, 6}, orphanIDs)
	assert.Nil(t, f.Find(4))
	assert.Equal(t, 1, f.Len())
}

func TestFolderTree_AddSubfolder(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	tree := NewFolderTree(s, "")
	root := rootID(t, s)

	a, err := tree.AddSubfolder(ctx, root, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultNewFolderName, a.Name)
	require.NotNil(t, a.ParentID)
	assert.Equal(t, root, *a.ParentID)

	b, err := tree.AddSubfolder(ctx, a.ID, "Mail")
	require.NoError(t, err)

	_, err = tree.AddSubfolder(ctx, 4242, "x")
	assert.ErrorIs(t, err, db.ErrNotFound)

	forest, err := tree.Load(ctx)
	require.NoError(t, err)
	require.Len(t, forest.Roots, 1)
	assert.Empty(t, forest.Orphans)
	assert.Equal(t, []int{b.ID}, ids(forest.Find(a.ID).Children))
}

func TestFolderTree_AcyclicAfterManyCreations(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	tree := NewFolderTree(s, "sub")
	parents := []int{rootID(t, s)}
	for i := 0; i < 30; i++ {
		f, err := tree.AddSubfolder(ctx, parents[i%len(parents)], "")
		require.NoError(t, err)
		parents = append(parents, f.ID)
	}
	forest, err := tree.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, forest.Orphans)
	assert.Equal(t, 31, forest.Len())
	assert.Len(t, forest.Roots, 1)
}

func TestFolderTree_RenameEmptyIsNoop(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	tree := NewFolderTree(s, "")
	root := rootID(t, s)

	changed, err := tree.Rename(ctx, root, "")
	require.NoError(t, err)
	assert.False(t, changed)
	f, err := s.GetFolder(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, db.DefaultRootName, f.Name)

	changed, err = tree.Rename(ctx, root, "Vault")
	require.NoError(t, err)
	assert.True(t, changed)
	f, err = s.GetFolder(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, "Vault", f.Name)
}

func TestFolderTree_DeleteRootIsProtected(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	tree := NewFolderTree(s, "")
	root := rootID(t, s)
	_, err := s.CreateItem(ctx, root, model.ItemFields{Title: "keep"})
	require.NoError(t, err)

	calls := 0
	deleted, err := tree.Delete(ctx, root, confirmWith(true, &calls))
	assert.ErrorIs(t, err, ErrProtectedNode)
	assert.False(t, deleted)
	assert.Zero(t, calls, "confirmation must not be asked for a root")

	folders, err := s.ListFolders(ctx)
	require.NoError(t, err)
	assert.Len(t, folders, 1)
	items, err := s.ListItems(ctx, root)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestFolderTree_DeleteDeclinedAndConfirmed(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	tree := NewFolderTree(s, "")
	root := rootID(t, s)
	a, err := tree.AddSubfolder(ctx, root, "A")
	require.NoError(t, err)
	child, err := tree.AddSubfolder(ctx, a.ID, "A1")
	require.NoError(t, err)
	_, err = s.CreateItem(ctx, a.ID, model.ItemFields{Title: "in A"})
	require.NoError(t, err)
	keep, err := s.CreateItem(ctx, root, model.ItemFields{Title: "in root"})
	require.NoError(t, err)

	calls := 0
	deleted, err := tree.Delete(ctx, a.ID, confirmWith(false, &calls))
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, 1, calls)
	_, err = s.GetFolder(ctx, a.ID)
	require.NoError(t, err)

	deleted, err = tree.Delete(ctx, a.ID, confirmWith(true, &calls))
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = s.GetFolder(ctx, a.ID)
	assert.ErrorIs(t, err, db.ErrNotFound)
	_, err = s.GetItem(ctx, keep)
	assert.NoError(t, err)

	// The subfolder survives and shows up as an orphan.
	forest, err := tree.Load(ctx)
	require.NoError(t, err)
	require.Len(t, forest.Orphans, 1)
	assert.Equal(t, child.ID, forest.Orphans[0].ID)
}

func TestFolderTree_DeleteNilConfirm(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	tree := NewFolderTree(s, "")
	a, err := tree.AddSubfolder(ctx, rootID(t, s), "A")
	require.NoError(t, err)

	deleted, err := tree.Delete(ctx, a.ID, nil)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = tree.Delete(ctx, a.ID, nil)
	assert.ErrorIs(t, err, db.ErrNotFound)
}
