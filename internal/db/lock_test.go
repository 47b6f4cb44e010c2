package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireLock_SecondHolderIsBusy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.db")

	first, err := AcquireLock(path)
	require.NoError(t, err)
	assert.Equal(t, path+".lock", first.Path())

	_, err = AcquireLock(path)
	assert.ErrorIs(t, err, ErrVaultBusy)

	require.NoError(t, first.Release())
	second, err := AcquireLock(path)
	require.NoError(t, err)
	require.NoError(t, second.Release())
}

func TestFileLock_ReleaseNil(t *testing.T) {
	var l *FileLock
	assert.NoError(t, l.Release())
}
