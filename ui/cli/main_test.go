// Copyright (c) 2026 Keysafe Team
// Keysafe - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toeirei/keysafe/internal/core"
	"github.com/toeirei/keysafe/internal/db"
	"github.com/toeirei/keysafe/internal/kdbx"
)

const testMaster = "P@ss1234"

// testEnv isolates one CLI test: its own vault file, config dirs and cwd.
type testEnv struct {
	t   *testing.T
	dir string
	dsn string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("KEYSAFE_NO_WRITE_CONFIG", "1")
	for _, kv := range os.Environ() {
		if k, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(k, "KEYSAFE_") && k != "KEYSAFE_NO_WRITE_CONFIG" {
			t.Setenv(k, "")
			_ = os.Unsetenv(k)
		}
	}
	t.Chdir(dir)
	return &testEnv{t: t, dir: dir, dsn: filepath.Join(dir, "vault.db")}
}

// run executes one keysafe invocation with stdin as the scripted input.
func (e *testEnv) run(stdin string, args ...string) (string, string, error) {
	e.t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--database.dsn", e.dsn, "--prompt.style", "plain", "--language", "en"}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// runOK runs an unlocked command and fails the test on error.
func (e *testEnv) runOK(stdin string, args ...string) string {
	e.t.Helper()
	out, errOut, err := e.run(testMaster+"\n"+stdin, args...)
	require.NoError(e.t, err, "stderr: %s", errOut)
	return out
}

func (e *testEnv) initVault() {
	e.t.Helper()
	out, errOut, err := e.run(strings.Repeat(testMaster+"\n", 3), "init")
	require.NoError(e.t, err, "stderr: %s", errOut)
	require.Contains(e.t, out, "Vault is ready.")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitError, ExitCode(errors.New("boom")))
	assert.Equal(t, ExitTerminated, ExitCode(core.ErrSessionTerminated))
}

func TestInit_SetupRetriesThenVerifies(t *testing.T) {
	e := newTestEnv(t)

	// Mismatch, then an empty pair, then a good pair and the verification.
	stdin := "one\ntwo\n\n\n" + strings.Repeat(testMaster+"\n", 3)
	out, errOut, err := e.run(stdin, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Vault is ready.")
	assert.Contains(t, errOut, "The passwords do not match.")
	assert.Contains(t, errOut, "The password must not be empty.")

	out, _, err = e.run("", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "already initialized")
}

func TestWrongPasswordThreeTimes_Terminates(t *testing.T) {
	e := newTestEnv(t)
	e.initVault()

	_, errOut, err := e.run("a\nb\nc\n", "folder", "tree")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrSessionTerminated)
	assert.Equal(t, ExitTerminated, ExitCode(err))
	assert.Contains(t, errOut, "2 attempt(s) left")
	assert.Contains(t, errOut, "1 attempt(s) left")
	assert.Contains(t, errOut, "Too many wrong attempts")

	// A wrong guess followed by the right one still unlocks.
	out, _, err := e.run("wrong\n"+testMaster+"\n", "folder", "tree")
	require.NoError(t, err)
	assert.Contains(t, out, "Root (#1)")
}

func TestEndOfInput_Terminates(t *testing.T) {
	e := newTestEnv(t)
	e.initVault()

	_, _, err := e.run("", "folder", "tree")
	assert.Equal(t, ExitTerminated, ExitCode(err))
}

func TestFolderCommands(t *testing.T) {
	e := newTestEnv(t)
	e.initVault()

	out := e.runOK("", "folder", "add", "1", "Mail")
	assert.Contains(t, out, `Added folder "Mail" (#2).`)
	out = e.runOK("", "folder", "add", "2")
	assert.Contains(t, out, `Added folder "New subfolder" (#3).`)

	out = e.runOK("", "folder", "rename", "3", "Work")
	assert.Contains(t, out, `Renamed folder #3 to "Work".`)
	out = e.runOK("", "folder", "rename", "3", "")
	assert.Contains(t, out, "nothing changed")

	out = e.runOK("", "folder", "tree")
	assert.Equal(t, "Root (#1)\n  Mail (#2)\n    Work (#3)\n", out)

	_, _, err := e.run(testMaster+"\n", "folder", "delete", "1", "--yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "root folder cannot be deleted")

	// Declined confirmation keeps the folder.
	out = e.runOK("n\n", "folder", "delete", "3")
	assert.Contains(t, out, "Cancelled.")
	out = e.runOK("y\n", "folder", "delete", "3")
	assert.Contains(t, out, "Deleted folder #3.")

	_, _, err = e.run(testMaster+"\n", "folder", "add", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid id")
}

func TestItemCommands(t *testing.T) {
	e := newTestEnv(t)
	e.initVault()

	out := e.runOK("", "item", "add", "1", "--title", "mail", "--username", "me", "--password", "s3cret")
	assert.Contains(t, out, "Added item #1 to folder #1.")
	out = e.runOK("", "item", "add", "1")
	assert.Contains(t, out, "Added item #2 to folder #1.")

	out = e.runOK("", "item", "list", "1")
	assert.Equal(t, "     2  New item\n     1  mail\n", out)

	out = e.runOK("", "item", "show", "1")
	assert.Contains(t, out, "me")
	assert.NotContains(t, out, "s3cret")
	out = e.runOK("", "item", "show", "1", "--reveal")
	assert.Contains(t, out, "s3cret")

	// Interactive edit: keep title, new username, keep url and notes, keep password.
	out = e.runOK("\nyou\n\n\n\n", "item", "edit", "1")
	assert.Contains(t, out, "Saved item #1.")
	out = e.runOK("", "item", "show", "1", "--reveal")
	assert.Contains(t, out, "you")
	assert.Contains(t, out, "s3cret")

	out = e.runOK("", "item", "edit", "2", "--title", "", "--generate", "--length", "24")
	assert.Contains(t, out, "Saved item #2.")
	out = e.runOK("", "item", "list", "1")
	assert.Contains(t, out, "(untitled)")

	var copied string
	orig := clipboardWrite
	clipboardWrite = func(s string) error { copied = s; return nil }
	t.Cleanup(func() { clipboardWrite = orig })

	e.runOK("", "item", "copy", "2")
	assert.Len(t, copied, 24)
	e.runOK("", "item", "copy", "1", "--field", "username")
	assert.Equal(t, "you", copied)
	_, _, err := e.run(testMaster+"\n", "item", "copy", "1", "--field", "pin")
	assert.Error(t, err)

	out = e.runOK("", "item", "delete", "2", "--yes")
	assert.Contains(t, out, "Deleted item #2.")
	_, _, err = e.run(testMaster+"\n", "item", "show", "2")
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestDeleteFolder_RemovesItems(t *testing.T) {
	e := newTestEnv(t)
	e.initVault()

	e.runOK("", "folder", "add", "1", "Mail")
	e.runOK("", "item", "add", "2", "--title", "inbox")
	e.runOK("", "folder", "delete", "2", "--yes")

	_, _, err := e.run(testMaster+"\n", "item", "show", "1")
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestPasswd(t *testing.T) {
	e := newTestEnv(t)
	e.initVault()

	_, _, err := e.run(testMaster+"\nnope\nx\nx\n", "passwd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "current master password is wrong")

	out := e.runOK(testMaster+"\nnext\nnext\n", "passwd")
	assert.Contains(t, out, "Master password changed.")

	out, _, err = e.run("next\n", "folder", "tree")
	require.NoError(t, err)
	assert.Contains(t, out, "Root (#1)")
}

func TestBackupAndRestore(t *testing.T) {
	e := newTestEnv(t)
	e.initVault()
	e.runOK("", "folder", "add", "1", "Mail")
	e.runOK("", "item", "add", "2", "--title", "inbox", "--password", "pw")

	file := filepath.Join(e.dir, "vault-backup")
	out := e.runOK("", "backup", file)
	assert.Contains(t, out, "(2 folders, 1 items)")
	_, err := os.Stat(file + ".zst")
	require.NoError(t, err)

	e.runOK("", "folder", "add", "1", "Scratch")
	e.runOK("", "item", "add", "1", "--title", "temp")

	out = e.runOK("y\n", "restore", file+".zst")
	assert.Contains(t, out, "Restored 2 folders and 1 items.")

	out = e.runOK("", "folder", "tree")
	assert.Equal(t, "Root (#1)\n  Mail (#2)\n", out)

	_, _, err = e.run(testMaster+"\n", "restore", filepath.Join(e.dir, "missing.zst"))
	assert.Error(t, err)
}

func TestExportKdbx(t *testing.T) {
	e := newTestEnv(t)
	e.initVault()
	e.runOK("", "item", "add", "1", "--title", "mail", "--password", "s3cret")

	file := filepath.Join(e.dir, "out.kdbx")
	_, _, err := e.run(testMaster+"\nk1\nk2\n", "export-kdbx", file)
	require.Error(t, err)

	out := e.runOK("kp\nkp\n", "export-kdbx", file)
	assert.Contains(t, out, "Exported 1 items")

	kdb, err := kdbx.Open(file, "kp")
	require.NoError(t, err)
	require.NotEmpty(t, kdb.Content.Root.Groups)
	entries := kdb.Content.Root.Groups[0].Entries
	require.Len(t, entries, 1)
	assert.Equal(t, "mail", entries[0].GetTitle())
	assert.Equal(t, "s3cret", entries[0].GetPassword())
}

func TestGenerateAndStrength(t *testing.T) {
	e := newTestEnv(t)

	out, errOut, err := e.run("", "generate", "--length", "20")
	require.NoError(t, err)
	assert.Len(t, strings.TrimSpace(out), 20)
	assert.Contains(t, errOut, "Strength:")

	out, _, err = e.run("", "strength", "abc")
	require.NoError(t, err)
	assert.Equal(t, "Strength: 1/5 (weak)\n", out)

	out, _, err = e.run("Abcdef1!\n", "strength")
	require.NoError(t, err)
	assert.Equal(t, "Strength: 5/5 (strong)\n", out)

	_, _, err = e.run("", "generate", "--length", "-1")
	require.NoError(t, err, "non-positive lengths use the configured default")
}

func TestMaintenance(t *testing.T) {
	e := newTestEnv(t)
	e.initVault()
	out := e.runOK("", "maintenance")
	assert.Contains(t, out, "Database maintenance completed.")
}

func TestVaultLock_SecondProcessIsBusy(t *testing.T) {
	e := newTestEnv(t)
	e.initVault()

	lock, err := db.AcquireLock(e.dsn)
	require.NoError(t, err)
	defer func() { _ = lock.Release() }()

	_, _, err = e.run(testMaster+"\n", "folder", "tree")
	assert.ErrorIs(t, err, db.ErrVaultBusy)
}

func TestInvalidConfig(t *testing.T) {
	e := newTestEnv(t)
	cfg := filepath.Join(e.dir, "bad.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("database:\n  type: oracle\n"), 0o600))

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", cfg, "folder", "tree"})
	assert.Error(t, cmd.Execute())

	cmd = NewRootCmd()
	cmd.SetArgs([]string{"--config", filepath.Join(e.dir, "nope.yaml"), "folder", "tree"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}
