package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestMigrateFromLegacyDirectory(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "plugin")
	legacyDir := filepath.Join(root, "global")
	writeFile(t, filepath.Join(legacyDir, LegacyFileName), `{"username": "legacy"}`)

	require.NoError(t, Migrate(dir, legacyDir))

	assert.Equal(t, `{"username": "legacy"}`, readFile(t, filepath.Join(dir, FileName)))
	assert.NoFileExists(t, filepath.Join(legacyDir, LegacyFileName))
	assert.NoFileExists(t, filepath.Join(dir, LegacyFileName))
}

func TestMigrateRenamesInPlace(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, LegacyFileName), `{"username": "old"}`)

	require.NoError(t, Migrate(dir, ""))

	assert.Equal(t, `{"username": "old"}`, readFile(t, filepath.Join(dir, FileName)))
	assert.NoFileExists(t, filepath.Join(dir, LegacyFileName))
}

func TestMigrateNeverOverwrites(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "plugin")
	legacyDir := filepath.Join(root, "global")
	writeFile(t, filepath.Join(dir, FileName), `{"username": "current"}`)
	writeFile(t, filepath.Join(dir, LegacyFileName), `{"username": "old"}`)
	writeFile(t, filepath.Join(legacyDir, LegacyFileName), `{"username": "legacy"}`)

	require.NoError(t, Migrate(dir, legacyDir))

	assert.Equal(t, `{"username": "current"}`, readFile(t, filepath.Join(dir, FileName)))
	assert.Equal(t, `{"username": "old"}`, readFile(t, filepath.Join(dir, LegacyFileName)))
	assert.Equal(t, `{"username": "legacy"}`, readFile(t, filepath.Join(legacyDir, LegacyFileName)))
}

func TestMigrateWithNothingToDo(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fresh")
	require.NoError(t, Migrate(dir, filepath.Join(dir, "missing")))
	assert.DirExists(t, dir)
	assert.NoFileExists(t, filepath.Join(dir, FileName))
}

func TestCopyFailureLeavesNoDestination(t *testing.T) {
	dir := t.TempDir()
	to := filepath.Join(dir, FileName)

	// reading a directory fails after the destination was created
	err := copyFile(t.TempDir(), to)
	require.Error(t, err)

	_, statErr := os.Stat(to)
	assert.True(t, os.IsNotExist(statErr))
}
