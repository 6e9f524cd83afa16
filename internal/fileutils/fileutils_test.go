package fileutils_test

import (
	"os"
	"path/filepath"
	"testing"

	"fjacquet/sie-report/internal/fileutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "rr.yaml")
	require.NoError(t, os.WriteFile(testFile, []byte("[]"), 0600))

	assert.True(t, fileutils.FileExists(testFile))
	assert.False(t, fileutils.FileExists(filepath.Join(tmpDir, "missing.yaml")))
	assert.False(t, fileutils.FileExists(tmpDir))
}

func TestDirectoryExists(t *testing.T) {
	tmpDir := t.TempDir()
	assert.True(t, fileutils.DirectoryExists(tmpDir))
	assert.False(t, fileutils.DirectoryExists(filepath.Join(tmpDir, "missing")))
}

func TestEnsureDirectoryExists(t *testing.T) {
	newDir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, fileutils.EnsureDirectoryExists(newDir))
	assert.True(t, fileutils.DirectoryExists(newDir))
	require.NoError(t, fileutils.EnsureDirectoryExists(newDir))
}

func TestReadWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.json")
	require.NoError(t, fileutils.WriteFileAtomic(path, []byte(`{"a":1}`), 0600))

	data, err := fileutils.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))

	_, err = fileutils.ReadFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "br.yaml")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0600))

	require.NoError(t, fileutils.WriteFileAtomic(path, []byte("new"), 0640))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestFirstExisting(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "rr.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("row_id\n"), 0600))

	assert.Equal(t, csvPath, fileutils.FirstExisting(filepath.Join(dir, "rr.yaml"), csvPath))
	assert.Equal(t, "", fileutils.FirstExisting(filepath.Join(dir, "none.yaml")))
}
