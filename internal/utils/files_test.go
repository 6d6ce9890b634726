package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeWriteFileReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, SafeWriteFile(path, []byte("one")))
	require.NoError(t, SafeWriteFile(path, []byte("two")))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(b))
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "waves", "2024")
	require.NoError(t, EnsureProjectDir(nested))
	require.NoError(t, os.WriteFile(filepath.Join(root, "project.json"), []byte("{}"), 0o644))

	got, err := FindProjectRoot(nested)
	require.NoError(t, err)
	assert.Equal(t, root, got)

	_, err = FindProjectRoot(t.TempDir())
	assert.ErrorIs(t, err, ErrNoProjectRoot)
}

func TestPrettyJSON(t *testing.T) {
	b, err := PrettyJSON(map[string]int{"n": 1})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"n\": 1\n}", string(b))
}
