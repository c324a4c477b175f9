package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileReader_CachesUntilModified(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.splice.yaml")
	require.NoError(t, os.WriteFile(path, []byte("specifications: []\n"), 0644))

	reader := NewFileReader()

	first, err := reader.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "specifications: []\n", first)

	second, err := reader.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	stats := reader.GetCacheStats()
	assert.Equal(t, 1, stats.Size)
	assert.EqualValues(t, 1, stats.Hits)

	// Make sure the modification time moves forward
	later := time.Now().Add(2 * time.Second)
	require.NoError(t, os.WriteFile(path, []byte("injectors: []\n"), 0644))
	require.NoError(t, os.Chtimes(path, later, later))

	third, err := reader.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "injectors: []\n", third)
}

func TestFileReader_InvalidateAndClear(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.splice.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0644))

	reader := NewFileReader()
	_, err := reader.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, reader.GetCacheStats().Size)

	reader.InvalidateFile(path)
	assert.Equal(t, 0, reader.GetCacheStats().Size)

	_, err = reader.ReadFile(path)
	require.NoError(t, err)
	reader.ClearCache()
	assert.Equal(t, 0, reader.GetCacheStats().Size)
}

func TestFileReader_Errors(t *testing.T) {
	reader := NewFileReader()

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "empty path", path: "  ", want: "file path cannot be empty"},
		{name: "missing file", path: filepath.Join(t.TempDir(), "missing.yaml"), want: "file does not exist"},
		{name: "inner traversal", path: "configs/../../etc/passwd", want: "path traversal not allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reader.ReadFile(tt.path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
