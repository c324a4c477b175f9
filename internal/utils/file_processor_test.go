package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree creates files relative to root, creating directories as needed
func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, file := range files {
		path := filepath.Join(root, file)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("# "+file), 0644))
	}
}

func relative(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, path := range paths {
		rel, err := filepath.Rel(root, path)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestFileProcessor_Filters(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"app.splice.yaml",
		"app.plan.yaml",
		"README.md",
		"notes.yaml",
	)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)

	var descriptors, plans []string
	for _, entry := range entries {
		path := filepath.Join(root, entry.Name())
		if DescriptorFileFilter()(path, entry) {
			descriptors = append(descriptors, entry.Name())
		}
		if PlanFileFilter()(path, entry) {
			plans = append(plans, entry.Name())
		}
	}

	assert.Equal(t, []string{"app.splice.yaml"}, descriptors)
	assert.Equal(t, []string{"app.plan.yaml"}, plans)
}

func TestFileProcessor_DefaultDirectoryFilter(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"vendor", ".hidden", "testdata", "services"} {
		require.NoError(t, os.Mkdir(filepath.Join(root, dir), 0755))
	}

	entries, err := os.ReadDir(root)
	require.NoError(t, err)

	filter := DefaultDirectoryFilter()
	var kept []string
	for _, entry := range entries {
		if filter(filepath.Join(root, entry.Name()), entry) {
			kept = append(kept, entry.Name())
		}
	}
	assert.Equal(t, []string{"services"}, kept)
}

func TestFileProcessor_WalkFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"root.splice.yaml",
		"services/users/users.splice.yaml",
		"vendor/lib/lib.splice.yaml",
		"services/users/users.go",
	)

	fp := NewFileProcessor()

	recursive, err := fp.WalkFiles(root, FileWalkOptions{
		FileFilter:      DescriptorFileFilter(),
		DirectoryFilter: DefaultDirectoryFilter(),
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"root.splice.yaml", "services/users/users.splice.yaml"}, relative(t, root, recursive))

	flat, err := fp.WalkFiles(root, FileWalkOptions{
		FileFilter: DescriptorFileFilter(),
		NoRecurse:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"root.splice.yaml"}, relative(t, root, flat))
}

func TestSplitPattern(t *testing.T) {
	tests := []struct {
		pattern   string
		dir       string
		recursive bool
	}{
		{pattern: "./...", dir: ".", recursive: true},
		{pattern: "...", dir: ".", recursive: true},
		{pattern: "services/...", dir: "services", recursive: true},
		{pattern: "services", dir: "services", recursive: false},
		{pattern: "", dir: ".", recursive: false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			dir, recursive := SplitPattern(tt.pattern)
			assert.Equal(t, tt.dir, dir)
			assert.Equal(t, tt.recursive, recursive)
		})
	}
}

func TestFileProcessor_FindFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"a.splice.yaml",
		"nested/b.splice.yaml",
		"nested/deeper/c.splice.yaml",
	)

	fp := NewFileProcessor()

	t.Run("recursive pattern", func(t *testing.T) {
		files, err := fp.FindFiles([]string{root + "/..."}, DescriptorFileFilter())
		require.NoError(t, err)
		assert.Equal(t, []string{"a.splice.yaml", "nested/b.splice.yaml", "nested/deeper/c.splice.yaml"}, relative(t, root, files))
	})

	t.Run("single directory", func(t *testing.T) {
		files, err := fp.FindFiles([]string{filepath.Join(root, "nested")}, DescriptorFileFilter())
		require.NoError(t, err)
		assert.Equal(t, []string{"nested/b.splice.yaml"}, relative(t, root, files))
	})

	t.Run("overlapping patterns are deduplicated", func(t *testing.T) {
		files, err := fp.FindFiles([]string{
			root + "/...",
			filepath.Join(root, "nested"),
			filepath.Join(root, "a.splice.yaml"),
		}, DescriptorFileFilter())
		require.NoError(t, err)
		assert.Len(t, files, 3)
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := fp.FindFiles([]string{filepath.Join(root, "missing")}, DescriptorFileFilter())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to process path")
	})
}

func TestFileProcessor_RemoveFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"app.splice.yaml",
		"app.plan.yaml",
		"nested/child.plan.yaml",
	)

	fp := NewFileProcessor()
	removed, err := fp.RemoveFiles([]string{root + "/..."}, PlanFileFilter())
	require.NoError(t, err)
	assert.Equal(t, []string{"app.plan.yaml", "nested/child.plan.yaml"}, relative(t, root, removed))

	_, err = os.Stat(filepath.Join(root, "app.splice.yaml"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "app.plan.yaml"))
	assert.True(t, os.IsNotExist(err))

	again, err := fp.RemoveFiles([]string{root + "/..."}, PlanFileFilter())
	require.NoError(t, err)
	assert.Empty(t, again)
}
