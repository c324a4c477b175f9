package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleResolver_ResolveModuleName(t *testing.T) {
	resolver := NewModuleResolver(nil)

	t.Run("custom module name provided", func(t *testing.T) {
		result, err := resolver.ResolveModuleName("github.com/custom/module")
		require.NoError(t, err)
		assert.Equal(t, "github.com/custom/module", result)
	})

	t.Run("read from go.mod in a parent directory", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{
			"go.mod": `module github.com/example/testapp

go 1.25

require (
	github.com/spf13/cobra v1.10.1
)
`,
		})
		nested := filepath.Join(dir, "internal", "deep")
		require.NoError(t, os.MkdirAll(nested, 0755))
		chdir(t, nested)

		result, err := resolver.ResolveModuleName("")
		require.NoError(t, err)
		assert.Equal(t, "github.com/example/testapp", result)
	})
}

func TestModuleResolver_ResolveFrom(t *testing.T) {
	resolver := NewModuleResolver(nil)

	t.Run("missing module directive", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{"go.mod": "go 1.25\n"})

		_, err := resolver.ResolveFrom(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no module declaration")
	})

	t.Run("malformed go.mod", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{"go.mod": "module \"unterminated\n"})

		_, err := resolver.ResolveFrom(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse go.mod file")
	})
}
