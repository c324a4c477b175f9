package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gopkg.in/yaml.v3"

	"github.com/toyz/splice/internal/errors"
)

func TestGenerator_Resolve(t *testing.T) {
	dir := projectDir(t)
	output := filepath.Join(dir, "out", DefaultOutput)

	g := NewGenerator(nil, zaptest.NewLogger(t))
	err := g.Resolve(Config{
		Paths:      []string{dir + "/..."},
		ModuleName: "example.com/custom",
		Output:     output,
	})
	require.NoError(t, err)

	summary := g.GetSummary()
	assert.Len(t, summary.DescriptorFiles, 2)
	assert.Equal(t, "example.com/custom", summary.Module)
	assert.Equal(t, 2, summary.Injectors)
	assert.Equal(t, 3, summary.Providers)
	assert.Equal(t, 0, summary.Cached)
	assert.Equal(t, output, summary.PlanFile)

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	var doc PlanDocument
	require.NoError(t, yaml.Unmarshal(data, &doc))
	_, err = uuid.Parse(doc.BuildID)
	assert.NoError(t, err)
	assert.Equal(t, summary.BuildID, doc.BuildID)
	assert.Equal(t, "example.com/custom", doc.Module)
	require.Len(t, doc.Injectors, 2)

	app := doc.Injectors[0]
	assert.Equal(t, "App", app.Name)
	require.Len(t, app.Providers, 2)

	server := app.Providers[0].Plan
	assert.Equal(t, "direct", server.Kind)
	assert.Equal(t, "AppSpecs.NewServer", server.Factory)
	require.Len(t, server.Arguments, 2)
	assert.Equal(t, "scoped", server.Arguments[0].Fabrication)
	assert.Equal(t, "deferred", server.Arguments[1].Kind)
	require.NotNil(t, server.Arguments[1].Inner)
	assert.Equal(t, "container", server.Arguments[1].Inner.Fabrication)

	plugins := app.Providers[1].Plan
	assert.Equal(t, "combine", plugins.Kind)
	assert.Len(t, plugins.Elements, 2)

	require.Len(t, app.DependencyImplementations, 1)
	assert.Equal(t, "Worker", app.DependencyImplementations[0].Child)
	assert.Equal(t, "WorkerDeps", app.DependencyImplementations[0].Dependency)

	require.Len(t, app.Frames, 2)
	assert.Equal(t, 0, app.Frames[0].ID)
	assert.Equal(t, "AppSpecs.NewRequestScope", app.Frames[1].Opener)

	assert.Equal(t, "Worker", doc.Injectors[1].Name)
}

func TestGenerator_ReusesCachedPlans(t *testing.T) {
	dir := projectDir(t)
	config := Config{
		Paths:      []string{dir + "/..."},
		ModuleName: "example.com/app",
		Output:     filepath.Join(dir, DefaultOutput),
	}

	g := NewGenerator(nil, nil)
	require.NoError(t, g.Resolve(config))
	first := g.GetSummary()

	require.NoError(t, g.Resolve(config))
	second := g.GetSummary()

	assert.Equal(t, 2, second.Cached)
	assert.NotEqual(t, first.BuildID, second.BuildID)
}

func TestGenerator_ModuleFromGoMod(t *testing.T) {
	dir := projectDir(t)
	chdir(t, dir)

	g := NewGenerator(nil, nil)
	require.NoError(t, g.Resolve(Config{}))

	summary := g.GetSummary()
	assert.Equal(t, "example.com/app", summary.Module)
	assert.Equal(t, DefaultOutput, summary.PlanFile)
	_, err := os.Stat(filepath.Join(dir, DefaultOutput))
	assert.NoError(t, err)
}

func TestGenerator_Check(t *testing.T) {
	dir := projectDir(t)

	g := NewGenerator(nil, nil)
	require.NoError(t, g.Check(Config{Paths: []string{dir + "/..."}, Output: filepath.Join(dir, DefaultOutput)}))
	assert.Empty(t, g.GetSummary().PlanFile)

	_, err := os.Stat(filepath.Join(dir, DefaultOutput))
	assert.True(t, os.IsNotExist(err))
}

func TestGenerator_ReportsDiagnostics(t *testing.T) {
	dir := projectDir(t)
	writeFiles(t, dir, map[string]string{
		"broken.splice.yaml": `
injectors:
  - name: Broken
    providers:
      - member: Missing
        type: example.com/app.Missing
      - member: AlsoMissing
        type: example.com/app.AlsoMissing
`,
	})
	output := filepath.Join(dir, DefaultOutput)

	g := NewGenerator(nil, nil)
	err := g.Resolve(Config{Paths: []string{dir + "/..."}, ModuleName: "example.com/app", Output: output})
	require.Error(t, err)

	var diags *errors.Diagnostics
	require.ErrorAs(t, err, &diags)
	assert.Equal(t, 2, diags.Count())
	assert.True(t, diags.HasKind(errors.IncompleteSpecification))

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestGenerator_Failures(t *testing.T) {
	t.Run("no descriptors", func(t *testing.T) {
		dir := t.TempDir()
		err := NewGenerator(nil, nil).Check(Config{Paths: []string{dir}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no descriptor documents")
	})

	t.Run("missing path", func(t *testing.T) {
		err := NewGenerator(nil, nil).Check(Config{Paths: []string{filepath.Join(t.TempDir(), "nope")}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to process path")
	})

	t.Run("invalid config", func(t *testing.T) {
		err := NewGenerator(nil, nil).Check(Config{Verbose: true, Quiet: true})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be used together")
	})

	t.Run("yaml syntax", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{"bad.splice.yaml": "injectors: [\n"})
		err := NewGenerator(nil, nil).Check(Config{Paths: []string{dir}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse descriptor file")
	})
}
