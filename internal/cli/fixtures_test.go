package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const appDescriptor = `
specifications:
  - name: AppSpecs
    instantiation: instantiated
    factories:
      - member: NewConfig
        type: example.com/app.Config
        fabrication: scoped
      - member: NewRequestScope
        type: example.com/app.RequestScope
        fabrication: container
      - member: NewServer
        type: "*example.com/app.Server"
        params: [example.com/app.Config, "func() example.com/app.RequestScope"]
      - member: CorePlugins
        type: "[]example.com/app.Plugin"
        partial: true
      - member: ExtraPlugins
        type: "[]example.com/app.Plugin"
        partial: true
injectors:
  - name: App
    specifications: [AppSpecs]
    providers:
      - member: Server
        type: "*example.com/app.Server"
      - member: Plugins
        type: "[]example.com/app.Plugin"
    children:
      - member: NewWorker
        injector: Worker
`

const workerDescriptor = `
dependencies:
  - name: WorkerDeps
    providers:
      - member: Config
        type: example.com/app.Config
injectors:
  - name: Worker
    dependencies: [WorkerDeps]
    providers:
      - member: Config
        type: example.com/app.Config
`

// writeFiles writes name/content pairs below dir
func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func projectDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"go.mod":                           "module example.com/app\n\ngo 1.25\n",
		"app.splice.yaml":                  appDescriptor,
		"internal/worker/worker.splice.yaml": workerDescriptor,
	})
	return dir
}

// chdir changes the working directory for the duration of the test,
// mirroring testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
