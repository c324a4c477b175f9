package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestDiagnostics(level DiagnosticLevel) (*DiagnosticSystem, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	d := NewDiagnosticSystem(level)
	d.SetOutput(&out, &errOut)
	d.SetColors(false)
	d.SetShowTime(false)
	return d, &out, &errOut
}

func TestDiagnosticSystem_Levels(t *testing.T) {
	tests := []struct {
		level   DiagnosticLevel
		visible []string
		hidden  []string
	}{
		{DiagnosticSilent, nil, []string{"[ERROR]", "[WARN]", "[INFO]"}},
		{DiagnosticError, []string{"[ERROR]"}, []string{"[WARN]", "[INFO]"}},
		{DiagnosticInfo, []string{"[ERROR]", "[WARN]", "[INFO]", "[SUCCESS]"}, []string{"[VERBOSE]", "[DEBUG]"}},
		{DiagnosticVerbose, []string{"[VERBOSE]"}, []string{"[DEBUG]"}},
		{DiagnosticDebug, []string{"[VERBOSE]", "[DEBUG]"}, nil},
	}

	for _, tt := range tests {
		d, out, errOut := newTestDiagnostics(tt.level)
		d.Error("broken %d", 1)
		d.Warn("careful")
		d.Info("note")
		d.Success("done")
		d.Verbose("detail")
		d.Debug("trace")

		all := out.String() + errOut.String()
		for _, s := range tt.visible {
			assert.Contains(t, all, s, "level %d", tt.level)
		}
		for _, s := range tt.hidden {
			assert.NotContains(t, all, s, "level %d", tt.level)
		}
		if tt.level >= DiagnosticError {
			assert.Equal(t, "[ERROR] broken 1\n", errOut.String())
		}
	}
}

func TestDiagnosticSystem_Progress(t *testing.T) {
	d, out, errOut := newTestDiagnostics(DiagnosticInfo)

	d.StartProgress("Scanning")
	d.EndProgress(true, "2 files")
	d.StartProgress("Loading")
	d.EndProgress(false, "")
	d.EndProgress(true, "ignored without a step")

	assert.Equal(t, "✓ Scanning (2 files)\n", out.String())
	assert.Equal(t, "✗ Loading\n", errOut.String())

	d, out, _ = newTestDiagnostics(DiagnosticVerbose)
	d.Indent()
	d.StartProgress("Planning")
	d.EndProgress(true, "")
	d.Unindent()
	d.Unindent()
	assert.Equal(t, "  - Planning...\n  ✓ Planning\n", out.String())
}

func TestDiagnosticSystem_Layout(t *testing.T) {
	d, out, _ := newTestDiagnostics(DiagnosticInfo)

	d.Header("Resolving injectors")
	d.SourcePath("./...", "./cmd")
	d.PhaseHeader("Planning")
	d.PhaseItem("App")
	d.PhaseProgress("Writing splice.plan.yaml")
	d.PhaseProgress("Binding")
	d.Summary("Summary", map[string]interface{}{"injectors": 2, "frames": 3})
	d.Complete("Done")

	assert.Equal(t, "Splice: Resolving injectors\n"+
		"Source Path: ./..., ./cmd\n\n"+
		"Planning:\n"+
		"✓ App\n"+
		"✏ Writing splice.plan.yaml\n"+
		"- Binding\n"+
		"\nSummary\n   frames: 3\n   injectors: 2\n\n"+
		"\nSplice: Done\n", out.String())
}

func TestDiagnosticSystem_Quiet(t *testing.T) {
	d, out, _ := newTestDiagnostics(DiagnosticError)
	d.Header("hidden")
	d.List("hidden")
	d.Summary("hidden", map[string]interface{}{"a": 1})
	assert.Empty(t, out.String())
	assert.Equal(t, DiagnosticError, NewQuietDiagnostics().Level())
	assert.Equal(t, DiagnosticVerbose, NewVerboseDiagnostics().Level())
}

func TestShouldUseColors(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("FORCE_COLOR", "")

	t.Setenv("TERM", "dumb")
	assert.False(t, shouldUseColors())

	t.Setenv("TERM", "xterm-256color")
	assert.True(t, shouldUseColors())

	t.Setenv("NO_COLOR", "1")
	assert.False(t, shouldUseColors())

	t.Setenv("NO_COLOR", "")
	t.Setenv("TERM", "")
	t.Setenv("FORCE_COLOR", "1")
	assert.True(t, shouldUseColors())
}
