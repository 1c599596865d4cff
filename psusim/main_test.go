package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	color.NoColor = true
	var out bytes.Buffer
	cmd := newCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestRunScenarioFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hold.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: hold
steps: 4
voltage: {kind: constant, value: 512}
`), 0o644))

	out := run(t, "run", "--changes", path)

	assert.Equal(t, 1, strings.Count(out, "step "), out)
	assert.Contains(t, out, "|V:12.50V I:0.25A|")
	assert.Contains(t, out, "|Limit:0.32A     |")
}

func TestRunDefaultScenario(t *testing.T) {
	out := run(t, "run", "-n", "2")
	assert.Equal(t, 2, strings.Count(out, "step "))
	assert.Contains(t, out, "|V:0.00V  I:0.25A|")
}

func TestExample(t *testing.T) {
	out := run(t, "example")
	assert.Contains(t, out, "name: ramp")
	assert.Contains(t, out, "interval: 50ms")
}
