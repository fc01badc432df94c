package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSurfaceCUE = `surface: Calculator: {
	purpose: "arithmetic"

	operation: add: args: ["a", "b"]
	operation: describe: args: []
}
`

const validScenarioYAML = `name: cli-pass
description: Stubbed call for CLI coverage.
doubles:
  - name: calc
configure:
  - double: calc
    operation: add
    args: [1, 2]
    returns: 3
calls:
  - double: calc
    operation: add
    args: [1, 2]
    expect:
      result: 3
assertions:
  - type: call_count
    double: calc
    operation: add
    count: 1
`

// writeFixture writes one file into dir and returns its path.
func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// executeCommand runs the root command with args and captures stdout.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidate_AllFilesValid(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "calculator.cue", validSurfaceCUE)
	writeFixture(t, dir, "scenario.yaml", validScenarioYAML)

	out, err := executeCommand(t, "validate", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "All files valid (1 surface(s))")
}

func TestValidate_DirectoryNotFound(t *testing.T) {
	_, err := executeCommand(t, "validate", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidate_InvalidSurface(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "broken.cue", `surface: Calculator: { purpose: "no operations" }`)

	out, err := executeCommand(t, "validate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Validation failed")
	assert.Contains(t, out, "broken.cue")
	assert.Contains(t, out, "at least one operation is required")
}

func TestValidate_InvalidScenario(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "broken.yaml", `name: broken
description: Missing doubles.
calls:
  - double: calc
    operation: add
assertions:
  - type: call_order
    operations: [add]
`)

	out, err := executeCommand(t, "validate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "broken.yaml")
	assert.Contains(t, out, "doubles list is required")
}

func TestValidate_JSONOutput(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "calculator.cue", validSurfaceCUE)

	out, err := executeCommand(t, "validate", dir, "--format", "json")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, data["valid"])
	assert.Equal(t, float64(1), data["surfaces"])
}

func TestValidate_JSONOutputWithErrors(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "broken.cue", `surface: Calculator: { purpose: "no operations" }`)

	out, err := executeCommand(t, "validate", dir, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_VALIDATE", resp.Error.Code)
}

func TestValidate_InvalidFormatFlag(t *testing.T) {
	_, err := executeCommand(t, "validate", t.TempDir(), "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}
