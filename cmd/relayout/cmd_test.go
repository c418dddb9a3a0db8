package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewCLI()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, version)
}

func TestShapeCommand(t *testing.T) {
	out, err := execute(t, "shape", "--sizes", "2,3,4", "--strides", "4,1,12")
	require.NoError(t, err)
	assert.Contains(t, out, "shape: [4 2 3]")
	assert.Contains(t, out, "STRIDE")

	out, err = execute(t, "shape", "--sizes", "5,7", "--strides", "2,2")
	require.NoError(t, err)
	assert.Contains(t, out, "shape: [7 5]")
}

func TestShapeCommandMismatch(t *testing.T) {
	_, err := execute(t, "shape", "--sizes", "2,3", "--strides", "1")
	assert.Error(t, err)
}

const runConfig = `
log:
  level: error
nodes:
  - name: conv1/to_standard
    op: ToStandardLayout
    device: CPU
    label: accel
    attrs:
      data_format: NHWC
      T: float32
`

func writeConfig(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "node.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

func TestRunCommand(t *testing.T) {
	path := writeConfig(t, runConfig)

	out, err := execute(t, "run", "--config", path, "--shape", "2,3,4", "--physical", "0,2,1")
	require.NoError(t, err)
	assert.Contains(t, out, "conv1/to_standard")
	assert.Contains(t, out, "ok")

	out, err = execute(t, "run", "--config", path, "--shape", "2,3,4,5")
	require.NoError(t, err)
	assert.Contains(t, out, "float32[2 3 4 5] on CPU")
}

func TestRunCommandUnknownKernel(t *testing.T) {
	path := writeConfig(t, `
nodes:
  - name: double
    op: ToStandardLayout
    label: accel
    attrs:
      data_format: NCHW
      T: float64
`)

	_, err := execute(t, "run", "--config", path)
	assert.ErrorIs(t, err, errRoundTrip)
}

func TestRunCommandBadConfig(t *testing.T) {
	path := writeConfig(t, "nodes:\n  - name: a\n")
	_, err := execute(t, "run", "--config", path)
	assert.Error(t, err)
}
