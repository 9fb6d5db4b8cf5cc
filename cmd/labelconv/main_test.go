package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/label-designer/backend/internal/models"
)

const zplPayload = "^XA\n^PW816\n^LL1218\n^FO50,50^A0N,30,30^FDHello^FS\n^XZ\n"

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestConvertPayloadToYAMLFile(t *testing.T) {
	in := writeInput(t, "ship.zpl", zplPayload)
	out := filepath.Join(filepath.Dir(in), "ship.yaml")

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"-i", in, "-o", out, "--name", "renamed"}, &stdout, &stderr))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var doc models.TemplateDocument
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, "renamed", doc.Name)
	assert.Equal(t, models.ProtocolZPL, doc.Protocol)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "converted")
}

func TestConvertDocumentToPayloadOnStdout(t *testing.T) {
	in := writeInput(t, "ship.zpl", zplPayload)
	var yamlOut, stderr bytes.Buffer
	require.NoError(t, run([]string{"-i", in, "--to", "yaml"}, &yamlOut, &stderr))

	doc := writeInput(t, "ship.yaml", yamlOut.String())
	var stdout bytes.Buffer
	require.NoError(t, run([]string{"-i", doc, "--to", "zpl"}, &stdout, &stderr))
	assert.True(t, strings.HasPrefix(stdout.String(), "^XA\n"))
	assert.Contains(t, stdout.String(), "^PW")
	assert.Contains(t, stdout.String(), "^FDHello^FS")
}

func TestConvertRejectsCrossProtocol(t *testing.T) {
	in := writeInput(t, "ship.zpl", zplPayload)
	var stdout, stderr bytes.Buffer
	err := run([]string{"-i", in, "--to", "tpcl"}, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be rendered as tpcl")

	err = run([]string{"-i", in, "-o", filepath.Join(t.TempDir(), "x.tpcl")}, &stdout, &stderr)
	assert.Error(t, err)
}

func TestStrictModeExitCode(t *testing.T) {
	in := writeInput(t, "bad.zpl", "^XA\n^ZZ\n^FO1,1^FDok^FS\n^XZ\n")
	var stdout, stderr bytes.Buffer

	require.NoError(t, run([]string{"-i", in, "--to", "json"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "unsupported command")

	err := run([]string{"-i", in, "--to", "json", "--strict"}, &stdout, &stderr)
	require.Error(t, err)
	coder, ok := err.(*exitError)
	require.True(t, ok)
	assert.Equal(t, 2, coder.ExitCode())
}

func TestUsageErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Error(t, run([]string{}, &stdout, &stderr))
	assert.Error(t, run([]string{"-i", "x.zpl"}, &stdout, &stderr))
	assert.Error(t, run([]string{"-i", "missing.zpl", "--to", "json"}, &stdout, &stderr))
	assert.Error(t, run([]string{"--bogus"}, &stdout, &stderr))
	assert.NoError(t, run([]string{"--help"}, &stdout, &stderr))
}
