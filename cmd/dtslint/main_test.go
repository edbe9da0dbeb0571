package main

import (
	"bytes"
	gocontext "context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestRunReportsMissingRequiredProperty(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "board.dts", `/{ node@1 { reg = <0x1>; }; };`)

	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)

	err := run(gocontext.Background(), log, []string{path}, nil, "text", &buf)

	require.Error(t, err)
	assert.Contains(t, buf.String(), "REQUIRED")
}

func TestRunCleanTreeSucceeds(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "board.dts", `/{ node@1 { compatible = "v,x"; }; };`)

	var buf bytes.Buffer
	log := logrus.New()

	err := run(gocontext.Background(), log, []string{path}, nil, "text", &buf)

	assert.NoError(t, err)
}

func TestRunXMLFormat(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "board.dts", `/{ lbl: node { compatible = "v,x"; }; };`)

	var buf bytes.Buffer
	log := logrus.New()

	err := run(gocontext.Background(), log, []string{path}, nil, "xml", &buf)

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "<node name=")
}

func TestRunLoadsAdditionalBindingPack(t *testing.T) {
	dir := t.TempDir()
	dtsPath := writeTemp(t, dir, "board.dts", `/{ node@1 { compatible = "v,x"; vendor,flag; }; };`)
	yamlPath := writeTemp(t, dir, "pack.yaml", `bindings:
  - name: vendor,flag
    types: [empty]
    required: required
`)

	var buf bytes.Buffer
	log := logrus.New()

	err := run(gocontext.Background(), log, []string{dtsPath}, []string{yamlPath}, "text", &buf)

	assert.NoError(t, err)
}

func TestRunReportsFileReadError(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()

	err := run(gocontext.Background(), log, []string{"/nonexistent/path.dts"}, nil, "text", &buf)

	require.Error(t, err)
}
