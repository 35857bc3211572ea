package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testManifest = `entry: main.js
include:
  - "lib/**/*.js"
modules:
  - id: main.js
    source: |
      var greet = require('greet.js');
      var util = require('lib/util.js');
      exports.message = greet.hello(util.name);
      exports.hello = greet.hello;
  - id: greet.js
    source: |
      exports.hello = function hello(name) { return 'hello ' + name; };
`

func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "lib"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib", "util.js"), []byte("exports.name = 'world';\n"), 0o600))
	path := filepath.Join(dir, "modloader.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testManifest), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunPrintsEntryExports(t *testing.T) {
	manifest := writeProject(t)

	out, err := execute(t, "run", "--manifest", manifest, "--log-level", "error")
	require.NoError(t, err)
	assert.JSONEq(t, `{"message": "hello world", "hello": "[Function: hello]"}`, out)
}

func TestRunExplicitEntry(t *testing.T) {
	manifest := writeProject(t)

	out, err := execute(t, "run", "-m", manifest, "--entry", "lib/util.js", "--log-level", "error")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name": "world"}`, out)
}

func TestRunErrors(t *testing.T) {
	manifest := writeProject(t)

	t.Run("missing module", func(t *testing.T) {
		_, err := execute(t, "run", "-m", manifest, "-e", "absent.js", "--log-level", "error")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "absent.js")
	})

	t.Run("missing manifest", func(t *testing.T) {
		_, err := execute(t, "run", "-m", filepath.Join(t.TempDir(), "none.yaml"), "--log-level", "error")
		require.Error(t, err)
	})

	t.Run("no entry", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "m.toml")
		require.NoError(t, os.WriteFile(path, []byte("[[modules]]\nid = \"a.js\"\nsource = \"exports.a = 1\"\n"), 0o600))
		_, err := execute(t, "run", "-m", path, "--log-level", "error")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no entry module")
	})

	t.Run("bad log level", func(t *testing.T) {
		_, err := execute(t, "run", "-m", manifest, "--log-level", "loud")
		require.Error(t, err)
	})
}

func TestDeps(t *testing.T) {
	manifest := writeProject(t)

	out, err := execute(t, "deps", "-m", manifest, "--log-level", "error")
	require.NoError(t, err)
	assert.Equal(t, "main.js <- greet.js, lib/util.js\ngreet.js\nlib/util.js\n", out)

	out, err = execute(t, "deps", "-m", manifest, "--json", "--log-level", "error")
	require.NoError(t, err)
	assert.JSONEq(t, `{"main.js": ["greet.js", "lib/util.js"], "greet.js": [], "lib/util.js": []}`, out)
}

func TestRunLogsToStderr(t *testing.T) {
	manifest := writeProject(t)

	cmd := newRootCmd()
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs([]string{"run", "-m", manifest, "--log-level", "debug"})
	require.NoError(t, cmd.Execute())

	assert.JSONEq(t, `{"message": "hello world", "hello": "[Function: hello]"}`, stdout.String())
	assert.Contains(t, stderr.String(), `"message":"module loaded"`)
	assert.Contains(t, stderr.String(), `"module":"lib/util.js"`)
}
