package source

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlManifest = `
root: lib
include: ["**/*.js"]
entry: main.js
whitelist: [console, Math]
modules:
  - id: config
    source: "exports.debug = true"
  - id: alias.js
    path: util.js
`

const tomlManifest = `
root = "lib"
include = ["**/*.js"]
entry = "main.js"

[[modules]]
id = "config"
source = "exports.debug = true"
`

func TestLoadManifestYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "modules.yaml", yamlManifest)
	writeFile(t, dir, "lib/main.js", "require('config')")
	writeFile(t, dir, "lib/util.js", "exports.util = 1")

	m, err := LoadManifest(filepath.Join(dir, "modules.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "main.js", m.Entry)
	assert.Equal(t, []string{"console", "Math"}, m.Whitelist)
	assert.Equal(t, filepath.Join(dir, "lib"), m.RootDir())

	ids, err := m.IDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"config", "alias.js", "main.js", "util.js"}, ids)

	p, err := m.Provider()
	require.NoError(t, err)
	ctx := context.Background()

	for id, want := range map[string]string{
		"config":   "exports.debug = true",
		"alias.js": "exports.util = 1",
		"main.js":  "require('config')",
	} {
		text, err := p.Source(ctx, id)
		require.NoError(t, err, id)
		assert.Equal(t, want, text, id)
	}
}

func TestLoadManifestTOML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "modules.toml", tomlManifest)

	m, err := LoadManifest(filepath.Join(dir, "modules.toml"))
	require.NoError(t, err)
	assert.Equal(t, "main.js", m.Entry)
	require.Len(t, m.Modules, 1)
	assert.Equal(t, "config", m.Modules[0].ID)
}

func TestParseManifestErrors(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		data string
	}{
		{"unsupported format", ".json", `{}`},
		{"bad yaml", ".yaml", "modules: [\n"},
		{"missing id", ".yaml", "modules:\n  - source: x\n"},
		{"duplicate id", ".yaml", "modules:\n  - id: a\n    source: x\n  - id: a\n    source: y\n"},
		{"no origin", ".yaml", "modules:\n  - id: a\n"},
		{"two origins", ".yaml", "modules:\n  - id: a\n    source: x\n    url: http://x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseManifest(tt.ext, []byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoadManifestMissingFile(t *testing.T) {
	_, err := LoadManifest(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
