package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// Manifest describes where the modules of a program come from.
//
//	root: lib
//	include: ["**/*.js"]
//	entry: main.js
//	whitelist: [console]
//	modules:
//	  - id: config
//	    source: "exports.debug = true"
//	  - id: remote.js
//	    url: https://example.com/remote.js
type Manifest struct {
	Root      string       `yaml:"root" toml:"root"`
	Include   []string     `yaml:"include" toml:"include"`
	Entry     string       `yaml:"entry" toml:"entry"`
	Whitelist []string     `yaml:"whitelist" toml:"whitelist"`
	Modules   []ModuleSpec `yaml:"modules" toml:"modules"`

	// Directory of the manifest file, relative paths resolve against it
	dir string
}

// ModuleSpec defines one module explicitly. Exactly one of Path, URL and
// Source must be set.
type ModuleSpec struct {
	ID     string `yaml:"id" toml:"id"`
	Path   string `yaml:"path" toml:"path"`
	URL    string `yaml:"url" toml:"url"`
	Source string `yaml:"source" toml:"source"`
}

// LoadManifest reads a YAML (.yaml, .yml) or TOML (.toml) manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path) //nolint:gosec // manifest path is supplied by the operator
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	m, err := ParseManifest(filepath.Ext(path), data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.dir = filepath.Dir(path)
	return m, nil
}

// ParseManifest decodes data according to ext and validates the result.
func ParseManifest(ext string, data []byte) (*Manifest, error) {
	var m Manifest
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("YAML parse error: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("TOML parse error: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported manifest format %q", ext)
	}

	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	seen := make(map[string]bool, len(m.Modules))
	for i, spec := range m.Modules {
		if spec.ID == "" {
			return fmt.Errorf("modules[%d]: %w", i, errModuleMissingName)
		}
		if seen[spec.ID] {
			return fmt.Errorf("module %s already exists", spec.ID)
		}
		seen[spec.ID] = true

		set := 0
		for _, v := range []string{spec.Path, spec.URL, spec.Source} {
			if v != "" {
				set++
			}
		}
		if set != 1 {
			return fmt.Errorf("module %s: exactly one of path, url and source must be set", spec.ID)
		}
	}
	return nil
}

// RootDir returns the directory include patterns are matched in.
func (m *Manifest) RootDir() string {
	root := m.Root
	if root == "" {
		root = "."
	}
	if filepath.IsAbs(root) {
		return root
	}
	return filepath.Join(m.dir, root)
}

// Provider builds the provider chain: explicit modules first, then URLs,
// then the include patterns below the root.
func (m *Manifest) Provider() (Provider, error) {
	local := NewMapProvider(nil)
	urls := make(map[string]string)

	for _, spec := range m.Modules {
		switch {
		case spec.URL != "":
			urls[spec.ID] = spec.URL
		case spec.Path != "":
			p := spec.Path
			if !filepath.IsAbs(p) {
				p = filepath.Join(m.RootDir(), p)
			}
			data, err := os.ReadFile(p) //nolint:gosec // listed in the manifest
			if err != nil {
				return nil, fmt.Errorf("module %s: %w", spec.ID, err)
			}
			if err := local.Add(spec.ID, string(data)); err != nil {
				return nil, err
			}
		default:
			if err := local.Add(spec.ID, spec.Source); err != nil {
				return nil, err
			}
		}
	}

	chain := Chain{local}
	if len(urls) > 0 {
		chain = append(chain, NewURLProvider(urls, DefaultRetryConfig()))
	}
	if len(m.Include) > 0 {
		dir, err := NewDirProvider(m.RootDir(), m.Include...)
		if err != nil {
			return nil, err
		}
		chain = append(chain, dir)
	}
	return chain, nil
}

// IDs lists explicit module ids followed by the files matched by the
// include patterns.
func (m *Manifest) IDs() ([]string, error) {
	ids := make([]string, 0, len(m.Modules))
	seen := make(map[string]bool)
	for _, spec := range m.Modules {
		ids = append(ids, spec.ID)
		seen[spec.ID] = true
	}
	if len(m.Include) == 0 {
		return ids, nil
	}

	dir, err := NewDirProvider(m.RootDir(), m.Include...)
	if err != nil {
		return nil, err
	}
	found, err := dir.List()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	for _, id := range found {
		if !seen[id] {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
