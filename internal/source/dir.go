package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gabriel-vasile/mimetype"
)

// DefaultPatterns matches every .js file below the root.
var DefaultPatterns = []string{"**/*.js"}

// DirProvider serves files below a root directory. A module id is the
// slash separated path relative to the root and must match one of the
// patterns.
type DirProvider struct {
	root     string
	fsys     fs.FS
	patterns []string
}

// NewDirProvider creates a provider for root. No patterns means
// DefaultPatterns.
func NewDirProvider(root string, patterns ...string) (*DirProvider, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid pattern %q", pattern)
		}
	}
	return &DirProvider{
		root:     root,
		fsys:     os.DirFS(root),
		patterns: patterns,
	}, nil
}

// Root returns the directory served.
func (p *DirProvider) Root() string {
	return p.root
}

func (p *DirProvider) Source(_ context.Context, id string) (string, error) {
	name := path.Clean(id)
	if !fs.ValidPath(name) || !p.matches(name) {
		return "", fmt.Errorf("module %s: %w", id, ErrNotFound)
	}

	data, err := fs.ReadFile(p.fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("module %s: %w", id, ErrNotFound)
		}
		return "", fmt.Errorf("failed to read module %s: %w", id, err)
	}
	if mtype := mimetype.Detect(data); !isText(mtype) {
		return "", fmt.Errorf("module %s is not a text file (%s)", id, mtype.String())
	}
	return string(data), nil
}

func isText(mtype *mimetype.MIME) bool {
	return strings.HasPrefix(mtype.String(), "text/") ||
		mtype.Is("application/json") ||
		mtype.Is("application/javascript")
}

// List returns every id matched by the patterns, sorted.
func (p *DirProvider) List() ([]string, error) {
	seen := make(map[string]struct{})
	for _, pattern := range p.patterns {
		matches, err := doublestar.Glob(p.fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", p.root, err)
		}
		for _, m := range matches {
			seen[m] = struct{}{}
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (p *DirProvider) matches(name string) bool {
	for _, pattern := range p.patterns {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
