package source

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/GriffinCanCode/modloader/internal/sandbox"
)

// ErrNotFound reports an unknown id. It also matches sandbox.ErrNotFound,
// which is how the registry tells a missing module from a failed fetch.
var ErrNotFound error = notFoundError{}

var errModuleMissingName = errors.New("module does not have a name")

type notFoundError struct{}

func (notFoundError) Error() string { return "module source not found" }

func (notFoundError) Is(target error) bool { return target == sandbox.ErrNotFound }

// A Provider supplies module source text by identifier.
type Provider interface {
	Source(ctx context.Context, id string) (string, error)
}

// MapProvider serves modules defined in memory.
type MapProvider struct {
	modules map[string]string
	mu      sync.RWMutex
}

// NewMapProvider creates a provider holding modules.
func NewMapProvider(modules map[string]string) *MapProvider {
	p := &MapProvider{modules: make(map[string]string, len(modules))}
	for id, text := range modules {
		p.modules[id] = text
	}
	return p
}

// Add defines a module. Ids must be non-empty and unique.
func (p *MapProvider) Add(id, text string) error {
	if id == "" {
		return errModuleMissingName
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.modules == nil {
		p.modules = make(map[string]string)
	}
	if _, exists := p.modules[id]; exists {
		return fmt.Errorf("module %s already exists", id)
	}
	p.modules[id] = text
	return nil
}

func (p *MapProvider) Source(_ context.Context, id string) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if text, ok := p.modules[id]; ok {
		return text, nil
	}
	return "", fmt.Errorf("module %s: %w", id, ErrNotFound)
}

// List returns the defined ids in sorted order.
func (p *MapProvider) List() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make([]string, 0, len(p.modules))
	for id := range p.modules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Chain asks each provider in turn. The first answer that is not
// ErrNotFound wins.
type Chain []Provider

func (c Chain) Source(ctx context.Context, id string) (string, error) {
	for _, p := range c {
		text, err := p.Source(ctx, id)
		if err == nil {
			return text, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", err
		}
	}
	return "", fmt.Errorf("module %s: %w", id, ErrNotFound)
}
