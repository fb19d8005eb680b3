package platform

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Provider bundles the backends for one host platform.
type Provider struct {
	Name         string
	Introspector Introspector
	Scroller     Scroller

	// Close releases backend resources. May be nil.
	Close func() error
}

// Factory builds a Provider from backend options.
type Factory func(opts Options) (*Provider, error)

// ErrUnsupported is returned when no backend is registered under a name.
var ErrUnsupported = errors.New("unsupported backend")

// ErrNoProvider is returned when a Provider lacks a required backend.
var ErrNoProvider = errors.New("introspection not available for this backend")

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register makes a backend available under name. Backend packages call it
// from init(). Registering the same name twice replaces the earlier factory.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = f
}

// Backends returns the registered backend names in sorted order.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewProvider returns a Provider for the named backend.
func NewProvider(name string, opts Options) (*Provider, error) {
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)", ErrUnsupported, name, Backends())
	}
	p, err := f(opts)
	if err != nil {
		return nil, fmt.Errorf("backend %s: %w", name, err)
	}
	if p.Introspector == nil {
		return nil, fmt.Errorf("backend %s: %w", name, ErrNoProvider)
	}
	if p.Name == "" {
		p.Name = name
	}
	return p, nil
}
