package adaptor

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/uxsignals/tracklight/pkg/tracklight/config"
)

// Factory constructs an adaptor from file-level configuration.
type Factory func(cfg config.Config) (Adaptor, error)

// Registry maps adaptor kind names to factories, so config files can name
// the destinations they want without compile-time wiring.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory for a kind name.
func (r *Registry) Register(kind string, factory Factory) error {
	if kind == "" {
		return errors.New("adaptor kind is required")
	}
	if factory == nil {
		return errors.New("factory is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("factory for adaptor kind %q already registered", kind)
	}

	r.factories[kind] = factory
	return nil
}

// MustRegister registers a factory, panicking on error.
func (r *Registry) MustRegister(kind string, factory Factory) {
	if err := r.Register(kind, factory); err != nil {
		panic(err)
	}
}

// New constructs an adaptor of the given kind.
func (r *Registry) New(kind string, cfg config.Config) (Adaptor, error) {
	r.mu.RLock()
	factory, exists := r.factories[kind]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unknown adaptor kind %q", kind)
	}
	return factory(cfg)
}

// Kinds returns all registered kind names, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// DefaultRegistry holds the built-in adaptors.
var DefaultRegistry = NewRegistry()

func init() {
	DefaultRegistry.MustRegister("console", func(_ config.Config) (Adaptor, error) {
		return NewConsoleAdaptor(nil), nil
	})
	DefaultRegistry.MustRegister("recorder", func(cfg config.Config) (Adaptor, error) {
		return NewRecorderAdaptor(cfg.String("name", "recorder")), nil
	})
}
