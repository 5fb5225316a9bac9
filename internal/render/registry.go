package render

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages renderers by name.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]Renderer
}

// NewRegistry creates an empty renderer registry.
func NewRegistry() *Registry {
	return &Registry{
		renderers: make(map[string]Renderer),
	}
}

// NewDefaultRegistry creates a registry holding the built-in renderers.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, rd := range []Renderer{Text{}, Markdown{}, HTML{}, JSON{}} {
		r.MustRegister(rd)
	}
	return r
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(rd Renderer) {
	if err := r.Register(rd); err != nil {
		panic(err)
	}
}

// Register adds a renderer to the registry.
func (r *Registry) Register(rd Renderer) error {
	if rd == nil {
		return fmt.Errorf("cannot register nil renderer")
	}
	name := rd.Name()
	if name == "" {
		return fmt.Errorf("renderer name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.renderers[name]; exists {
		return fmt.Errorf("renderer already registered: %s", name)
	}

	r.renderers[name] = rd
	return nil
}

// Get returns a renderer by name.
func (r *Registry) Get(name string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rd, ok := r.renderers[name]
	if !ok {
		return nil, fmt.Errorf("unknown output format: %s", name)
	}
	return rd, nil
}

// List returns all registered renderer names (sorted).
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.renderers))
	for name := range r.renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has checks if a renderer is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.renderers[name]
	return ok
}

// Count returns the number of registered renderers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.renderers)
}

// Unregister removes a renderer from the registry.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.renderers[name]; !ok {
		return fmt.Errorf("unknown output format: %s", name)
	}
	delete(r.renderers, name)
	return nil
}

// DefaultRegistry is the global renderer registry.
var DefaultRegistry = NewDefaultRegistry()

// Get returns a renderer from the default registry.
func Get(name string) (Renderer, error) {
	return DefaultRegistry.Get(name)
}

// List returns all renderer names from the default registry.
func List() []string {
	return DefaultRegistry.List()
}
