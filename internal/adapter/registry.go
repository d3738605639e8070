package adapter

import (
	"time"

	"github.com/rotisserie/eris"
)

// SchemaProvider is implemented by adapters whose mapping is declarative.
type SchemaProvider interface {
	Schema() Schema
}

// Registry maps source keys to adapters.
type Registry struct {
	adapters map[string]Adapter
	order    []string // insertion order for deterministic iteration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[string]Adapter),
	}
}

// DefaultRegistry registers every known provider in output order:
// cd35, cd44, rennes, diro.
func DefaultRegistry(now func() time.Time) *Registry {
	r := NewRegistry()
	r.Register(NewCD35())
	r.Register(NewCD44())
	r.Register(NewRennes())
	r.Register(NewDIRO(now))
	return r
}

// Register adds an adapter. Registering the same key twice replaces the
// adapter but keeps its original position.
func (r *Registry) Register(a Adapter) {
	key := a.Key()
	if _, exists := r.adapters[key]; !exists {
		r.order = append(r.order, key)
	}
	r.adapters[key] = a
}

// Get returns an adapter by key.
func (r *Registry) Get(key string) (Adapter, error) {
	a, ok := r.adapters[key]
	if !ok {
		return nil, eris.Errorf("adapter: unknown source %q", key)
	}
	return a, nil
}

// Select returns the named adapters in registration order. An empty names
// list selects everything.
func (r *Registry) Select(names []string) ([]Adapter, error) {
	if len(names) == 0 {
		return r.All(), nil
	}
	want := make(map[string]bool, len(names))
	for _, name := range names {
		if _, err := r.Get(name); err != nil {
			return nil, err
		}
		want[name] = true
	}
	var result []Adapter
	for _, key := range r.order {
		if want[key] {
			result = append(result, r.adapters[key])
		}
	}
	return result, nil
}

// All returns all adapters in registration order.
func (r *Registry) All() []Adapter {
	result := make([]Adapter, 0, len(r.order))
	for _, key := range r.order {
		result = append(result, r.adapters[key])
	}
	return result
}

// AllNames returns all registered keys in registration order.
func (r *Registry) AllNames() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
