package simulation

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Registry errors
var (
	ErrAlreadyRegistered = errors.New("simulation already registered")
	ErrNotFound          = errors.New("simulation not found")
)

// Registry manages available simulations
type Registry struct {
	mu          sync.RWMutex
	simulations map[string]func() Simulation
}

// NewRegistry creates a new simulation registry
func NewRegistry() *Registry {
	return &Registry{
		simulations: make(map[string]func() Simulation),
	}
}

// Register adds a simulation factory under name
func (r *Registry) Register(name string, factory func() Simulation) error {
	if factory == nil {
		return fmt.Errorf("simulation %s has no factory", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.simulations[name]; exists {
		return fmt.Errorf("%s: %w", name, ErrAlreadyRegistered)
	}

	r.simulations[name] = factory
	return nil
}

// Get returns a new instance of the requested simulation
func (r *Registry) Get(name string) (Simulation, error) {
	r.mu.RLock()
	factory, exists := r.simulations[name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}

	return factory(), nil
}

// Has reports whether name is registered
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.simulations[name]
	return exists
}

// List returns all registered simulation names in order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.simulations))
	for name := range r.simulations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global simulation registry
var DefaultRegistry = NewRegistry()
