package thinker

import (
	"fmt"
	"sync"
)

// Registry manages named Thinker providers
type Registry interface {
	// Register registers a provider
	Register(t Thinker) error

	// Get retrieves a provider by name
	Get(name string) (Thinker, error)

	// List returns all registered provider names
	List() []string
}

type registry struct {
	mu        sync.RWMutex
	providers map[string]Thinker
}

// NewRegistry creates a new provider registry
func NewRegistry() Registry {
	return &registry{
		providers: make(map[string]Thinker),
	}
}

func (r *registry) Register(t Thinker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := t.Name()
	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("provider %s already registered", name)
	}

	r.providers[name] = t
	return nil
}

func (r *registry) Get(name string) (Thinker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.providers[name]
	if !exists {
		return nil, fmt.Errorf("provider %s not found", name)
	}

	return provider, nil
}

func (r *registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
