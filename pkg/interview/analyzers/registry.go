// Package analyzers fans answer-processing side work out to independently
// registered analyzers and collects their result frames.
package analyzers

import (
	"context"
	"fmt"
	"sync"

	"github.com/parley-dev/parley/pkg/interview/events"
)

// Analyzer produces one result frame for a set of answered questions
type Analyzer interface {
	// Name returns the analyzer name, unique within a registry
	Name() string

	// Analyze inspects the answered questions and produces a result frame
	Analyze(ctx context.Context, questions []events.QuestionAndAnswer) (events.Frame, error)
}

// Registry manages named analyzer instances for one coordinator
type Registry struct {
	mu        sync.RWMutex
	analyzers map[string]Analyzer
	order     []string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		analyzers: make(map[string]Analyzer),
	}
}

// Register registers an analyzer; duplicate names are rejected
func (r *Registry) Register(a Analyzer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := a.Name()
	if _, exists := r.analyzers[name]; exists {
		return fmt.Errorf("analyzer %s already registered", name)
	}

	r.analyzers[name] = a
	r.order = append(r.order, name)
	return nil
}

// All returns the registered analyzers in registration order
func (r *Registry) All() []Analyzer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Analyzer, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.analyzers[name])
	}
	return out
}

// Len returns the number of registered analyzers
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.analyzers)
}
