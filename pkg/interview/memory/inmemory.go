package memory

import (
	"context"
	"sync"

	"github.com/parley-dev/parley/pkg/interview/events"
	"github.com/parley-dev/parley/pkg/interview/thinker"
)

// InMemoryStore is an append-only frame log held in process memory
type InMemoryStore struct {
	mu     sync.RWMutex
	frames []events.Frame
}

// NewInMemoryStore creates an empty in-process store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// Add appends a frame to the log
func (s *InMemoryStore) Add(_ context.Context, frame events.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, frame)
	return nil
}

// ExtractForGeneration projects matching frames into thinker messages
func (s *InMemoryStore) ExtractForGeneration(_ context.Context, filter Filter, customInstruction string) ([]thinker.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matching []events.Frame
	for _, frame := range s.frames {
		if matches(frame, filter) {
			matching = append(matching, frame)
		}
	}
	return project(matching, customInstruction), nil
}

// Frames returns a copy of the full log, in insertion order
func (s *InMemoryStore) Frames() []events.Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]events.Frame, len(s.frames))
	copy(out, s.frames)
	return out
}
