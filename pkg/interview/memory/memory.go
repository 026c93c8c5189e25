// Package memory stores conversation frames. The core treats it as an
// append-only log with a projection query used to assemble model prompts.
package memory

import (
	"context"

	"github.com/parley-dev/parley/pkg/interview/events"
	"github.com/parley-dev/parley/pkg/interview/thinker"
)

// Filter narrows an extraction to frames matching the set fields
type Filter struct {
	Address string
	Role    string
}

// Store is the durable-memory contract the core depends on
type Store interface {
	// Add appends a frame to the log
	Add(ctx context.Context, frame events.Frame) error

	// ExtractForGeneration projects matching frames into a message list
	// suitable for a Thinker call. A non-empty customInstruction is
	// prepended as a system message.
	ExtractForGeneration(ctx context.Context, filter Filter, customInstruction string) ([]thinker.Message, error)
}

// messageRole maps a frame role onto the conversational role a model expects
func messageRole(frameRole string) string {
	switch frameRole {
	case events.RoleInterviewer, events.RoleAnalyzer:
		return "assistant"
	case events.RoleCandidate:
		return "user"
	default:
		return "system"
	}
}

func project(frames []events.Frame, customInstruction string) []thinker.Message {
	messages := make([]thinker.Message, 0, len(frames)+1)
	if customInstruction != "" {
		messages = append(messages, thinker.Message{Role: "system", Content: customInstruction})
	}
	for _, frame := range frames {
		messages = append(messages, thinker.Message{
			Role:    messageRole(frame.Role),
			Content: frame.Content,
		})
	}
	return messages
}

func matches(frame events.Frame, filter Filter) bool {
	if filter.Address != "" && frame.Address != filter.Address {
		return false
	}
	if filter.Role != "" && frame.Role != filter.Role {
		return false
	}
	return true
}
