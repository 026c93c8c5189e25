package events

import (
	"encoding/json"
	"fmt"

	"github.com/parley-dev/parley/pkg/interview/thinker"
)

// PayloadKind tags the concrete variant of a model response payload
type PayloadKind string

const (
	PayloadCompletion PayloadKind = "completion"
	PayloadStructured PayloadKind = "structured"
	PayloadText       PayloadKind = "text"
)

// Payload is a tagged union over the response shapes a Thinker call can
// produce. Exactly one of the variant fields is set, per Kind.
type Payload struct {
	Kind       PayloadKind
	Completion *thinker.Completion
	Structured json.RawMessage
	Text       string
}

// Package converts a payload into an addressed frame, dispatching on the
// payload's explicit kind tag.
func (p Payload) Package(address, role string) (Frame, error) {
	switch p.Kind {
	case PayloadCompletion:
		return packageCompletion(p.Completion, address, role)
	case PayloadStructured:
		return packageStructured(p.Structured, address, role)
	case PayloadText:
		return packageText(p.Text, address, role), nil
	default:
		return Frame{}, fmt.Errorf("unknown payload kind: %q", p.Kind)
	}
}

func packageCompletion(completion *thinker.Completion, address, role string) (Frame, error) {
	if completion == nil {
		return Frame{}, fmt.Errorf("completion payload is nil")
	}
	return NewFrame(address, role, completion.Text), nil
}

func packageStructured(raw json.RawMessage, address, role string) (Frame, error) {
	if len(raw) == 0 {
		return Frame{}, fmt.Errorf("structured payload is empty")
	}
	// Re-encode compactly so frames stay one-line on the wire
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return Frame{}, fmt.Errorf("structured payload is not valid JSON: %w", err)
	}
	compact, err := json.Marshal(value)
	if err != nil {
		return Frame{}, err
	}
	return NewFrame(address, role, string(compact)), nil
}

func packageText(text, address, role string) Frame {
	return NewFrame(address, role, text)
}
