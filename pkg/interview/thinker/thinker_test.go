package thinker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubThinker struct {
	name string
}

func (s *stubThinker) Name() string { return s.name }

func (s *stubThinker) Generate(context.Context, []Message) (*Completion, error) {
	return &Completion{Text: "stub"}, nil
}

func (s *stubThinker) ExtractStructured(context.Context, string, []Message, any) error {
	return nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(&stubThinker{name: "anthropic"}))
	require.NoError(t, registry.Register(&stubThinker{name: "openai"}))

	got, err := registry.Get("openai")
	require.NoError(t, err)
	assert.Equal(t, "openai", got.Name())

	assert.ElementsMatch(t, []string{"anthropic", "openai"}, registry.List())
}

func TestRegistry_DuplicateIsRejected(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(&stubThinker{name: "anthropic"}))

	err := registry.Register(&stubThinker{name: "anthropic"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegistry_GetUnknown(t *testing.T) {
	_, err := NewRegistry().Get("mistral")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestNew_UnsupportedProvider(t *testing.T) {
	_, err := New("bard", "key", ModelConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported thinker provider")
}

func TestStructuredMessages_PrependsSchemaInstruction(t *testing.T) {
	conversation := []Message{{Role: "user", Content: "list questions"}}
	got := structuredMessages(`{"type":"array"}`, conversation)

	require.Len(t, got, 2)
	assert.Equal(t, "system", got[0].Role)
	assert.Contains(t, got[0].Content, `{"type":"array"}`)
	assert.Equal(t, "list questions", got[1].Content)
	// the input slice is not mutated
	require.Len(t, conversation, 1)
}

func TestDecodeStructured(t *testing.T) {
	type payload struct {
		Score int    `json:"score"`
		Notes string `json:"notes"`
	}

	tests := []struct {
		name string
		text string
	}{
		{name: "bare json", text: `{"score": 4, "notes": "ok"}`},
		{name: "fenced", text: "```\n{\"score\": 4, \"notes\": \"ok\"}\n```"},
		{name: "fenced with language tag", text: "```json\n{\"score\": 4, \"notes\": \"ok\"}\n```"},
		{name: "surrounding whitespace", text: "  \n{\"score\": 4, \"notes\": \"ok\"}\n  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out payload
			require.NoError(t, decodeStructured(tt.text, &out))
			assert.Equal(t, 4, out.Score)
			assert.Equal(t, "ok", out.Notes)
		})
	}
}

func TestDecodeStructured_InvalidJSON(t *testing.T) {
	var out map[string]any
	err := decodeStructured("the model apologizes instead of answering", &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode structured response")
}
