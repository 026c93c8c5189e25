package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/parley-dev/parley/pkg/interview/events"
)

func addFrames(t *testing.T, store *InMemoryStore, frames ...events.Frame) {
	t.Helper()
	for _, frame := range frames {
		require.NoError(t, store.Add(context.Background(), frame))
	}
}

func TestInMemoryStore_AddPreservesOrder(t *testing.T) {
	store := NewInMemoryStore()
	addFrames(t, store,
		events.NewFrame(events.AddressCandidate, events.RoleInterviewer, "first"),
		events.NewFrame(events.AddressCandidate, events.RoleCandidate, "second"),
		events.NewFrame(events.AddressCandidate, events.RoleInterviewer, "third"),
	)

	frames := store.Frames()
	require.Len(t, frames, 3)
	require.Equal(t, "first", frames[0].Content)
	require.Equal(t, "second", frames[1].Content)
	require.Equal(t, "third", frames[2].Content)
}

func TestInMemoryStore_ExtractMapsRolesForGeneration(t *testing.T) {
	store := NewInMemoryStore()
	addFrames(t, store,
		events.NewFrame(events.AddressCandidate, events.RoleSystem, "briefing"),
		events.NewFrame(events.AddressCandidate, events.RoleInterviewer, "why Go?"),
		events.NewFrame(events.AddressCandidate, events.RoleCandidate, "channels"),
		events.NewFrame(events.AddressEvaluations, events.RoleAnalyzer, "score: 4"),
	)

	messages, err := store.ExtractForGeneration(context.Background(), Filter{Address: events.AddressCandidate}, "")
	require.NoError(t, err)
	require.Len(t, messages, 3)
	require.Equal(t, "system", messages[0].Role)
	require.Equal(t, "assistant", messages[1].Role)
	require.Equal(t, "user", messages[2].Role)
	require.Equal(t, "channels", messages[2].Content)
}

func TestInMemoryStore_ExtractPrependsCustomInstruction(t *testing.T) {
	store := NewInMemoryStore()
	addFrames(t, store,
		events.NewFrame(events.AddressCandidate, events.RoleCandidate, "an answer"),
	)

	messages, err := store.ExtractForGeneration(context.Background(), Filter{}, "grade strictly")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	require.Equal(t, "system", messages[0].Role)
	require.Equal(t, "grade strictly", messages[0].Content)
}

func TestInMemoryStore_FilterByRole(t *testing.T) {
	store := NewInMemoryStore()
	addFrames(t, store,
		events.NewFrame(events.AddressCandidate, events.RoleInterviewer, "question"),
		events.NewFrame(events.AddressCandidate, events.RoleCandidate, "answer"),
	)

	messages, err := store.ExtractForGeneration(context.Background(), Filter{Role: events.RoleCandidate}, "")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Equal(t, "answer", messages[0].Content)
}

func TestInMemoryStore_EmptyExtractIsNotAnError(t *testing.T) {
	store := NewInMemoryStore()
	messages, err := store.ExtractForGeneration(context.Background(), Filter{Address: "nowhere"}, "")
	require.NoError(t, err)
	require.Empty(t, messages)
}
