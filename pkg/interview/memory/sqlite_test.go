package memory

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/parley-dev/parley/pkg/interview/events"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "frames.db"))
	require.NoError(t, err)
	return store
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	store := newTestSQLiteStore(t)

	frame := events.NewFrame(events.AddressCandidate, events.RoleCandidate, "persisted answer")
	require.NoError(t, store.Add(context.Background(), frame))

	messages, err := store.ExtractForGeneration(context.Background(), Filter{Address: events.AddressCandidate}, "")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Equal(t, "user", messages[0].Role)
	require.Equal(t, "persisted answer", messages[0].Content)
}

func TestSQLiteStore_ExtractOrdersByCreation(t *testing.T) {
	store := newTestSQLiteStore(t)

	base := time.Now().Add(-time.Minute)
	for i, content := range []string{"first", "second", "third"} {
		frame := events.NewFrame(events.AddressCandidate, events.RoleCandidate, content)
		frame.CreatedAt = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, store.Add(context.Background(), frame))
	}

	messages, err := store.ExtractForGeneration(context.Background(), Filter{}, "")
	require.NoError(t, err)
	require.Len(t, messages, 3)
	require.Equal(t, "first", messages[0].Content)
	require.Equal(t, "third", messages[2].Content)
}

func TestSQLiteStore_FilterExcludesOtherAddresses(t *testing.T) {
	store := newTestSQLiteStore(t)

	require.NoError(t, store.Add(context.Background(), events.NewFrame(events.AddressCandidate, events.RoleCandidate, "kept")))
	require.NoError(t, store.Add(context.Background(), events.NewFrame(events.AddressEvaluations, events.RoleAnalyzer, "excluded")))

	messages, err := store.ExtractForGeneration(context.Background(), Filter{Address: events.AddressCandidate}, "")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	require.Equal(t, "kept", messages[0].Content)
}
