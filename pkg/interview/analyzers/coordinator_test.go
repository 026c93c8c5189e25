package analyzers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"

	"github.com/parley-dev/parley/pkg/interview/bus"
	"github.com/parley-dev/parley/pkg/interview/events"
)

type fakeAnalyzer struct {
	name    string
	content string
	err     error
}

func (f *fakeAnalyzer) Name() string { return f.name }

func (f *fakeAnalyzer) Analyze(_ context.Context, _ []events.QuestionAndAnswer) (events.Frame, error) {
	if f.err != nil {
		return events.Frame{}, f.err
	}
	return events.NewFrame(events.AddressEvaluations, events.RoleAnalyzer, f.content), nil
}

type eventSink struct {
	mu     sync.Mutex
	events []events.Event
}

func (s *eventSink) Handle(_ context.Context, event events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *eventSink) all() []events.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]events.Event, len(s.events))
	copy(out, s.events)
	return out
}

func TestRegistry_RejectsDuplicateNames(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register(&fakeAnalyzer{name: "rubric"}))

	err := registry.Register(&fakeAnalyzer{name: "rubric"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "already registered")
	require.Equal(t, 1, registry.Len())
}

func TestRegistry_AllPreservesRegistrationOrder(t *testing.T) {
	registry := NewRegistry()
	for _, name := range []string{"c", "a", "b"} {
		require.NoError(t, registry.Register(&fakeAnalyzer{name: name}))
	}

	got := registry.All()
	require.Len(t, got, 3)
	require.Equal(t, "c", got[0].Name())
	require.Equal(t, "a", got[1].Name())
	require.Equal(t, "b", got[2].Name())
}

func TestEvaluationCoordinator_PublishesEachFrameIndividually(t *testing.T) {
	broker := bus.NewBroker(logr.Discard())
	sink := &eventSink{}
	broker.Subscribe(events.KindEvaluationsGenerated, sink)
	broker.Start()
	defer broker.Stop()

	registry := NewRegistry()
	require.NoError(t, registry.Register(&fakeAnalyzer{name: "one", content: "first"}))
	require.NoError(t, registry.Register(&fakeAnalyzer{name: "two", content: "second"}))

	coordinator := NewEvaluationCoordinator(logr.Discard(), broker, registry, nil)
	cmd := events.GenerateEvaluationsCommand{
		Base:      events.NewBase("corr-9"),
		Questions: []events.QuestionAndAnswer{{Question: "q"}},
	}
	require.NoError(t, coordinator.Handle(context.Background(), cmd))

	require.Eventually(t, func() bool {
		return len(sink.all()) == 2
	}, time.Second, 5*time.Millisecond)

	for _, ev := range sink.all() {
		generated := ev.(events.EvaluationsGeneratedEvent)
		require.Len(t, generated.Evaluations, 1)
		require.Equal(t, "corr-9", generated.CorrelationID())
	}
}

func TestCoordinator_FailingAnalyzerIsExcludedNotFatal(t *testing.T) {
	broker := bus.NewBroker(logr.Discard())
	sink := &eventSink{}
	broker.Subscribe(events.KindPerspectivesGenerated, sink)
	broker.Start()
	defer broker.Stop()

	registry := NewRegistry()
	require.NoError(t, registry.Register(&fakeAnalyzer{name: "broken", err: errors.New("model unavailable")}))
	require.NoError(t, registry.Register(&fakeAnalyzer{name: "healthy", content: "still here"}))

	coordinator := NewPerspectiveCoordinator(logr.Discard(), broker, registry, nil)
	cmd := events.GeneratePerspectivesCommand{Base: events.NewBase("")}
	require.NoError(t, coordinator.Handle(context.Background(), cmd))

	require.Eventually(t, func() bool {
		return len(sink.all()) == 1
	}, time.Second, 5*time.Millisecond)

	generated := sink.all()[0].(events.PerspectivesGeneratedEvent)
	require.Equal(t, "still here", generated.Perspectives[0].Content)
}

func TestCoordinator_IgnoresUnexpectedEvents(t *testing.T) {
	broker := bus.NewBroker(logr.Discard())
	registry := NewRegistry()
	coordinator := NewEvaluationCoordinator(logr.Discard(), broker, registry, nil)

	err := coordinator.Handle(context.Background(), events.StartEvent{Base: events.NewBase("")})
	require.NoError(t, err)
}
