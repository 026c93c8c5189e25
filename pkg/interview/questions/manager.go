package questions

import (
	"context"
	"sync"

	"github.com/go-logr/logr"

	"github.com/parley-dev/parley/pkg/interview/bus"
	apperrors "github.com/parley-dev/parley/pkg/interview/errors"
	"github.com/parley-dev/parley/pkg/interview/events"
	"github.com/parley-dev/parley/pkg/interview/memory"
)

// Manager holds the ordered pool of not-yet-asked questions and the single
// current question
type Manager struct {
	log      logr.Logger
	broker   *bus.Broker
	store    memory.Store
	strategy Strategy

	mu      sync.Mutex
	pool    []events.QuestionAndAnswer
	current *events.QuestionAndAnswer
}

// NewManager creates a manager with an empty pool
func NewManager(log logr.Logger, broker *bus.Broker, store memory.Store, strategy Strategy) *Manager {
	return &Manager{
		log:      log.WithName("questions"),
		broker:   broker,
		store:    store,
		strategy: strategy,
	}
}

// Initialize fills the pool by running the generation strategy, publishing
// gathering progress around the run
func (m *Manager) Initialize(ctx context.Context) error {
	m.broker.Publish(events.QuestionsGatheringEvent{
		Base:   events.NewBase(""),
		Status: events.GatheringInProgress,
	})

	pool, err := m.strategy.Generate(ctx)
	if err != nil {
		return apperrors.New(apperrors.ErrCodeQuestionGen, "failed to populate question pool", err)
	}

	m.mu.Lock()
	m.pool = pool
	m.mu.Unlock()

	m.log.Info("question pool populated", "size", len(pool))
	m.broker.Publish(events.QuestionsGatheringEvent{
		Base:   events.NewBase(""),
		Status: events.GatheringCompleted,
	})
	return nil
}

// GetNext pops the front of the pool, sets it as current, and returns it.
// The second return is false when the pool is empty; the caller interprets
// absence as interview completion.
func (m *Manager) GetNext() (events.QuestionAndAnswer, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.pool) == 0 {
		return events.QuestionAndAnswer{}, false
	}

	question := m.pool[0]
	m.pool = m.pool[1:]
	m.current = &question
	return question, true
}

// Current returns the question most recently handed out
func (m *Manager) Current() (events.QuestionAndAnswer, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return events.QuestionAndAnswer{}, false
	}
	return *m.current, true
}

// Remaining returns the number of questions still pooled
func (m *Manager) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pool)
}

// AskNext pops the next question, records it into memory, and publishes an
// AskQuestionEvent. On an exhausted pool it publishes an InterviewEndEvent
// instead.
func (m *Manager) AskNext(ctx context.Context, correlationID string) error {
	question, ok := m.GetNext()
	if !ok {
		m.log.Info("question pool exhausted, ending interview")
		m.broker.Publish(events.InterviewEndEvent{
			Base:   events.NewBase(correlationID),
			Reason: events.EndReasonQuestionsExhausted,
		})
		return nil
	}

	frame := events.NewFrame(events.AddressCandidate, events.RoleInterviewer, question.Question)
	if err := m.store.Add(ctx, frame); err != nil {
		return apperrors.New(apperrors.ErrCodeMemoryWrite, "failed to record question", err)
	}

	m.broker.Publish(events.AskQuestionEvent{
		Base:     events.NewBase(correlationID),
		Question: question,
	})
	return nil
}
