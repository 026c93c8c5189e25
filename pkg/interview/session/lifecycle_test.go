package session

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"

	"github.com/parley-dev/parley/pkg/interview/bus"
	"github.com/parley-dev/parley/pkg/interview/events"
	"github.com/parley-dev/parley/pkg/interview/memory"
	"github.com/parley-dev/parley/pkg/interview/questions"
	"github.com/parley-dev/parley/pkg/interview/tree"
)

// fakeChannel records every outward frame
type fakeChannel struct {
	mu     sync.Mutex
	frames []events.Frame
}

func (c *fakeChannel) SendMessage(_ context.Context, frame events.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, frame)
	return nil
}

func (c *fakeChannel) all() []events.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]events.Frame, len(c.frames))
	copy(out, c.frames)
	return out
}

func (c *fakeChannel) noticeCount(substr string) int {
	n := 0
	for _, frame := range c.all() {
		if frame.Address == events.AddressNotices && strings.Contains(frame.Content, substr) {
			n++
		}
	}
	return n
}

func buildLifecycle(t *testing.T, bank []events.QuestionAndAnswer, seed func(ctx context.Context) error) (*Lifecycle, *fakeChannel) {
	t.Helper()

	broker := bus.NewBroker(logr.Discard())
	store := memory.NewInMemoryStore()
	manager := questions.NewManager(logr.Discard(), broker, store, questions.NewBankStrategy(bank, 0))

	sctx := &SessionContext{
		SessionID: "s-life",
		Broker:    broker,
		Questions: manager,
		Memory:    store,
		MaxTime:   time.Hour,
	}
	conversation := tree.New(5, 5)
	chooser := tree.NewDirectionChooser(nil, nil).WithRand(rand.New(rand.NewSource(7)))

	ch := &fakeChannel{}
	lifecycle := NewLifecycle(logr.Discard(), Deps{
		Context:       sctx,
		Processor:     NewAnswerProcessor(logr.Discard(), sctx, conversation, chooser),
		Timer:         NewTimeManager(logr.Discard(), broker, time.Hour, time.Minute),
		Channel:       ch,
		RoleBuilder:   NoopRoleBuilder{},
		SeedAnalyzers: seed,
	})
	return lifecycle, ch
}

func TestLifecycle_InitializeAsksFirstQuestion(t *testing.T) {
	lifecycle, ch := buildLifecycle(t, []events.QuestionAndAnswer{{Question: "Q1"}}, nil)
	require.Equal(t, StateCreated, lifecycle.State())

	require.NoError(t, lifecycle.Initialize(context.Background()))
	require.Equal(t, StateQuestioning, lifecycle.State())

	require.Eventually(t, func() bool {
		for _, frame := range ch.all() {
			if frame.Role == events.RoleInterviewer && frame.Content == "Q1" {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, lifecycle.Shutdown(context.Background()))
}

func TestLifecycle_InitializeTwiceIsNoop(t *testing.T) {
	lifecycle, _ := buildLifecycle(t, nil, nil)
	require.NoError(t, lifecycle.Initialize(context.Background()))
	require.NoError(t, lifecycle.Initialize(context.Background()))
	require.NoError(t, lifecycle.Shutdown(context.Background()))
}

func TestLifecycle_ExhaustedPoolEndsSession(t *testing.T) {
	// empty bank: the bootstrap's first AskNext finds nothing to ask
	lifecycle, ch := buildLifecycle(t, nil, nil)
	require.NoError(t, lifecycle.Initialize(context.Background()))

	select {
	case <-lifecycle.Done():
	case <-time.After(time.Second):
		t.Fatal("session did not end on an exhausted question pool")
	}

	require.Equal(t, StateEnded, lifecycle.State())
	require.Equal(t, 1, ch.noticeCount("questions_exhausted"))
	require.NoError(t, lifecycle.Shutdown(context.Background()))
}

func TestLifecycle_BootstrapFailureEndsSession(t *testing.T) {
	seed := func(context.Context) error { return errors.New("persona model unreachable") }
	lifecycle, ch := buildLifecycle(t, []events.QuestionAndAnswer{{Question: "Q1"}}, seed)
	require.NoError(t, lifecycle.Initialize(context.Background()))

	select {
	case <-lifecycle.Done():
	case <-time.After(time.Second):
		t.Fatal("session did not end on a bootstrap failure")
	}

	require.Equal(t, StateEnded, lifecycle.State())
	require.Equal(t, 1, ch.noticeCount("interview aborted"))
}

func TestLifecycle_EndNotificationIsDeliveredOnce(t *testing.T) {
	lifecycle, ch := buildLifecycle(t, nil, nil)
	require.NoError(t, lifecycle.Initialize(context.Background()))

	<-lifecycle.Done()

	// a later shutdown must not produce a second outward notice
	require.NoError(t, lifecycle.Shutdown(context.Background()))
	require.Equal(t, 1, ch.noticeCount("interview ended"))
}

func TestLifecycle_InboundMessageFlowsThroughAnswerPipeline(t *testing.T) {
	bank := []events.QuestionAndAnswer{{Question: "Q1"}, {Question: "Q2"}}
	lifecycle, ch := buildLifecycle(t, bank, nil)
	broker := lifecycle.deps.Context.Broker

	require.NoError(t, lifecycle.Initialize(context.Background()))

	// wait for Q1 to go out before answering
	require.Eventually(t, func() bool {
		for _, frame := range ch.all() {
			if frame.Content == "Q1" {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)

	broker.Publish(events.MessageReceivedEvent{
		Base:       events.NewBase(""),
		SessionID:  "s-life",
		RawPayload: "my answer",
	})

	require.Eventually(t, func() bool {
		for _, frame := range ch.all() {
			if frame.Content == "Q2" {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, lifecycle.Shutdown(context.Background()))
}

func TestLifecycle_ShutdownJoinsBackgroundTasks(t *testing.T) {
	lifecycle, _ := buildLifecycle(t, []events.QuestionAndAnswer{{Question: "Q1"}}, nil)
	require.NoError(t, lifecycle.Initialize(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, lifecycle.Shutdown(ctx))
	require.Equal(t, StateEnded, lifecycle.State())
}
