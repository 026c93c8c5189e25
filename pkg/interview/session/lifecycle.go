package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-logr/logr"
	"github.com/hashicorp/go-multierror"

	"github.com/parley-dev/parley/pkg/interview/bus"
	"github.com/parley-dev/parley/pkg/interview/channel"
	"github.com/parley-dev/parley/pkg/interview/events"
)

// State is a lifecycle phase. States advance forward only; none is revisited.
type State string

const (
	StateCreated      State = "created"
	StateInitializing State = "initializing"
	StateQuestioning  State = "questioning"
	StateEnded        State = "ended"
)

// Deps bundles the collaborators the lifecycle manager wires together
type Deps struct {
	Context      *SessionContext
	Processor    bus.Handler
	Evaluations  bus.Handler
	Perspectives bus.Handler
	Timer        *TimeManager
	Channel      channel.Channel
	RoleBuilder  RoleBuilder

	// SeedAnalyzers populates the analyzer registries; it runs on the
	// bootstrap task, not the dispatch loop
	SeedAnalyzers func(ctx context.Context) error
}

// Lifecycle is the top-level state machine of one session. It owns the
// subscriptions, the timer task, and the bootstrap task, and it is the
// designated last resort for errors escaping any bus handler.
type Lifecycle struct {
	log      logr.Logger
	deps     Deps
	notifier *channel.Notifier

	mu          sync.Mutex
	state       State
	timerCancel context.CancelFunc
	bootCancel  context.CancelFunc
	bootDone    chan struct{}

	endOnce sync.Once
	done    chan struct{}
}

// NewLifecycle creates a session in the Created state
func NewLifecycle(log logr.Logger, deps Deps) *Lifecycle {
	return &Lifecycle{
		log:      log.WithName("session").WithValues("session_id", deps.Context.SessionID),
		deps:     deps,
		notifier: channel.NewNotifier(deps.Context.Broker),
		state:    StateCreated,
		done:     make(chan struct{}),
	}
}

// State returns the current lifecycle phase
func (l *Lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Done is closed when the session has ended
func (l *Lifecycle) Done() <-chan struct{} {
	return l.done
}

// Initialize wires every subscription, starts the bus and the timer, and
// kicks off the bootstrap task that populates the question pool, builds the
// role context, seeds the analyzer registries, and asks the first question.
// Calling it more than once is a no-op.
func (l *Lifecycle) Initialize(ctx context.Context) error {
	l.mu.Lock()
	if l.state != StateCreated {
		state := l.state
		l.mu.Unlock()
		l.log.Info("initialize called again, ignoring", "state", state)
		return nil
	}
	l.state = StateInitializing
	l.mu.Unlock()

	broker := l.deps.Context.Broker
	broker.Subscribe(events.KindAddToMemory, l.deps.Processor)
	if l.deps.Evaluations != nil {
		broker.Subscribe(events.KindGenerateEvaluations, l.deps.Evaluations)
	}
	if l.deps.Perspectives != nil {
		broker.Subscribe(events.KindGeneratePerspectives, l.deps.Perspectives)
	}
	broker.Subscribe(events.KindMessageReceived, bus.HandlerFunc(l.handleInbound))
	broker.Subscribe(events.KindAskQuestion, bus.HandlerFunc(l.deliverQuestion))
	broker.Subscribe(events.KindEvaluationsGenerated, bus.HandlerFunc(l.deliverAnalysis))
	broker.Subscribe(events.KindPerspectivesGenerated, bus.HandlerFunc(l.deliverAnalysis))
	broker.Subscribe(events.KindNotification, bus.HandlerFunc(l.deliverNotice))
	broker.Subscribe(events.KindInterviewEnd, bus.HandlerFunc(l.handleEnd))
	broker.Subscribe(events.KindError, bus.HandlerFunc(l.handleErrorEvent))
	broker.OnDispatchError(l.dispatchFailed)

	broker.Start()

	timerCtx, timerCancel := context.WithCancel(context.Background())
	bootCtx, bootCancel := context.WithCancel(context.Background())
	bootDone := make(chan struct{})

	l.mu.Lock()
	l.timerCancel = timerCancel
	l.bootCancel = bootCancel
	l.bootDone = bootDone
	l.mu.Unlock()

	go l.deps.Timer.Run(timerCtx)
	l.notifier.Notify("", fmt.Sprintf("interview timer started, budget %s", l.deps.Context.MaxTime))

	broker.Publish(events.StartEvent{
		Base:      events.NewBase(""),
		SessionID: l.deps.Context.SessionID,
	})

	// Slow setup work runs off the dispatch loop; the handle stays owned
	// here and is joined on teardown.
	go l.bootstrap(bootCtx, bootDone)

	l.mu.Lock()
	l.state = StateQuestioning
	l.mu.Unlock()

	l.log.Info("session initialized", "max_time", l.deps.Context.MaxTime)
	return nil
}

func (l *Lifecycle) bootstrap(ctx context.Context, done chan struct{}) {
	defer close(done)

	fail := func(stage string, err error) {
		l.log.Error(err, "bootstrap failed", "stage", stage)
		l.deps.Context.Broker.Publish(events.ErrorEvent{
			Base:    events.NewBase(""),
			Message: fmt.Sprintf("%s: %v", stage, err),
		})
	}

	if err := l.deps.RoleBuilder.Build(ctx); err != nil {
		fail("role construction", err)
		return
	}
	if l.deps.SeedAnalyzers != nil {
		if err := l.deps.SeedAnalyzers(ctx); err != nil {
			fail("analyzer seeding", err)
			return
		}
	}
	if err := l.deps.Context.Questions.Initialize(ctx); err != nil {
		fail("question gathering", err)
		return
	}
	if err := l.deps.Context.Questions.AskNext(ctx, ""); err != nil {
		fail("first question", err)
		return
	}
}

// handleInbound turns a raw transport payload into an answer frame for the
// answer pipeline
func (l *Lifecycle) handleInbound(_ context.Context, event events.Event) error {
	ev, ok := event.(events.MessageReceivedEvent)
	if !ok {
		return nil
	}

	frame := events.NewFrame(events.AddressCandidate, events.RoleCandidate, ev.RawPayload)
	l.deps.Context.Broker.Publish(events.AddToMemoryEvent{
		Base:      events.NewBase(ev.CorrelationID()),
		SessionID: ev.SessionID,
		Frame:     frame,
	})
	return nil
}

func (l *Lifecycle) deliverQuestion(ctx context.Context, event events.Event) error {
	ev, ok := event.(events.AskQuestionEvent)
	if !ok {
		return nil
	}
	frame := events.NewFrame(events.AddressCandidate, events.RoleInterviewer, ev.Question.Question)
	return l.deps.Channel.SendMessage(ctx, frame)
}

func (l *Lifecycle) deliverAnalysis(ctx context.Context, event events.Event) error {
	var frames []events.Frame
	switch ev := event.(type) {
	case events.EvaluationsGeneratedEvent:
		frames = ev.Evaluations
	case events.PerspectivesGeneratedEvent:
		frames = ev.Perspectives
	default:
		return nil
	}

	for _, frame := range frames {
		if err := l.deps.Channel.SendMessage(ctx, frame); err != nil {
			return err
		}
	}
	return nil
}

func (l *Lifecycle) deliverNotice(ctx context.Context, event events.Event) error {
	ev, ok := event.(events.NotificationEvent)
	if !ok {
		return nil
	}
	return l.deps.Channel.SendMessage(ctx, ev.Frame)
}

func (l *Lifecycle) handleEnd(_ context.Context, event events.Event) error {
	ev, ok := event.(events.InterviewEndEvent)
	if !ok {
		return nil
	}
	l.end(fmt.Sprintf("interview ended: %s", ev.Reason))
	return nil
}

func (l *Lifecycle) handleErrorEvent(_ context.Context, event events.Event) error {
	ev, ok := event.(events.ErrorEvent)
	if !ok {
		return nil
	}
	l.end(fmt.Sprintf("interview aborted: %s", ev.Message))
	return nil
}

// dispatchFailed is the bus's error boundary: a handler error has escaped
// the dispatch loop and the session cannot continue
func (l *Lifecycle) dispatchFailed(event events.Event, err error) {
	l.log.Error(err, "handler error escaped dispatch loop", "kind", event.Kind())
	l.end(fmt.Sprintf("interview aborted: %v", err))
}

// end transitions to Ended exactly once: one outward notification with the
// reason, then bus stop and background-task cancellation. The notification
// goes out directly through the channel because the bus is stopping.
func (l *Lifecycle) end(reason string) {
	l.endOnce.Do(func() {
		l.mu.Lock()
		l.state = StateEnded
		timerCancel := l.timerCancel
		bootCancel := l.bootCancel
		l.mu.Unlock()

		l.log.Info("session ending", "reason", reason)

		frame := events.NewFrame(events.AddressNotices, events.RoleSystem, reason)
		if err := l.deps.Channel.SendMessage(context.Background(), frame); err != nil {
			l.log.Error(err, "failed to deliver end notification")
		}

		if timerCancel != nil {
			timerCancel()
		}
		if bootCancel != nil {
			bootCancel()
		}
		l.deps.Context.Broker.Stop()
		close(l.done)
	})
}

// Shutdown forces the session to end and joins the background tasks. It is
// safe to call after a natural end; the first termination wins.
func (l *Lifecycle) Shutdown(ctx context.Context) error {
	l.end("interview ended: shutting down")

	var errs *multierror.Error

	l.mu.Lock()
	bootDone := l.bootDone
	l.mu.Unlock()

	if bootDone != nil {
		select {
		case <-bootDone:
		case <-ctx.Done():
			errs = multierror.Append(errs, fmt.Errorf("bootstrap task did not exit: %w", ctx.Err()))
		}
	}

	select {
	case <-l.deps.Context.Broker.Done():
	case <-ctx.Done():
		errs = multierror.Append(errs, fmt.Errorf("dispatch loop did not exit: %w", ctx.Err()))
	}

	return errs.ErrorOrNil()
}
