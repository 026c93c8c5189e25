// Package bus implements the in-process event broker the interview core
// communicates through: typed publish/subscribe with an unbounded FIFO queue
// and a single dispatch goroutine.
//
// Ordering is the load-bearing guarantee here. Events are dispatched in
// strict publish order, and the handlers for one event run sequentially in
// registration order, each completing before the next handler or the next
// event starts. There is no handler timeout; a hung handler stalls the whole
// session.
package bus

import (
	"context"
	"sort"
	"sync"

	"github.com/go-logr/logr"

	"github.com/parley-dev/parley/internal/metrics"
	"github.com/parley-dev/parley/pkg/interview/events"
)

// Handler processes one event. The bus does not catch handler errors: a
// non-nil return stops dispatch and is reported to the broker's error
// boundary, which is expected to end the session.
type Handler interface {
	Handle(ctx context.Context, event events.Event) error
}

// HandlerFunc adapts a function to the Handler interface
type HandlerFunc func(ctx context.Context, event events.Event) error

// Handle calls f
func (f HandlerFunc) Handle(ctx context.Context, event events.Event) error {
	return f(ctx, event)
}

// Subscription identifies one registered handler for later removal
type Subscription struct {
	kind    events.Kind
	seq     uint64
	handler Handler
}

// ErrorBoundary receives the error that escaped a handler, together with the
// event being dispatched when it happened.
type ErrorBoundary func(event events.Event, err error)

// Broker routes events between session components
type Broker struct {
	log logr.Logger

	mu          sync.Mutex
	subscribers map[events.Kind][]*Subscription
	nextSeq     uint64
	queue       []events.Event
	notify      chan struct{}
	running     bool
	stopped     bool
	cancel      context.CancelFunc
	done        chan struct{}
	boundary    ErrorBoundary
	busMetrics  *metrics.Bus
}

// Option configures a Broker
type Option func(*Broker)

// WithMetrics attaches prometheus collectors to the broker
func WithMetrics(m *metrics.Bus) Option {
	return func(b *Broker) { b.busMetrics = m }
}

// NewBroker creates a stopped broker with no subscriptions
func NewBroker(log logr.Logger, opts ...Option) *Broker {
	b := &Broker{
		log:         log.WithName("bus"),
		subscribers: make(map[events.Kind][]*Subscription),
		notify:      make(chan struct{}, 1),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// OnDispatchError installs the session's last-resort error boundary. A handler
// error stops the dispatch loop and is handed to the boundary; the boundary is
// expected to stop the bus and end the session.
func (b *Broker) OnDispatchError(boundary ErrorBoundary) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.boundary = boundary
}

// Subscribe registers a handler for a kind. Use events.KindWildcard to
// receive every event. Handlers for one event run in registration order,
// wildcard and kind-specific interleaved by when they were registered.
func (b *Broker) Subscribe(kind events.Kind, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextSeq++
	sub := &Subscription{kind: kind, seq: b.nextSeq, handler: handler}
	b.subscribers[kind] = append(b.subscribers[kind], sub)
	return sub
}

// Unsubscribe removes a subscription; no-op if nil or already removed
func (b *Broker) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[sub.kind]
	for i, s := range subs {
		if s == sub {
			b.subscribers[sub.kind] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subscribers[sub.kind]) == 0 {
		delete(b.subscribers, sub.kind)
	}
}

// Publish enqueues an event for dispatch. It never blocks the publisher on
// handler execution. Events published after Stop are dropped.
func (b *Broker) Publish(event events.Event) {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		b.log.V(1).Info("dropping event published after stop", "kind", event.Kind(), "event_id", event.EventID())
		return
	}
	b.queue = append(b.queue, event)
	depth := len(b.queue)
	b.mu.Unlock()

	if b.busMetrics != nil {
		b.busMetrics.Published.WithLabelValues(string(event.Kind())).Inc()
		b.busMetrics.QueueDepth.Set(float64(depth))
	}

	select {
	case b.notify <- struct{}{}:
	default:
	}
}

// Start launches the dispatch loop. Idempotent: calling Start on a running
// broker is a no-op. A stopped broker stays stopped.
func (b *Broker) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running || b.stopped {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.running = true

	go b.dispatchLoop(ctx)
}

// Stop flags the dispatch loop to exit and cancels the in-flight dispatch
// context. It does not wait for a handler already running to return.
func (b *Broker) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stopped {
		return
	}
	b.stopped = true
	if b.running {
		b.running = false
		b.cancel()
	} else {
		// dispatch loop never started; nothing will close done
		close(b.done)
	}
}

// Done is closed when the dispatch loop has exited
func (b *Broker) Done() <-chan struct{} {
	return b.done
}

func (b *Broker) dispatchLoop(ctx context.Context) {
	defer close(b.done)

	for {
		event, ok := b.next(ctx)
		if !ok {
			return
		}

		handlers := b.handlersFor(event.Kind())
		for _, sub := range handlers {
			if err := sub.handler.Handle(ctx, event); err != nil {
				b.log.Error(err, "handler failed, stopping dispatch",
					"kind", event.Kind(), "event_id", event.EventID())
				b.mu.Lock()
				boundary := b.boundary
				b.mu.Unlock()
				if boundary != nil {
					boundary(event, err)
				}
				return
			}
		}

		if b.busMetrics != nil {
			b.busMetrics.Dispatched.WithLabelValues(string(event.Kind())).Inc()
		}
	}
}

// next blocks until an event is queued or the dispatch context is cancelled
func (b *Broker) next(ctx context.Context) (events.Event, bool) {
	for {
		select {
		case <-ctx.Done():
			return nil, false
		default:
		}

		b.mu.Lock()
		if len(b.queue) > 0 {
			event := b.queue[0]
			b.queue = b.queue[1:]
			depth := len(b.queue)
			b.mu.Unlock()
			if b.busMetrics != nil {
				b.busMetrics.QueueDepth.Set(float64(depth))
			}
			return event, true
		}
		b.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, false
		case <-b.notify:
		}
	}
}

// handlersFor resolves the handler list for a kind: kind-specific plus
// wildcard subscriptions, merged into registration order.
func (b *Broker) handlersFor(kind events.Kind) []*Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	specific := b.subscribers[kind]
	wildcard := b.subscribers[events.KindWildcard]

	merged := make([]*Subscription, 0, len(specific)+len(wildcard))
	merged = append(merged, specific...)
	if kind != events.KindWildcard {
		merged = append(merged, wildcard...)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].seq < merged[j].seq })
	return merged
}
