package session

import (
	"context"
	"time"

	"github.com/go-logr/logr"

	"github.com/parley-dev/parley/pkg/interview/bus"
	"github.com/parley-dev/parley/pkg/interview/events"
)

// DefaultTickInterval is the accounting granularity of the session clock
const DefaultTickInterval = 5 * time.Second

// TimeManager ticks on a fixed interval and ends the session when the time
// budget is exhausted. It publishes the timeout event exactly once and never
// re-arms; the owner of its context cancels the loop on teardown.
type TimeManager struct {
	log     logr.Logger
	broker  *bus.Broker
	maxTime time.Duration
	tick    time.Duration
}

// NewTimeManager creates a timer for a session with the given budget.
// A zero tick falls back to DefaultTickInterval.
func NewTimeManager(log logr.Logger, broker *bus.Broker, maxTime, tick time.Duration) *TimeManager {
	if tick <= 0 {
		tick = DefaultTickInterval
	}
	return &TimeManager{
		log:     log.WithName("timer"),
		broker:  broker,
		maxTime: maxTime,
		tick:    tick,
	}
}

// Run blocks, accumulating elapsed time per tick, until the budget is
// exhausted or ctx is cancelled
func (t *TimeManager) Run(ctx context.Context) {
	ticker := time.NewTicker(t.tick)
	defer ticker.Stop()

	var elapsed time.Duration
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			elapsed += t.tick
			if elapsed >= t.maxTime {
				t.log.Info("time budget exhausted", "elapsed", elapsed, "max_time", t.maxTime)
				t.broker.Publish(events.InterviewEndEvent{
					Base:   events.NewBase(""),
					Reason: events.EndReasonTimeout,
				})
				return
			}
		}
	}
}
