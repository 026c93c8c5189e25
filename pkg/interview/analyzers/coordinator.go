package analyzers

import (
	"context"
	"sync"

	"github.com/go-logr/logr"

	"github.com/parley-dev/parley/internal/metrics"
	"github.com/parley-dev/parley/pkg/interview/bus"
	"github.com/parley-dev/parley/pkg/interview/events"
)

// coordinator fans a command out to every registered analyzer concurrently,
// collects the surviving frames, and publishes them individually. A failing
// analyzer is logged and excluded; it never blocks the others' results.
type coordinator struct {
	name     string
	log      logr.Logger
	broker   *bus.Broker
	registry *Registry
	metrics  *metrics.Analyzers
}

func (c *coordinator) run(ctx context.Context, questions []events.QuestionAndAnswer) []events.Frame {
	all := c.registry.All()

	type result struct {
		frame events.Frame
		err   error
		name  string
	}

	results := make([]result, len(all))
	var wg sync.WaitGroup
	for i, analyzer := range all {
		wg.Add(1)
		go func(i int, analyzer Analyzer) {
			defer wg.Done()
			frame, err := analyzer.Analyze(ctx, questions)
			results[i] = result{frame: frame, err: err, name: analyzer.Name()}
		}(i, analyzer)
	}
	wg.Wait()

	frames := make([]events.Frame, 0, len(results))
	for _, r := range results {
		if r.err != nil {
			c.log.Error(r.err, "analyzer failed, excluding result", "analyzer", r.name)
			if c.metrics != nil {
				c.metrics.Failures.WithLabelValues(c.name).Inc()
			}
			continue
		}
		if c.metrics != nil {
			c.metrics.Results.WithLabelValues(c.name).Inc()
		}
		frames = append(frames, r.frame)
	}
	return frames
}

// EvaluationCoordinator answers GenerateEvaluationsCommand traffic
type EvaluationCoordinator struct {
	coordinator
}

// NewEvaluationCoordinator creates a coordinator over registry
func NewEvaluationCoordinator(log logr.Logger, broker *bus.Broker, registry *Registry, m *metrics.Analyzers) *EvaluationCoordinator {
	return &EvaluationCoordinator{coordinator{
		name:     "evaluation",
		log:      log.WithName("evaluations"),
		broker:   broker,
		registry: registry,
		metrics:  m,
	}}
}

// Handle fans the command out and publishes each surviving evaluation frame
// as its own event, correlated with the answer that triggered the command
func (c *EvaluationCoordinator) Handle(ctx context.Context, event events.Event) error {
	cmd, ok := event.(events.GenerateEvaluationsCommand)
	if !ok {
		c.log.Info("ignoring unexpected event", "kind", event.Kind())
		return nil
	}

	for _, frame := range c.run(ctx, cmd.Questions) {
		c.broker.Publish(events.EvaluationsGeneratedEvent{
			Base:        events.NewBase(cmd.CorrelationID()),
			Evaluations: []events.Frame{frame},
		})
	}
	return nil
}

// PerspectiveCoordinator answers GeneratePerspectivesCommand traffic
type PerspectiveCoordinator struct {
	coordinator
}

// NewPerspectiveCoordinator creates a coordinator over registry
func NewPerspectiveCoordinator(log logr.Logger, broker *bus.Broker, registry *Registry, m *metrics.Analyzers) *PerspectiveCoordinator {
	return &PerspectiveCoordinator{coordinator{
		name:     "perspective",
		log:      log.WithName("perspectives"),
		broker:   broker,
		registry: registry,
		metrics:  m,
	}}
}

// Handle fans the command out and publishes each surviving perspective frame
// as its own event
func (c *PerspectiveCoordinator) Handle(ctx context.Context, event events.Event) error {
	cmd, ok := event.(events.GeneratePerspectivesCommand)
	if !ok {
		c.log.Info("ignoring unexpected event", "kind", event.Kind())
		return nil
	}

	for _, frame := range c.run(ctx, cmd.Questions) {
		c.broker.Publish(events.PerspectivesGeneratedEvent{
			Base:         events.NewBase(cmd.CorrelationID()),
			Perspectives: []events.Frame{frame},
		})
	}
	return nil
}
