package session

import (
	"context"

	"github.com/go-logr/logr"

	apperrors "github.com/parley-dev/parley/pkg/interview/errors"
	"github.com/parley-dev/parley/pkg/interview/events"
	"github.com/parley-dev/parley/pkg/interview/tree"
)

// AnswerProcessor reacts to an incoming answer: it persists the frame, issues
// the enabled side-analysis commands, grows the conversation tree, and asks
// for the next question. Each step completes before the next because later
// steps depend on the mutated state.
//
// Failures are logged with full context and returned, not swallowed: a broken
// answer pipeline must surface rather than silently skip a turn.
type AnswerProcessor struct {
	log     logr.Logger
	sctx    *SessionContext
	tree    *tree.ConversationTree
	chooser *tree.DirectionChooser
}

// NewAnswerProcessor creates a processor bound to one session
func NewAnswerProcessor(log logr.Logger, sctx *SessionContext, t *tree.ConversationTree, chooser *tree.DirectionChooser) *AnswerProcessor {
	return &AnswerProcessor{
		log:     log.WithName("answers"),
		sctx:    sctx,
		tree:    t,
		chooser: chooser,
	}
}

// Handle processes one AddToMemoryEvent
func (p *AnswerProcessor) Handle(ctx context.Context, event events.Event) error {
	ev, ok := event.(events.AddToMemoryEvent)
	if !ok {
		p.log.Info("ignoring unexpected event", "kind", event.Kind())
		return nil
	}

	log := p.log.WithValues(
		"session_id", ev.SessionID,
		"correlation_id", ev.CorrelationID(),
		"frame_id", ev.Frame.ID,
	)

	// 1. Persist the answer frame
	if err := p.sctx.Memory.Add(ctx, ev.Frame); err != nil {
		log.Error(err, "failed to persist answer frame")
		return apperrors.New(apperrors.ErrCodeAnswerPipeline, "failed to persist answer", err)
	}

	// 2. Issue side-analysis commands for the just-answered question,
	// gated by the session's ability flags
	current, hasCurrent := p.sctx.Questions.Current()
	var answered []events.QuestionAndAnswer
	if hasCurrent {
		answered = []events.QuestionAndAnswer{current}
	}

	if p.sctx.Abilities.Evaluations {
		p.sctx.Broker.Publish(events.GenerateEvaluationsCommand{
			Base:      events.NewBase(ev.CorrelationID()),
			Questions: answered,
		})
	}
	if p.sctx.Abilities.Perspectives {
		p.sctx.Broker.Publish(events.GeneratePerspectivesCommand{
			Base:      events.NewBase(ev.CorrelationID()),
			Questions: answered,
		})
	}

	// 3. Grow the conversation tree under the cursor
	p.growTree(log, current, hasCurrent, ev.Frame)

	// 4. Ask for the next question
	if err := p.sctx.Questions.AskNext(ctx, ev.CorrelationID()); err != nil {
		log.Error(err, "failed to ask next question")
		return apperrors.New(apperrors.ErrCodeAnswerPipeline, "failed to ask next question", err)
	}
	return nil
}

// growTree attaches a new turn in a probabilistically chosen direction.
// A rejected direction is retried once in the opposite direction; if both
// are out of bounds the turn is dropped.
func (p *AnswerProcessor) growTree(log logr.Logger, current events.QuestionAndAnswer, hasCurrent bool, answer events.Frame) {
	var question *events.QuestionAndAnswer
	if hasCurrent {
		question = &current
	}

	turn := tree.NewTurn(question, answer)
	direction := p.chooser.Choose()
	if p.tree.AddTurn(turn, direction) {
		return
	}

	opposite := direction.Opposite()
	if p.tree.AddTurn(turn, opposite) {
		log.V(1).Info("growth direction rejected, used opposite",
			"chosen", direction, "used", opposite)
		return
	}

	log.Info("turn dropped, tree growth bounds reached",
		"depth", p.tree.CurrentDepth(), "breadth", p.tree.CurrentBreadth())
}
