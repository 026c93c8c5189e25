package analyzers

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/parley-dev/parley/pkg/interview/errors"
	"github.com/parley-dev/parley/pkg/interview/events"
	"github.com/parley-dev/parley/pkg/interview/memory"
	"github.com/parley-dev/parley/pkg/interview/thinker"
)

// RubricAnalyzer scores the candidate's answers against each question's
// reference answer and scoring hints
type RubricAnalyzer struct {
	thinker thinker.Thinker
	store   memory.Store
}

// NewRubricAnalyzer creates a rubric-based evaluation analyzer
func NewRubricAnalyzer(t thinker.Thinker, store memory.Store) *RubricAnalyzer {
	return &RubricAnalyzer{thinker: t, store: store}
}

// Name returns the analyzer name
func (a *RubricAnalyzer) Name() string { return "rubric" }

// Analyze evaluates the conversation so far against the rubric
func (a *RubricAnalyzer) Analyze(ctx context.Context, questions []events.QuestionAndAnswer) (events.Frame, error) {
	instruction := "You are grading an interview. Score the candidate's latest answer against the rubric below. Be specific about gaps.\n\n" + rubric(questions)

	messages, err := a.store.ExtractForGeneration(ctx, memory.Filter{Address: events.AddressCandidate}, instruction)
	if err != nil {
		return events.Frame{}, err
	}

	completion, err := a.thinker.Generate(ctx, messages)
	if err != nil {
		return events.Frame{}, apperrors.New(apperrors.ErrCodeAnalyzerFailed, "rubric evaluation failed", err)
	}

	payload := events.Payload{Kind: events.PayloadCompletion, Completion: completion}
	return payload.Package(events.AddressEvaluations, events.RoleAnalyzer)
}

// PersonaAnalyzer produces commentary on the exchange from one named
// perspective (for example "hiring manager" or "staff engineer")
type PersonaAnalyzer struct {
	thinker thinker.Thinker
	store   memory.Store
	persona string
}

// NewPersonaAnalyzer creates a perspective analyzer for persona
func NewPersonaAnalyzer(t thinker.Thinker, store memory.Store, persona string) *PersonaAnalyzer {
	return &PersonaAnalyzer{thinker: t, store: store, persona: persona}
}

// Name returns the analyzer name
func (a *PersonaAnalyzer) Name() string { return "persona:" + a.persona }

// Analyze comments on the conversation from the configured perspective
func (a *PersonaAnalyzer) Analyze(ctx context.Context, questions []events.QuestionAndAnswer) (events.Frame, error) {
	instruction := fmt.Sprintf(
		"You are a %s observing an interview. Give a short reaction to the candidate's latest answer from your perspective.",
		a.persona,
	)

	messages, err := a.store.ExtractForGeneration(ctx, memory.Filter{Address: events.AddressCandidate}, instruction)
	if err != nil {
		return events.Frame{}, err
	}

	completion, err := a.thinker.Generate(ctx, messages)
	if err != nil {
		return events.Frame{}, apperrors.New(apperrors.ErrCodeAnalyzerFailed, "persona commentary failed", err)
	}

	payload := events.Payload{Kind: events.PayloadCompletion, Completion: completion}
	return payload.Package(events.AddressPerspectives, events.RoleAnalyzer)
}

func rubric(questions []events.QuestionAndAnswer) string {
	var b strings.Builder
	for i, q := range questions {
		fmt.Fprintf(&b, "Question %d: %s\nReference answer: %s\n", i+1, q.Question, q.ReferenceAnswer)
		if len(q.ScoringHints) > 0 {
			fmt.Fprintf(&b, "Scoring hints: %s\n", strings.Join(q.ScoringHints, "; "))
		}
		b.WriteString("\n")
	}
	return b.String()
}
