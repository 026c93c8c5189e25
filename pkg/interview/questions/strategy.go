// Package questions manages the ordered pool of planned questions and the
// strategies that fill it.
package questions

import (
	"context"
	"fmt"

	apperrors "github.com/parley-dev/parley/pkg/interview/errors"
	"github.com/parley-dev/parley/pkg/interview/events"
	"github.com/parley-dev/parley/pkg/interview/thinker"
)

// Strategy sources the raw question material for a session. Implementations
// differ in where questions come from, but all produce the same typed pool.
type Strategy interface {
	Generate(ctx context.Context) ([]events.QuestionAndAnswer, error)
}

// BankStrategy draws questions from a fixed bank, in bank order
type BankStrategy struct {
	bank  []events.QuestionAndAnswer
	count int
}

// NewBankStrategy creates a strategy serving up to count questions from bank.
// A count of 0 serves the whole bank.
func NewBankStrategy(bank []events.QuestionAndAnswer, count int) *BankStrategy {
	return &BankStrategy{bank: bank, count: count}
}

// Generate returns the leading slice of the bank
func (s *BankStrategy) Generate(_ context.Context) ([]events.QuestionAndAnswer, error) {
	n := len(s.bank)
	if s.count > 0 && s.count < n {
		n = s.count
	}
	pool := make([]events.QuestionAndAnswer, n)
	copy(pool, s.bank[:n])
	return pool, nil
}

// questionBatchSchema constrains synthesized pools to the typed shape
const questionBatchSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "question": {"type": "string"},
      "reference_answer": {"type": "string"},
      "scoring_hints": {"type": "array", "items": {"type": "string"}}
    },
    "required": ["question", "reference_answer"]
  }
}`

// ThinkerStrategy synthesizes a fresh question pool with a Thinker call
type ThinkerStrategy struct {
	thinker thinker.Thinker
	topic   string
	count   int
}

// NewThinkerStrategy creates a strategy synthesizing count questions on topic
func NewThinkerStrategy(t thinker.Thinker, topic string, count int) *ThinkerStrategy {
	return &ThinkerStrategy{thinker: t, topic: topic, count: count}
}

// Generate asks the Thinker for a structured question batch
func (s *ThinkerStrategy) Generate(ctx context.Context) ([]events.QuestionAndAnswer, error) {
	messages := []thinker.Message{
		{
			Role: "user",
			Content: fmt.Sprintf(
				"Write %d interview questions about %q. For each, include a reference answer and scoring hints.",
				s.count, s.topic,
			),
		},
	}

	var pool []events.QuestionAndAnswer
	if err := s.thinker.ExtractStructured(ctx, questionBatchSchema, messages, &pool); err != nil {
		return nil, apperrors.New(apperrors.ErrCodeQuestionGen, "question synthesis failed", err)
	}
	return pool, nil
}
