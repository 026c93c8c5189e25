// Package events defines the message vocabulary of the interview core: the
// event and command variants routed through the bus, plus the shared Frame
// and question types their payloads carry.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Kind identifies the concrete type of an event for subscription routing
type Kind string

// Event kinds
const (
	// KindWildcard subscribes a handler to every event on the bus
	KindWildcard Kind = "*"

	KindStart                 Kind = "session.start"
	KindMessageReceived       Kind = "message.received"
	KindAddToMemory           Kind = "memory.add"
	KindAskQuestion           Kind = "question.ask"
	KindQuestionsGathering    Kind = "questions.gathering"
	KindEvaluationsGenerated  Kind = "evaluations.generated"
	KindPerspectivesGenerated Kind = "perspectives.generated"
	KindInterviewEnd          Kind = "interview.end"
	KindNotification          Kind = "notice.send"
	KindError                 Kind = "error"

	// Command kinds request work rather than announce a fact. They ride the
	// same bus and routing as events.
	KindGenerateEvaluations  Kind = "command.generate_evaluations"
	KindGeneratePerspectives Kind = "command.generate_perspectives"
)

// Event is the contract every bus message satisfies. Events are immutable
// once published; handlers only read them.
type Event interface {
	// EventID returns the unique id of this event
	EventID() string
	// CorrelationID links a causal chain of events (an answer and the
	// evaluations it triggered share one correlation id)
	CorrelationID() string
	// OccurredAt returns the creation timestamp
	OccurredAt() time.Time
	// Kind returns the routing kind
	Kind() Kind
}

// Base carries the attributes shared by every event variant
type Base struct {
	ID          string
	Correlation string
	Timestamp   time.Time
}

// NewBase creates event base attributes. An empty correlation id starts a
// fresh causal chain.
func NewBase(correlationID string) Base {
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	return Base{
		ID:          uuid.NewString(),
		Correlation: correlationID,
		Timestamp:   time.Now(),
	}
}

func (b Base) EventID() string       { return b.ID }
func (b Base) CorrelationID() string { return b.Correlation }
func (b Base) OccurredAt() time.Time { return b.Timestamp }

// GatheringStatus reports progress of a question-generation run
type GatheringStatus string

const (
	GatheringInProgress GatheringStatus = "in_progress"
	GatheringCompleted  GatheringStatus = "completed"
)

// EndReason explains why a session terminated
type EndReason string

const (
	EndReasonQuestionsExhausted EndReason = "questions_exhausted"
	EndReasonTimeout            EndReason = "timeout"
)

// StartEvent announces that a session is beginning
type StartEvent struct {
	Base
	SessionID string
}

func (StartEvent) Kind() Kind { return KindStart }

// MessageReceivedEvent carries a raw inbound payload from the transport layer
type MessageReceivedEvent struct {
	Base
	SessionID  string
	RawPayload string
}

func (MessageReceivedEvent) Kind() Kind { return KindMessageReceived }

// AddToMemoryEvent requests that a frame be recorded and processed as an answer
type AddToMemoryEvent struct {
	Base
	SessionID string
	Frame     Frame
}

func (AddToMemoryEvent) Kind() Kind { return KindAddToMemory }

// AskQuestionEvent announces the next question to deliver outward
type AskQuestionEvent struct {
	Base
	Question QuestionAndAnswer
}

func (AskQuestionEvent) Kind() Kind { return KindAskQuestion }

// QuestionsGatheringEvent reports question-pool generation progress
type QuestionsGatheringEvent struct {
	Base
	Status GatheringStatus
}

func (QuestionsGatheringEvent) Kind() Kind { return KindQuestionsGathering }

// EvaluationsGeneratedEvent carries evaluation result frames
type EvaluationsGeneratedEvent struct {
	Base
	Evaluations []Frame
}

func (EvaluationsGeneratedEvent) Kind() Kind { return KindEvaluationsGenerated }

// PerspectivesGeneratedEvent carries perspective commentary frames
type PerspectivesGeneratedEvent struct {
	Base
	Perspectives []Frame
}

func (PerspectivesGeneratedEvent) Kind() Kind { return KindPerspectivesGenerated }

// InterviewEndEvent terminates the session
type InterviewEndEvent struct {
	Base
	Reason EndReason
}

func (InterviewEndEvent) Kind() Kind { return KindInterviewEnd }

// NotificationEvent carries a plain-text status frame to deliver outward
type NotificationEvent struct {
	Base
	Frame Frame
}

func (NotificationEvent) Kind() Kind { return KindNotification }

// ErrorEvent reports a fatal failure to the session's error boundary
type ErrorEvent struct {
	Base
	Message string
}

func (ErrorEvent) Kind() Kind { return KindError }

// GenerateEvaluationsCommand requests evaluation fan-out for answered questions
type GenerateEvaluationsCommand struct {
	Base
	Questions []QuestionAndAnswer
}

func (GenerateEvaluationsCommand) Kind() Kind { return KindGenerateEvaluations }

// GeneratePerspectivesCommand requests perspective fan-out for answered questions
type GeneratePerspectivesCommand struct {
	Base
	Questions []QuestionAndAnswer
}

func (GeneratePerspectivesCommand) Kind() Kind { return KindGeneratePerspectives }
