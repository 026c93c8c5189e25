package events

import (
	"time"

	"github.com/google/uuid"
)

// Roles a frame can originate from
const (
	RoleInterviewer = "interviewer"
	RoleCandidate   = "candidate"
	RoleAnalyzer    = "analyzer"
	RoleSystem      = "system"
)

// Addresses route frames to logical destinations on the transport side
const (
	AddressCandidate    = "candidate"
	AddressEvaluations  = "evaluations"
	AddressPerspectives = "perspectives"
	AddressNotices      = "notices"
)

// Frame is a single addressed, typed message unit exchanged with the
// transport layer: question text, an answer, an evaluation result, a status
// notice.
type Frame struct {
	ID        string    `json:"id"`
	Address   string    `json:"address"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewFrame creates an addressed frame with a fresh id
func NewFrame(address, role, content string) Frame {
	return Frame{
		ID:        uuid.NewString(),
		Address:   address,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// QuestionAndAnswer is one planned question plus its reference answer and
// scoring hints. Created in a batch by a generation strategy, consumed
// one at a time, never mutated after creation.
type QuestionAndAnswer struct {
	Question        string   `json:"question"`
	ReferenceAnswer string   `json:"reference_answer"`
	ScoringHints    []string `json:"scoring_hints,omitempty"`
}
