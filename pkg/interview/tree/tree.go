// Package tree holds the bounded conversation tree: an arena-owned record of
// how the dialogue branches, with a cursor at the most recently active turn.
package tree

import (
	"github.com/google/uuid"

	"github.com/parley-dev/parley/pkg/interview/events"
)

// Direction selects how the dialogue grows from the cursor
type Direction string

const (
	// Deeper attaches a follow-up one level below the cursor
	Deeper Direction = "deeper"
	// Broader attaches a sibling-style probe at the cursor's depth
	Broader Direction = "broader"
)

// Opposite returns the other growth direction
func (d Direction) Opposite() Direction {
	if d == Deeper {
		return Broader
	}
	return Deeper
}

// TurnID identifies a turn inside the tree's arena store
type TurnID string

// Turn is one exchange: an optional question, a mandatory answer frame, and
// arena links to parent and children. Depth and Breadth are assigned once at
// insertion and never change.
type Turn struct {
	ID       TurnID
	Question *events.QuestionAndAnswer
	Answer   events.Frame
	Parent   TurnID
	Children []TurnID
	Depth    int
	Breadth  int
}

// NewTurn creates a detached turn ready for insertion
func NewTurn(question *events.QuestionAndAnswer, answer events.Frame) *Turn {
	return &Turn{
		ID:       TurnID(uuid.NewString()),
		Question: question,
		Answer:   answer,
	}
}

// ConversationTree owns all turns in an indexed store. Parent links are
// lookup keys into that store, so there are no reference cycles. A single
// cursor points at the most recently active turn.
type ConversationTree struct {
	maxDepth   int
	maxBreadth int

	turns    map[TurnID]*Turn
	rootID   TurnID
	cursorID TurnID

	// tree-wide high-water marks, monotone under successful insertion
	currentDepth   int
	currentBreadth int
}

// New creates an empty tree with the given growth bounds
func New(maxDepth, maxBreadth int) *ConversationTree {
	return &ConversationTree{
		maxDepth:   maxDepth,
		maxBreadth: maxBreadth,
		turns:      make(map[TurnID]*Turn),
	}
}

// AddTurn attaches turn as a child of the cursor, growing in the given
// direction, and advances the cursor to it. The first turn always becomes
// the root regardless of direction. Growth past the configured bounds is
// rejected: AddTurn returns false and the tree is unchanged.
func (t *ConversationTree) AddTurn(turn *Turn, direction Direction) bool {
	if t.rootID == "" {
		turn.Depth = 0
		turn.Breadth = 0
		turn.Parent = ""
		t.turns[turn.ID] = turn
		t.rootID = turn.ID
		t.cursorID = turn.ID
		return true
	}

	cursor := t.turns[t.cursorID]

	var depth, breadth int
	switch direction {
	case Deeper:
		depth = cursor.Depth + 1
		breadth = cursor.Breadth
		if depth > t.maxDepth {
			return false
		}
	case Broader:
		depth = cursor.Depth
		breadth = cursor.Breadth + 1
		if breadth > t.maxBreadth || t.countAtDepth(depth)+1 > t.maxBreadth {
			return false
		}
	default:
		return false
	}

	turn.Depth = depth
	turn.Breadth = breadth
	turn.Parent = cursor.ID
	t.turns[turn.ID] = turn
	cursor.Children = append(cursor.Children, turn.ID)
	t.cursorID = turn.ID

	if depth > t.currentDepth {
		t.currentDepth = depth
	}
	if breadth > t.currentBreadth {
		t.currentBreadth = breadth
	}
	return true
}

// MoveTo points the cursor at turn. It validates membership by searching from
// the root and returns false if the turn is not reachable.
func (t *ConversationTree) MoveTo(turn *Turn) bool {
	if turn == nil || t.rootID == "" {
		return false
	}
	if !t.reachable(t.rootID, turn.ID) {
		return false
	}
	t.cursorID = turn.ID
	return true
}

// MoveUp moves the cursor to its parent; fails at the root
func (t *ConversationTree) MoveUp() bool {
	cursor := t.Cursor()
	if cursor == nil || cursor.Parent == "" {
		return false
	}
	t.cursorID = cursor.Parent
	return true
}

// MoveToChild moves the cursor to its index-th child; fails on a
// missing cursor or an out-of-range index
func (t *ConversationTree) MoveToChild(index int) bool {
	cursor := t.Cursor()
	if cursor == nil || index < 0 || index >= len(cursor.Children) {
		return false
	}
	t.cursorID = cursor.Children[index]
	return true
}

// Cursor returns the turn under the cursor, or nil on an empty tree
func (t *ConversationTree) Cursor() *Turn {
	if t.cursorID == "" {
		return nil
	}
	return t.turns[t.cursorID]
}

// Root returns the root turn, or nil on an empty tree
func (t *ConversationTree) Root() *Turn {
	if t.rootID == "" {
		return nil
	}
	return t.turns[t.rootID]
}

// Get looks up a turn by id
func (t *ConversationTree) Get(id TurnID) (*Turn, bool) {
	turn, ok := t.turns[id]
	return turn, ok
}

// Size returns the number of turns in the tree
func (t *ConversationTree) Size() int {
	return len(t.turns)
}

// CurrentDepth returns the deepest level reached so far
func (t *ConversationTree) CurrentDepth() int { return t.currentDepth }

// CurrentBreadth returns the widest sibling index reached so far
func (t *ConversationTree) CurrentBreadth() int { return t.currentBreadth }

// WithinBounds reports whether the high-water marks respect the configured
// maxima. This is a sanity invariant; enforcement happens in AddTurn.
func (t *ConversationTree) WithinBounds() bool {
	return t.currentDepth <= t.maxDepth && t.currentBreadth <= t.maxBreadth
}

func (t *ConversationTree) countAtDepth(depth int) int {
	count := 0
	for _, turn := range t.turns {
		if turn.Depth == depth {
			count++
		}
	}
	return count
}

func (t *ConversationTree) reachable(from, target TurnID) bool {
	if from == target {
		return true
	}
	turn, ok := t.turns[from]
	if !ok {
		return false
	}
	for _, child := range turn.Children {
		if t.reachable(child, target) {
			return true
		}
	}
	return false
}
