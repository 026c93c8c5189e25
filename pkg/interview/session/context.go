// Package session drives a single interview session: lifecycle state
// machine, answer processing, and the time budget.
package session

import (
	"time"

	"github.com/parley-dev/parley/pkg/interview/bus"
	"github.com/parley-dev/parley/pkg/interview/memory"
	"github.com/parley-dev/parley/pkg/interview/questions"
)

// Abilities are the per-session feature toggles for optional side-analyses
type Abilities struct {
	Evaluations  bool
	Perspectives bool
}

// SessionContext is the immutable-after-construction bundle shared by every
// component of one session. The lifecycle manager owns it; everything else
// holds a reference for the session's lifetime.
type SessionContext struct {
	SessionID string
	Broker    *bus.Broker
	Questions *questions.Manager
	Memory    memory.Store
	Abilities Abilities
	MaxTime   time.Duration
}
