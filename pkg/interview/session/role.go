package session

import (
	"context"
	"fmt"

	apperrors "github.com/parley-dev/parley/pkg/interview/errors"
	"github.com/parley-dev/parley/pkg/interview/events"
	"github.com/parley-dev/parley/pkg/interview/memory"
	"github.com/parley-dev/parley/pkg/interview/thinker"
)

// RoleBuilder assembles the interviewer's role and persona context during
// session initialization
type RoleBuilder interface {
	Build(ctx context.Context) error
}

// ThinkerRoleBuilder derives the role context with a model call and records
// it as a system frame so later prompts carry it
type ThinkerRoleBuilder struct {
	thinker thinker.Thinker
	store   memory.Store
	role    string
}

// NewThinkerRoleBuilder creates a builder for the named interviewer role
func NewThinkerRoleBuilder(t thinker.Thinker, store memory.Store, role string) *ThinkerRoleBuilder {
	return &ThinkerRoleBuilder{thinker: t, store: store, role: role}
}

// Build generates the role context and persists it
func (b *ThinkerRoleBuilder) Build(ctx context.Context) error {
	messages := []thinker.Message{
		{
			Role: "user",
			Content: fmt.Sprintf(
				"Write a short briefing for an interviewer acting as a %s: tone, focus areas, and what to listen for.",
				b.role,
			),
		},
	}

	completion, err := b.thinker.Generate(ctx, messages)
	if err != nil {
		return apperrors.New(apperrors.ErrCodeRoleBuild, "failed to build role context", err)
	}

	frame := events.NewFrame(events.AddressCandidate, events.RoleSystem, completion.Text)
	if err := b.store.Add(ctx, frame); err != nil {
		return apperrors.New(apperrors.ErrCodeRoleBuild, "failed to persist role context", err)
	}
	return nil
}

// NoopRoleBuilder skips role construction; sessions without a configured
// role use it
type NoopRoleBuilder struct{}

// Build does nothing
func (NoopRoleBuilder) Build(context.Context) error { return nil }
