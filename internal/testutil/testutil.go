// Package testutil contains helpers used across tests to reduce boilerplate
// when constructing run contexts and draining event streams. They are
// intentionally minimal and not intended for production usage.
package testutil

import (
	"context"

	"github.com/service-bene-fit-co-nz/coachflow/core"
	"github.com/service-bene-fit-co-nz/coachflow/stream"
)

// RunContextBuilder provides a fluent helper for constructing run contexts
// in tests. Chain only the parts you need; sensible defaults are applied.
//
//	rc := NewRunContextBuilder().Roles("coach").Client("client-1").Build()
type RunContextBuilder struct {
	ctx        context.Context
	runID      string
	userID     string
	roles      []string
	clientID   string
	modelID    string
	authorized []string
	maxRounds  int
}

// NewRunContextBuilder creates a builder with deterministic defaults.
func NewRunContextBuilder() *RunContextBuilder {
	return &RunContextBuilder{
		ctx:       context.Background(),
		runID:     "run-test",
		userID:    "user-test",
		modelID:   "scripted",
		maxRounds: 8,
	}
}

// Ctx sets the ambient context (chainable).
func (b *RunContextBuilder) Ctx(ctx context.Context) *RunContextBuilder { b.ctx = ctx; return b }

// RunID overrides the run identifier (chainable).
func (b *RunContextBuilder) RunID(id string) *RunContextBuilder { b.runID = id; return b }

// User sets the caller's user id (chainable).
func (b *RunContextBuilder) User(id string) *RunContextBuilder { b.userID = id; return b }

// Roles sets the caller's roles (chainable).
func (b *RunContextBuilder) Roles(roles ...string) *RunContextBuilder { b.roles = roles; return b }

// Client sets the selected-client scope (chainable).
func (b *RunContextBuilder) Client(id string) *RunContextBuilder { b.clientID = id; return b }

// Model sets the model identifier (chainable).
func (b *RunContextBuilder) Model(id string) *RunContextBuilder { b.modelID = id; return b }

// Authorized sets the caller's authorized tool ids (chainable).
func (b *RunContextBuilder) Authorized(ids ...string) *RunContextBuilder {
	b.authorized = ids
	return b
}

// MaxRounds sets the round budget (chainable).
func (b *RunContextBuilder) MaxRounds(n int) *RunContextBuilder { b.maxRounds = n; return b }

// Build constructs the RunContext.
func (b *RunContextBuilder) Build() *core.RunContext {
	return core.NewRunContext(
		b.ctx,
		b.runID,
		core.Identity{UserID: b.userID, Roles: b.roles},
		b.clientID,
		b.modelID,
		b.authorized,
		b.maxRounds,
		nil,
	)
}

// CollectEvents drains an event channel into a slice, returning when the
// channel closes.
func CollectEvents(events <-chan stream.Event) []stream.Event {
	var out []stream.Event
	for ev := range events {
		out = append(out, ev)
	}
	return out
}

// EventsByType splits a collected event slice by stream type tag.
func EventsByType(events []stream.Event) map[string][]stream.Event {
	grouped := map[string][]stream.Event{}
	for _, ev := range events {
		t := stream.TypeOf(ev)
		grouped[t] = append(grouped[t], ev)
	}
	return grouped
}

// TextOf concatenates all text deltas in a collected event slice.
func TextOf(events []stream.Event) string {
	var text string
	for _, ev := range events {
		if td, ok := ev.(stream.TextDelta); ok {
			text += td.Text
		}
	}
	return text
}

// Terminal returns the last event, which for a completed run is the
// terminal RunCompleted or RunFailed event.
func Terminal(events []stream.Event) stream.Event {
	if len(events) == 0 {
		return nil
	}
	return events[len(events)-1]
}
