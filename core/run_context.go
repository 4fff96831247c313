package core

import (
	"context"
	"slices"

	"github.com/service-bene-fit-co-nz/coachflow/logging"
)

// Identity describes the caller of a conversation run. Roles drive the
// authorization policy that produces the caller's tool set; the orchestrator
// itself never inspects them.
type Identity struct {
	UserID string
	Roles  []string
}

// HasRole reports whether the identity carries the given role.
func (id Identity) HasRole(role string) bool {
	return slices.Contains(id.Roles, role)
}

// RunContext carries the scoped execution environment for one orchestration
// run: the ambient cancellation context, caller identity, the authorized
// tool-identifier set, an optional selected-client scope and the resolved
// model identifier.
//
// A RunContext is created once per incoming request, owned exclusively by
// the orchestrator task driving the run, and discarded when the run
// terminates. It is never shared across requests.
type RunContext struct {
	Context  context.Context
	RunID    string
	Caller   Identity
	ClientID string // selected-entity scope; empty when no client is selected
	ModelID  string

	AuthorizedTools []string
	Rounds          *RoundLimiter

	*loggerAdapter
}

// NewRunContext constructs a RunContext with a fresh round limiter.
func NewRunContext(
	ctx context.Context,
	runID string,
	caller Identity,
	clientID string,
	modelID string,
	authorizedTools []string,
	maxRounds int,
	logger logging.Logger,
) *RunContext {
	return &RunContext{
		Context:         ctx,
		RunID:           runID,
		Caller:          caller,
		ClientID:        clientID,
		ModelID:         modelID,
		AuthorizedTools: authorizedTools,
		Rounds:          NewRoundLimiter(maxRounds),
		loggerAdapter:   newLoggerAdapter(logger),
	}
}

// Done returns a channel closed when the underlying context is cancelled.
func (rc *RunContext) Done() <-chan struct{} { return rc.Context.Done() }

// Err returns the cancellation error (if any) from the underlying context.
func (rc *RunContext) Err() error { return rc.Context.Err() }

// Authorized reports whether a tool identifier is in the caller's
// authorized set.
func (rc *RunContext) Authorized(toolID string) bool {
	return slices.Contains(rc.AuthorizedTools, toolID)
}

// ScopeValues returns the run scope as template data for system prompt
// rendering.
func (rc *RunContext) ScopeValues() map[string]any {
	return map[string]any{
		"RunID":    rc.RunID,
		"UserID":   rc.Caller.UserID,
		"Roles":    rc.Caller.Roles,
		"ClientID": rc.ClientID,
		"ModelID":  rc.ModelID,
	}
}
