package tool

import (
	"context"
	"fmt"

	"github.com/service-bene-fit-co-nz/coachflow/core"
	"github.com/service-bene-fit-co-nz/coachflow/logging"
)

// Context provides a constrained, auditable surface for tool handlers. It
// exposes the run's caller identity and selected-client scope plus the
// deadline-bounded context.Context governing this single invocation.
type Context struct {
	ctx        context.Context
	run        *core.RunContext
	toolCallID string
}

// NewContext constructs a tool context bound to a parent RunContext and a
// unique tool-call ID. ctx is the (possibly deadline-bounded) context the
// handler must respect; it is derived from, but not identical to, the run's
// ambient context.
func NewContext(ctx context.Context, run *core.RunContext, toolCallID string) *Context {
	return &Context{ctx: ctx, run: run, toolCallID: toolCallID}
}

// Context returns the cancellation/deadline context for this invocation.
func (tc *Context) Context() context.Context { return tc.ctx }

// RunID returns the run this invocation belongs to.
func (tc *Context) RunID() string { return tc.run.RunID }

// ToolCallID returns the model-issued identifier correlating request and result.
func (tc *Context) ToolCallID() string { return tc.toolCallID }

// Caller returns the identity of the user driving the run.
func (tc *Context) Caller() core.Identity { return tc.run.Caller }

// ClientID returns the selected-client scope, or an error when the run has
// no client selected. Tools in the client.* namespace require a scope.
func (tc *Context) ClientID() (string, error) {
	if tc.run.ClientID == "" {
		return "", fmt.Errorf("no client selected for this conversation")
	}
	return tc.run.ClientID, nil
}

// Logger returns the run's logger.
func (tc *Context) Logger() logging.Logger { return tc.run.Logger() }
