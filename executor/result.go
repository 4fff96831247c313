package executor

import (
	"github.com/service-bene-fit-co-nz/coachflow/core"
)

// ToolError describes a per-call fault. Kind classifies the failure so the
// orchestrator and stream consumers can distinguish bad arguments from
// timeouts and runtime errors.
type ToolError struct {
	Kind    core.ErrorKind `json:"kind"`
	Message string         `json:"message"`
}

// Error implements the error interface.
func (e *ToolError) Error() string { return string(e.Kind) + ": " + e.Message }

// Result is the outcome of a single tool call. Exactly one of Payload and
// Err is meaningful: a nil Err means the call succeeded.
type Result struct {
	ToolCallID string     `json:"tool_call_id"`
	ToolID     string     `json:"tool_id"`
	Payload    any        `json:"payload,omitempty"`
	Err        *ToolError `json:"error,omitempty"`
}

// ToToolResult converts the execution outcome into the conversation-level
// tool result appended to the transcript.
func (r Result) ToToolResult() core.ToolResult {
	res := core.ToolResult{
		ToolCallID: r.ToolCallID,
		Name:       r.ToolID,
	}
	if r.Err != nil {
		res.Error = r.Err.Message
		return res
	}
	res.Payload = r.Payload
	return res
}
