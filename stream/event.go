package stream

import (
	"encoding/json"

	"github.com/service-bene-fit-co-nz/coachflow/core"
)

// Event is one unit of the ordered outbound notification sequence. Concrete
// event types implement the unexported isEvent marker enabling a closed set.
// Each variant carries only the fields relevant to it; the JSON form tags
// every event with a "type" discriminator so consumers face no polymorphic
// ambiguity.
type Event interface{ isEvent() }

// TextDelta carries an incremental fragment of assistant text.
type TextDelta struct {
	Text string `json:"text"`
}

func (TextDelta) isEvent() {}

// ToolCallStarted announces that a tool invocation has been dispatched.
type ToolCallStarted struct {
	ToolCallID string `json:"tool_call_id"`
	ToolID     string `json:"tool_id"`
	Arguments  string `json:"arguments,omitempty"`
}

func (ToolCallStarted) isEvent() {}

// ToolCallFinished reports the outcome of a dispatched tool invocation.
// ErrorKind and ErrorMessage are empty on success.
type ToolCallFinished struct {
	ToolCallID   string         `json:"tool_call_id"`
	ToolID       string         `json:"tool_id"`
	Payload      any            `json:"payload,omitempty"`
	ErrorKind    core.ErrorKind `json:"error_kind,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
}

func (ToolCallFinished) isEvent() {}

// RunCompleted marks the successful end of a run.
type RunCompleted struct {
	Rounds int `json:"rounds"`
}

func (RunCompleted) isEvent() {}

// RunFailed marks the unrecoverable end of a run.
type RunFailed struct {
	Kind    core.ErrorKind `json:"kind"`
	Message string         `json:"message"`
}

func (RunFailed) isEvent() {}

// envelope is the wire form of an event: a type tag plus the variant payload.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Wire event type tags.
const (
	TypeTextDelta        = "text_delta"
	TypeToolCallStarted  = "tool_call_started"
	TypeToolCallFinished = "tool_call_finished"
	TypeRunCompleted     = "run_completed"
	TypeRunFailed        = "run_failed"
)

// TypeOf returns the wire tag for an event variant.
func TypeOf(ev Event) string {
	switch ev.(type) {
	case TextDelta:
		return TypeTextDelta
	case ToolCallStarted:
		return TypeToolCallStarted
	case ToolCallFinished:
		return TypeToolCallFinished
	case RunCompleted:
		return TypeRunCompleted
	case RunFailed:
		return TypeRunFailed
	default:
		return "unknown"
	}
}

// Marshal encodes an event into its tagged wire form.
func Marshal(ev Event) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Type: TypeOf(ev), Data: data})
}

// IsTerminal reports whether the event ends its run.
func IsTerminal(ev Event) bool {
	switch ev.(type) {
	case RunCompleted, RunFailed:
		return true
	default:
		return false
	}
}
