package core

import "strings"

// Role identifies the author of a message in the transcript.
type Role string

const (
	// RoleSystem marks instruction content prepended to the transcript.
	RoleSystem Role = "system"
	// RoleUser marks caller-authored content.
	RoleUser Role = "user"
	// RoleAssistant marks model-authored content, including tool-call requests.
	RoleAssistant Role = "assistant"
	// RoleTool marks tool execution results fed back to the model.
	RoleTool Role = "tool"
)

// Part represents a polymorphic segment of role-based message content.
// Concrete part types implement the unexported isPart marker enabling a closed set.
type Part interface{ isPart() }

// TextPart is a plain text content segment.
type TextPart struct {
	Text string
}

func (TextPart) isPart() {}

// ToolCall describes a tool invocation request emitted by the model.
// Arguments is the serialized JSON argument payload as the model produced it.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments,omitempty"`
}

// ToolCallPart wraps a ToolCall as a content part.
type ToolCallPart struct {
	Call ToolCall
}

func (ToolCallPart) isPart() {}

// ToolResult describes the outcome of a tool call. Exactly one of Payload or
// Error is meaningful: Error is empty on success.
type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	Name       string `json:"name"`
	Payload    any    `json:"payload,omitempty"`
	Error      string `json:"error,omitempty"`
}

// ToolResultPart wraps a ToolResult as a content part.
type ToolResultPart struct {
	Result ToolResult
}

func (ToolResultPart) isPart() {}

// Message holds a role plus ordered heterogeneous parts. Messages are value
// types; once appended to a Conversation they are never mutated.
type Message struct {
	Role  Role   `json:"role"`
	Parts []Part `json:"parts"`
}

// NewSystemMessage creates a system message with a single text part.
func NewSystemMessage(text string) Message {
	return Message{Role: RoleSystem, Parts: []Part{TextPart{Text: text}}}
}

// NewUserMessage creates a user message with a single text part.
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Parts: []Part{TextPart{Text: text}}}
}

// NewAssistantMessage creates an assistant message with a single text part.
func NewAssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Parts: []Part{TextPart{Text: text}}}
}

// NewToolResultMessage wraps a single tool result as a tool-role message.
func NewToolResultMessage(result ToolResult) Message {
	return Message{Role: RoleTool, Parts: []Part{ToolResultPart{Result: result}}}
}

// Text concatenates all text parts of the message in order.
func (m Message) Text() string {
	var b strings.Builder
	for _, p := range m.Parts {
		if tp, ok := p.(TextPart); ok {
			b.WriteString(tp.Text)
		}
	}
	return b.String()
}

// ToolCalls returns any tool-call parts contained within the message
// preserving their original order.
func (m Message) ToolCalls() []ToolCall {
	var calls []ToolCall
	for _, p := range m.Parts {
		if tc, ok := p.(ToolCallPart); ok {
			calls = append(calls, tc.Call)
		}
	}
	return calls
}

// ToolResults returns any tool-result parts contained within the message
// preserving their original order.
func (m Message) ToolResults() []ToolResult {
	var results []ToolResult
	for _, p := range m.Parts {
		if tr, ok := p.(ToolResultPart); ok {
			results = append(results, tr.Result)
		}
	}
	return results
}

// IsTerminal reports whether an assistant message completes a run: no pending
// tool calls means the model has produced its final content.
func (m Message) IsTerminal() bool {
	return m.Role == RoleAssistant && len(m.ToolCalls()) == 0
}
