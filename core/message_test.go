package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageText(t *testing.T) {
	m := Message{Role: RoleAssistant, Parts: []Part{
		TextPart{Text: "hello "},
		TextPart{Text: "world"},
	}}
	assert.Equal(t, "hello world", m.Text())
}

func TestMessageIsTerminal(t *testing.T) {
	assert.True(t, NewAssistantMessage("done").IsTerminal())

	withCall := Message{Role: RoleAssistant, Parts: []Part{
		TextPart{Text: "checking"},
		ToolCallPart{Call: ToolCall{ID: "c-1", Name: "client.profile.get"}},
	}}
	assert.False(t, withCall.IsTerminal())
}

func TestMessageToolCallsAndResults(t *testing.T) {
	m := Message{Role: RoleAssistant, Parts: []Part{
		ToolCallPart{Call: ToolCall{ID: "c-1", Name: "a"}},
		ToolCallPart{Call: ToolCall{ID: "c-2", Name: "b"}},
	}}
	calls := m.ToolCalls()
	assert.Len(t, calls, 2)
	assert.Equal(t, "c-1", calls[0].ID)
	assert.Equal(t, "c-2", calls[1].ID)

	res := NewToolResultMessage(ToolResult{ToolCallID: "c-1", Name: "a", Payload: 42})
	assert.Equal(t, RoleTool, res.Role)
	assert.Len(t, res.ToolResults(), 1)
}
