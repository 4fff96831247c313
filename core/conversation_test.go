package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func assistantWithCalls(calls ...ToolCall) Message {
	parts := make([]Part, 0, len(calls))
	for _, c := range calls {
		parts = append(parts, ToolCallPart{Call: c})
	}
	return Message{Role: RoleAssistant, Parts: parts}
}

func TestConversationSeedIsCopied(t *testing.T) {
	seed := []Message{NewUserMessage("hi")}
	conv := NewConversation(seed)

	seed[0] = NewUserMessage("mutated")

	assert.Equal(t, "hi", conv.Messages()[0].Text())
}

func TestConversationAppendTracksIssuedCalls(t *testing.T) {
	conv := NewConversation(nil)

	err := conv.Append(assistantWithCalls(ToolCall{ID: "call-1", Name: "client.notes.get"}))
	assert.NoError(t, err)
	assert.True(t, conv.Issued("call-1"))

	err = conv.Append(NewToolResultMessage(ToolResult{ToolCallID: "call-1", Name: "client.notes.get", Payload: "ok"}))
	assert.NoError(t, err)
}

func TestConversationRejectsUnknownToolResult(t *testing.T) {
	conv := NewConversation(nil)

	err := conv.Append(NewToolResultMessage(ToolResult{ToolCallID: "ghost", Name: "x"}))
	assert.Error(t, err)
}

func TestConversationRejectsDuplicateToolResult(t *testing.T) {
	conv := NewConversation(nil)

	assert.NoError(t, conv.Append(assistantWithCalls(ToolCall{ID: "call-1", Name: "t"})))
	assert.NoError(t, conv.Append(NewToolResultMessage(ToolResult{ToolCallID: "call-1", Name: "t"})))

	err := conv.Append(NewToolResultMessage(ToolResult{ToolCallID: "call-1", Name: "t"}))
	assert.Error(t, err)
}

func TestConversationRejectsEmptyCallID(t *testing.T) {
	conv := NewConversation(nil)

	err := conv.Append(assistantWithCalls(ToolCall{ID: "", Name: "t"}))
	assert.Error(t, err)
}

func TestConversationPendingCalls(t *testing.T) {
	conv := NewConversation(nil)

	assert.NoError(t, conv.Append(assistantWithCalls(
		ToolCall{ID: "call-1", Name: "a"},
		ToolCall{ID: "call-2", Name: "b"},
	)))
	assert.NoError(t, conv.Append(NewToolResultMessage(ToolResult{ToolCallID: "call-1", Name: "a"})))

	pending := conv.PendingCalls()
	assert.Equal(t, []string{"call-2"}, pending)
}

func TestMessagesReturnsDefensiveCopy(t *testing.T) {
	conv := NewConversation([]Message{NewUserMessage("hi")})

	msgs := conv.Messages()
	msgs[0] = NewUserMessage("mutated")

	assert.Equal(t, "hi", conv.Messages()[0].Text())
}
