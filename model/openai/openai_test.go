package openai

import (
	"strings"
	"testing"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/service-bene-fit-co-nz/coachflow/core"
	"github.com/service-bene-fit-co-nz/coachflow/model"
)

func TestEmitFinalChunkKeepsToolCallIssuanceOrder(t *testing.T) {
	m := &Model{}
	out := make(chan model.Response, 1)

	// Aggregated out of arrival order on purpose; chunk indices are the
	// model's issuance order.
	toolAgg := map[int64]*aggCall{
		2: {id: "c-3", name: "gamma.get", args: "{}"},
		0: {id: "c-1", name: "alpha.get", args: "{}"},
		1: {id: "c-2", name: "beta.get", args: "{}"},
	}

	var builder strings.Builder
	m.emitFinalChunk(openai.ChatCompletionChunkChoice{FinishReason: "tool_calls"}, &builder, toolAgg, out)

	resp := <-out
	assert.False(t, resp.Partial)
	assert.Equal(t, "tool_calls", resp.FinishReason)

	calls := resp.Message.ToolCalls()
	require.Len(t, calls, 3)
	assert.Equal(t, []string{"c-1", "c-2", "c-3"}, []string{calls[0].ID, calls[1].ID, calls[2].ID})
}

func TestEncodeResult(t *testing.T) {
	assert.Equal(t, "error: backend unavailable",
		encodeResult(core.ToolResult{ToolCallID: "c-1", Error: "backend unavailable"}))
	assert.Equal(t, "plain", encodeResult(core.ToolResult{ToolCallID: "c-2", Payload: "plain"}))
	assert.Equal(t, `{"rows":2}`,
		encodeResult(core.ToolResult{ToolCallID: "c-3", Payload: map[string]any{"rows": 2}}))
}
