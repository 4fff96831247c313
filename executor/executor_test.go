package executor

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/service-bene-fit-co-nz/coachflow/core"
	"github.com/service-bene-fit-co-nz/coachflow/tool"
)

func newRunContext(ctx context.Context, authorized ...string) *core.RunContext {
	return core.NewRunContext(
		ctx,
		"run-1",
		core.Identity{UserID: "coach-1", Roles: []string{"coach"}},
		"client-1",
		"scripted",
		authorized,
		8,
		nil,
	)
}

var objectSchema = map[string]any{"type": "object"}

func fnTool(id string, fn func(tc *tool.Context, args map[string]any) (any, error)) tool.Tool {
	return tool.NewFunctionTool(id, "test "+id, objectSchema, fn)
}

func toolIndex(tools ...tool.Tool) map[string]tool.Tool {
	idx := make(map[string]tool.Tool, len(tools))
	for _, t := range tools {
		idx[t.ID()] = t
	}
	return idx
}

func TestExecuteBatchSuccess(t *testing.T) {
	exec := NewExecutor()
	idx := toolIndex(fnTool("echo.get", func(tc *tool.Context, args map[string]any) (any, error) {
		return args["v"], nil
	}))

	results := exec.ExecuteBatch(newRunContext(context.Background(), "echo.get"), idx, []core.ToolCall{
		{ID: "c-1", Name: "echo.get", Arguments: `{"v":"hello"}`},
	})

	assert.Len(t, results, 1)
	assert.Nil(t, results[0].Err)
	assert.Equal(t, "hello", results[0].Payload)
	assert.Equal(t, "c-1", results[0].ToolCallID)
}

func TestExecuteBatchPreservesRequestOrder(t *testing.T) {
	exec := NewExecutor()
	// Make the first call the slowest so completion order inverts.
	idx := toolIndex(
		fnTool("slow.get", func(tc *tool.Context, args map[string]any) (any, error) {
			time.Sleep(50 * time.Millisecond)
			return "slow", nil
		}),
		fnTool("fast.get", func(tc *tool.Context, args map[string]any) (any, error) {
			return "fast", nil
		}),
	)

	results := exec.ExecuteBatch(newRunContext(context.Background(), "slow.get", "fast.get"), idx, []core.ToolCall{
		{ID: "c-1", Name: "slow.get", Arguments: "{}"},
		{ID: "c-2", Name: "fast.get", Arguments: "{}"},
	})

	assert.Equal(t, "c-1", results[0].ToolCallID)
	assert.Equal(t, "slow", results[0].Payload)
	assert.Equal(t, "c-2", results[1].ToolCallID)
	assert.Equal(t, "fast", results[1].Payload)
}

func TestExecuteBatchRespectsMaxParallel(t *testing.T) {
	var active, peak int32
	exec := NewExecutor(func(o *Options) { o.MaxParallel = 2 })

	busy := func(tc *tool.Context, args map[string]any) (any, error) {
		n := atomic.AddInt32(&active, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&active, -1)
		return nil, nil
	}
	idx := toolIndex(fnTool("busy.get", busy))

	var calls []core.ToolCall
	for i := 0; i < 6; i++ {
		calls = append(calls, core.ToolCall{ID: fmt.Sprintf("c-%d", i), Name: "busy.get", Arguments: "{}"})
	}
	exec.ExecuteBatch(newRunContext(context.Background(), "busy.get"), idx, calls)

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestUnknownToolYieldsExecutionError(t *testing.T) {
	exec := NewExecutor()

	results := exec.ExecuteBatch(newRunContext(context.Background()), map[string]tool.Tool{}, []core.ToolCall{
		{ID: "c-1", Name: "made.up.tool", Arguments: "{}"},
	})

	assert.NotNil(t, results[0].Err)
	assert.Equal(t, core.ErrorKindExecutionError, results[0].Err.Kind)
	assert.Contains(t, results[0].Err.Message, "made.up.tool")
}

func TestUnauthorizedToolYieldsExecutionError(t *testing.T) {
	exec := NewExecutor()
	idx := toolIndex(fnTool("db.sqlQuery.get", func(tc *tool.Context, args map[string]any) (any, error) {
		t.Error("unauthorized tool must not run")
		return nil, nil
	}))

	// The tool is in the resolved index but missing from the caller's
	// authorized set; the executor must refuse to dispatch it.
	results := exec.ExecuteBatch(newRunContext(context.Background(), "client.notes.get"), idx, []core.ToolCall{
		{ID: "c-1", Name: "db.sqlQuery.get", Arguments: "{}"},
	})

	assert.Equal(t, core.ErrorKindExecutionError, results[0].Err.Kind)
	assert.Contains(t, results[0].Err.Message, "not available in this run")
}

func TestMalformedArgumentsYieldInvalidArguments(t *testing.T) {
	exec := NewExecutor()
	idx := toolIndex(fnTool("echo.get", func(tc *tool.Context, args map[string]any) (any, error) {
		return nil, nil
	}))

	results := exec.ExecuteBatch(newRunContext(context.Background(), "echo.get"), idx, []core.ToolCall{
		{ID: "c-1", Name: "echo.get", Arguments: `{not json`},
	})

	assert.Equal(t, core.ErrorKindInvalidArguments, results[0].Err.Kind)
}

func TestSchemaViolationYieldsInvalidArguments(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"limit": map[string]any{"type": "integer"},
		},
		"required": []string{"limit"},
	}
	strict := tool.NewFunctionTool("strict.get", "needs a limit", schema,
		func(tc *tool.Context, args map[string]any) (any, error) { return nil, nil })

	exec := NewExecutor()
	results := exec.ExecuteBatch(newRunContext(context.Background(), "strict.get"), toolIndex(strict), []core.ToolCall{
		{ID: "c-1", Name: "strict.get", Arguments: `{}`},
		{ID: "c-2", Name: "strict.get", Arguments: `{"limit":"five"}`},
		{ID: "c-3", Name: "strict.get", Arguments: `{"limit":5}`},
	})

	assert.Equal(t, core.ErrorKindInvalidArguments, results[0].Err.Kind)
	assert.Equal(t, core.ErrorKindInvalidArguments, results[1].Err.Kind)
	assert.Nil(t, results[2].Err)
}

func TestTimeoutYieldsTimeoutKind(t *testing.T) {
	exec := NewExecutor(func(o *Options) { o.ToolTimeout = 30 * time.Millisecond })
	idx := toolIndex(fnTool("hang.get", func(tc *tool.Context, args map[string]any) (any, error) {
		<-tc.Context().Done()
		return nil, tc.Context().Err()
	}))

	results := exec.ExecuteBatch(newRunContext(context.Background(), "hang.get"), idx, []core.ToolCall{
		{ID: "c-1", Name: "hang.get", Arguments: "{}"},
	})

	assert.Equal(t, core.ErrorKindTimeout, results[0].Err.Kind)
}

func TestTimeoutAppliesToContextIgnorantTools(t *testing.T) {
	exec := NewExecutor(func(o *Options) { o.ToolTimeout = 30 * time.Millisecond })
	idx := toolIndex(fnTool("stubborn.get", func(tc *tool.Context, args map[string]any) (any, error) {
		time.Sleep(500 * time.Millisecond)
		return "late", nil
	}))

	start := time.Now()
	results := exec.ExecuteBatch(newRunContext(context.Background(), "stubborn.get"), idx, []core.ToolCall{
		{ID: "c-1", Name: "stubborn.get", Arguments: "{}"},
	})

	assert.Less(t, time.Since(start), 300*time.Millisecond)
	assert.Equal(t, core.ErrorKindTimeout, results[0].Err.Kind)
}

func TestPanicIsRecovered(t *testing.T) {
	exec := NewExecutor()
	idx := toolIndex(fnTool("boom.get", func(tc *tool.Context, args map[string]any) (any, error) {
		panic("kaboom")
	}))

	results := exec.ExecuteBatch(newRunContext(context.Background(), "boom.get"), idx, []core.ToolCall{
		{ID: "c-1", Name: "boom.get", Arguments: "{}"},
	})

	assert.Equal(t, core.ErrorKindExecutionError, results[0].Err.Kind)
	assert.Contains(t, results[0].Err.Message, "kaboom")
}

func TestOneFailureDoesNotPoisonTheBatch(t *testing.T) {
	exec := NewExecutor()
	idx := toolIndex(
		fnTool("ok.get", func(tc *tool.Context, args map[string]any) (any, error) { return "fine", nil }),
		fnTool("bad.get", func(tc *tool.Context, args map[string]any) (any, error) {
			return nil, fmt.Errorf("backend unavailable")
		}),
	)

	results := exec.ExecuteBatch(newRunContext(context.Background(), "ok.get", "bad.get"), idx, []core.ToolCall{
		{ID: "c-1", Name: "bad.get", Arguments: "{}"},
		{ID: "c-2", Name: "ok.get", Arguments: "{}"},
	})

	assert.Equal(t, core.ErrorKindExecutionError, results[0].Err.Kind)
	assert.Nil(t, results[1].Err)
	assert.Equal(t, "fine", results[1].Payload)
}

func TestResultToToolResult(t *testing.T) {
	ok := Result{ToolCallID: "c-1", ToolID: "a.get", Payload: map[string]any{"x": 1}}
	res := ok.ToToolResult()
	assert.Equal(t, "c-1", res.ToolCallID)
	assert.Empty(t, res.Error)
	assert.NotNil(t, res.Payload)

	failed := Result{ToolCallID: "c-2", ToolID: "a.get", Err: &ToolError{Kind: core.ErrorKindTimeout, Message: "too slow"}}
	res = failed.ToToolResult()
	assert.Equal(t, "too slow", res.Error)
	assert.Nil(t, res.Payload)
}

func TestEmptyArgumentsAreAccepted(t *testing.T) {
	exec := NewExecutor()
	idx := toolIndex(fnTool("noargs.get", func(tc *tool.Context, args map[string]any) (any, error) {
		assert.NotNil(t, args)
		return "ok", nil
	}))

	results := exec.ExecuteBatch(newRunContext(context.Background(), "noargs.get"), idx, []core.ToolCall{
		{ID: "c-1", Name: "noargs.get", Arguments: ""},
	})
	assert.Nil(t, results[0].Err)
}
