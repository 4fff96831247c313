package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/service-bene-fit-co-nz/coachflow/core"
	"github.com/service-bene-fit-co-nz/coachflow/tool"
)

// DefaultToolTimeout bounds a single tool invocation unless overridden.
const DefaultToolTimeout = 15 * time.Second

// Options configures the executor.
type Options struct {
	// ToolTimeout bounds each individual tool call. Zero or negative means
	// DefaultToolTimeout.
	ToolTimeout time.Duration
	// MaxParallel caps concurrent calls within a batch. 0 or <1 means no
	// explicit limit (batch size).
	MaxParallel int
}

// Executor runs validated tool calls against resolved tool implementations.
type Executor struct {
	opts Options
}

// NewExecutor constructs an Executor.
func NewExecutor(optFns ...func(o *Options)) *Executor {
	opts := Options{
		ToolTimeout: DefaultToolTimeout,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.ToolTimeout <= 0 {
		opts.ToolTimeout = DefaultToolTimeout
	}
	return &Executor{opts: opts}
}

// ExecuteBatch runs all calls from one model turn. Calls execute concurrently
// up to MaxParallel; the returned slice always has one Result per call, in
// the order the calls were given. A call naming a tool outside the resolved
// set yields an execution error result instead of dispatching.
func (e *Executor) ExecuteBatch(
	runCtx *core.RunContext,
	tools map[string]tool.Tool,
	calls []core.ToolCall,
) []Result {
	n := len(calls)
	if n == 0 {
		return nil
	}

	// Fast path: single call, execute inline.
	if n == 1 {
		return []Result{e.executeOne(runCtx, tools, calls[0])}
	}

	maxPar := e.opts.MaxParallel
	if maxPar <= 0 || maxPar > n {
		maxPar = n
	}

	results := make([]Result, n)
	var wg sync.WaitGroup
	sem := make(chan struct{}, maxPar)

	batchStart := time.Now()
	for i := range calls {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, tc core.ToolCall) {
			defer wg.Done()
			defer func() { <-sem }()
			results[idx] = e.executeOne(runCtx, tools, tc)
		}(i, calls[i])
	}
	wg.Wait()

	runCtx.LogDebug(
		"tool.batch.complete",
		"run_id", runCtx.RunID,
		"count", n,
		"parallelism", maxPar,
		"duration_ms", time.Since(batchStart).Milliseconds(),
	)

	return results
}

// executeOne validates and runs a single call, capturing every fault in the
// returned Result.
func (e *Executor) executeOne(runCtx *core.RunContext, tools map[string]tool.Tool, tc core.ToolCall) Result {
	res := Result{ToolCallID: tc.ID, ToolID: tc.Name}

	impl, ok := tools[tc.Name]
	if !ok {
		res.Err = &ToolError{
			Kind:    core.ErrorKindExecutionError,
			Message: fmt.Sprintf("tool %q is not available in this run", tc.Name),
		}
		runCtx.LogWarn("tool.call.unknown", "run_id", runCtx.RunID, "tool", tc.Name, "tool_call_id", tc.ID)
		return res
	}

	// The resolved set is already the intersection with the caller's
	// authorization; re-check here so a mis-built index cannot widen it.
	// The message matches the unknown-tool case so the model cannot tell
	// a denied tool from an absent one.
	if !runCtx.Authorized(tc.Name) {
		res.Err = &ToolError{
			Kind:    core.ErrorKindExecutionError,
			Message: fmt.Sprintf("tool %q is not available in this run", tc.Name),
		}
		runCtx.LogWarn("tool.call.unauthorized", "run_id", runCtx.RunID, "tool", tc.Name, "tool_call_id", tc.ID)
		return res
	}

	args, err := decodeArgs(tc.Arguments)
	if err != nil {
		res.Err = &ToolError{
			Kind:    core.ErrorKindInvalidArguments,
			Message: fmt.Sprintf("arguments are not valid JSON: %v", err),
		}
		return res
	}

	if err := validateArgs(impl.InputSchema(), args); err != nil {
		res.Err = &ToolError{
			Kind:    core.ErrorKindInvalidArguments,
			Message: fmt.Sprintf("arguments rejected by schema: %v", err),
		}
		runCtx.LogWarn("tool.call.invalid_args", "run_id", runCtx.RunID, "tool", tc.Name, "error", err.Error())
		return res
	}

	callCtx, cancel := context.WithTimeout(runCtx.Context, e.opts.ToolTimeout)
	defer cancel()

	toolCtx := tool.NewContext(callCtx, runCtx, tc.ID)

	start := time.Now()
	payload, callErr := e.callWithRecovery(callCtx, impl, toolCtx, args)
	dur := time.Since(start)

	if callErr != nil {
		res.Err = classify(callCtx, callErr, e.opts.ToolTimeout)
		runCtx.LogToolCall(tc.Name, dur, false, callErr)
		return res
	}

	res.Payload = payload
	runCtx.LogToolCall(tc.Name, dur, true, nil)
	return res
}

// callWithRecovery invokes the tool in its own goroutine so a tool that
// ignores its context cannot stall the batch past the timeout. Panics are
// recovered and surfaced as errors.
func (e *Executor) callWithRecovery(
	ctx context.Context,
	impl tool.Tool,
	toolCtx *tool.Context,
	args map[string]any,
) (any, error) {
	type outcome struct {
		payload any
		err     error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("tool panicked: %v\n%s", r, debug.Stack())}
			}
		}()
		payload, err := impl.Call(toolCtx, args)
		done <- outcome{payload: payload, err: err}
	}()

	select {
	case <-ctx.Done():
		// The goroutine is abandoned; its buffered send cannot block.
		return nil, ctx.Err()
	case out := <-done:
		return out.payload, out.err
	}
}

// classify maps a call error to the fault taxonomy. Deadline expiry of the
// per-call context is a timeout; everything else is an execution error.
func classify(callCtx context.Context, err error, timeout time.Duration) *ToolError {
	if errors.Is(err, context.DeadlineExceeded) && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return &ToolError{
			Kind:    core.ErrorKindTimeout,
			Message: fmt.Sprintf("tool call exceeded %s timeout", timeout),
		}
	}
	if errors.Is(err, context.Canceled) {
		return &ToolError{
			Kind:    core.ErrorKindExecutionError,
			Message: "tool call cancelled",
		}
	}
	return &ToolError{
		Kind:    core.ErrorKindExecutionError,
		Message: err.Error(),
	}
}

func decodeArgs(raw string) (map[string]any, error) {
	if raw == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}
