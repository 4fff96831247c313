// Package orchestrator drives tool-augmented conversation runs: repeated
// model calls interleaved with tool execution until the model produces a
// terminal text answer, the round limit trips, or a run-level fault ends
// the run.
package orchestrator

import (
	"fmt"
	"time"

	"github.com/service-bene-fit-co-nz/coachflow/core"
	"github.com/service-bene-fit-co-nz/coachflow/executor"
	"github.com/service-bene-fit-co-nz/coachflow/internal/util"
	"github.com/service-bene-fit-co-nz/coachflow/model"
	"github.com/service-bene-fit-co-nz/coachflow/stream"
	"github.com/service-bene-fit-co-nz/coachflow/tool"
)

// DefaultMaxRounds is the model-call budget per run.
const DefaultMaxRounds = 8

// Options configures an Orchestrator.
type Options struct {
	// MaxRounds caps model calls per run. Zero means DefaultMaxRounds.
	MaxRounds int
	// ToolTimeout bounds each tool call; zero means the executor default.
	ToolTimeout time.Duration
	// SystemPrompt is rendered with the run's scope values and sent as
	// instructions on every model call.
	SystemPrompt string
	// EnableStreaming requests partial text deltas from the model.
	EnableStreaming bool
	// MaxParallelTools caps concurrent tool calls within one batch.
	MaxParallelTools int
}

// Orchestrator coordinates one run at a time per Run invocation. The struct
// itself is stateless across runs and safe for concurrent use.
type Orchestrator struct {
	registry *tool.Registry
	models   *model.Resolver
	exec     *executor.Executor
	opts     Options
}

// New constructs an Orchestrator over a tool registry and model resolver.
func New(registry *tool.Registry, models *model.Resolver, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		MaxRounds: DefaultMaxRounds,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = DefaultMaxRounds
	}

	exec := executor.NewExecutor(func(o *executor.Options) {
		o.ToolTimeout = opts.ToolTimeout
		o.MaxParallel = opts.MaxParallelTools
	})

	return &Orchestrator{
		registry: registry,
		models:   models,
		exec:     exec,
		opts:     opts,
	}
}

// MaxRounds returns the configured model-call budget.
func (o *Orchestrator) MaxRounds() int { return o.opts.MaxRounds }

// Run drives one conversation to completion, emitting stream events as it
// goes. The terminal event (RunCompleted or RunFailed) is always emitted
// before return unless the consumer is gone. The returned error is non-nil
// exactly when the run failed.
func (o *Orchestrator) Run(
	runCtx *core.RunContext,
	conv *core.Conversation,
	requestedTools []string,
	emitter *stream.Emitter,
) error {
	mdl, err := o.models.Resolve(runCtx.ModelID)
	if err != nil {
		return o.fail(runCtx, emitter, core.ErrorKindModelCallError, err.Error())
	}

	resolved := o.registry.Resolve(requestedTools, runCtx.AuthorizedTools)
	toolIndex := make(map[string]tool.Tool, len(resolved))
	defs := make([]model.ToolDefinition, 0, len(resolved))
	for _, t := range resolved {
		toolIndex[t.ID()] = t
		defs = append(defs, model.ToolDefinition{
			Name:        t.ID(),
			Description: t.Description(),
			Parameters:  t.InputSchema(),
		})
	}

	instructions, err := util.RenderTemplate(o.opts.SystemPrompt, runCtx.ScopeValues())
	if err != nil {
		runCtx.LogWarn("prompt.render.error", "run_id", runCtx.RunID, "error", err.Error())
		instructions = o.opts.SystemPrompt
	}

	runCtx.LogInfo(
		"run.start",
		"run_id", runCtx.RunID,
		"model", runCtx.ModelID,
		"tools", len(defs),
		"max_rounds", o.opts.MaxRounds,
	)

	for {
		if err := runCtx.Rounds.Begin(); err != nil {
			return o.fail(runCtx, emitter, core.ErrorKindRoundLimitExceeded, err.Error())
		}
		if runCtx.Err() != nil {
			return o.cancelled(runCtx, emitter)
		}

		final, err := o.modelTurn(runCtx, mdl, instructions, conv, defs, emitter)
		if err != nil {
			if runCtx.Err() != nil {
				return o.cancelled(runCtx, emitter)
			}
			return o.fail(runCtx, emitter, core.ErrorKindModelCallError, err.Error())
		}

		calls := final.message.ToolCalls()
		if len(calls) == 0 {
			// Terminal answer. When the turn produced no partial deltas the
			// full text still has to reach the consumer exactly once.
			if !final.streamed {
				if text := final.message.Text(); text != "" {
					if err := emitter.Emit(stream.TextDelta{Text: text}); err != nil {
						return o.cancelled(runCtx, emitter)
					}
				}
			}
			if err := conv.Append(final.message); err != nil {
				return o.fail(runCtx, emitter, core.ErrorKindExecutionError, err.Error())
			}
			rounds := runCtx.Rounds.Count()
			runCtx.LogInfo("run.completed", "run_id", runCtx.RunID, "rounds", rounds)
			if err := emitter.Emit(stream.RunCompleted{Rounds: rounds}); err != nil {
				return o.cancelled(runCtx, emitter)
			}
			return nil
		}

		if err := conv.Append(final.message); err != nil {
			return o.fail(runCtx, emitter, core.ErrorKindExecutionError, err.Error())
		}

		if err := o.toolPhase(runCtx, conv, toolIndex, calls, emitter); err != nil {
			return err
		}
	}
}

// turnResult is the terminal chunk of one model call plus whether partial
// deltas were already streamed for it.
type turnResult struct {
	message  core.Message
	streamed bool
}

// modelTurn performs one model call, forwarding partial text deltas and
// returning the final assistant message.
func (o *Orchestrator) modelTurn(
	runCtx *core.RunContext,
	mdl model.Model,
	instructions string,
	conv *core.Conversation,
	defs []model.ToolDefinition,
	emitter *stream.Emitter,
) (turnResult, error) {
	req := model.Request{
		Instructions: instructions,
		Messages:     conv.Messages(),
		Tools:        defs,
		Stream:       o.opts.EnableStreaming,
	}

	start := time.Now()
	respCh, errCh := mdl.Generate(runCtx.Context, req)

	var result turnResult
	var sawFinal bool

	for {
		select {
		case <-runCtx.Done():
			return result, runCtx.Err()
		case err, ok := <-errCh:
			if ok && err != nil {
				runCtx.LogModelCall(runCtx.ModelID, runCtx.Rounds.Count(), time.Since(start), err)
				return result, err
			}
			errCh = nil
		case resp, ok := <-respCh:
			if !ok {
				if !sawFinal {
					// The adapter may have parked its error and closed both
					// channels before this select ran. Adapters close errCh
					// before respCh, so this receive cannot block.
					if errCh != nil {
						if err, errOk := <-errCh; errOk && err != nil {
							runCtx.LogModelCall(runCtx.ModelID, runCtx.Rounds.Count(), time.Since(start), err)
							return result, err
						}
					}
					return result, fmt.Errorf("model %q closed the turn without a final response", runCtx.ModelID)
				}
				runCtx.LogModelCall(runCtx.ModelID, runCtx.Rounds.Count(), time.Since(start), nil)
				return result, nil
			}
			if resp.Partial {
				if text := resp.Message.Text(); text != "" {
					result.streamed = true
					if err := emitter.Emit(stream.TextDelta{Text: text}); err != nil {
						return result, err
					}
				}
				continue
			}
			result.message = resp.Message
			sawFinal = true
		}
	}
}

// toolPhase announces, executes and records one batch of tool calls. Start
// events go out in request order before execution; finish events and
// transcript appends follow in the same order once the whole batch is done.
func (o *Orchestrator) toolPhase(
	runCtx *core.RunContext,
	conv *core.Conversation,
	toolIndex map[string]tool.Tool,
	calls []core.ToolCall,
	emitter *stream.Emitter,
) error {
	for _, tc := range calls {
		ev := stream.ToolCallStarted{
			ToolCallID: tc.ID,
			ToolID:     tc.Name,
			Arguments:  tc.Arguments,
		}
		if err := emitter.Emit(ev); err != nil {
			return o.cancelled(runCtx, emitter)
		}
	}

	results := o.exec.ExecuteBatch(runCtx, toolIndex, calls)

	if runCtx.Err() != nil {
		return o.cancelled(runCtx, emitter)
	}

	for _, res := range results {
		ev := stream.ToolCallFinished{
			ToolCallID: res.ToolCallID,
			ToolID:     res.ToolID,
		}
		if res.Err != nil {
			ev.ErrorKind = res.Err.Kind
			ev.ErrorMessage = res.Err.Message
		} else {
			ev.Payload = res.Payload
		}
		if err := emitter.Emit(ev); err != nil {
			return o.cancelled(runCtx, emitter)
		}
		if err := conv.Append(core.NewToolResultMessage(res.ToToolResult())); err != nil {
			return o.fail(runCtx, emitter, core.ErrorKindExecutionError, err.Error())
		}
	}

	return nil
}

// fail emits the RunFailed terminal event and returns the matching error.
func (o *Orchestrator) fail(
	runCtx *core.RunContext,
	emitter *stream.Emitter,
	kind core.ErrorKind,
	message string,
) error {
	runCtx.LogError("run.failed", "run_id", runCtx.RunID, "kind", string(kind), "error", message)
	// Emit blocks while the consumer is live; on a dead consumer the context
	// is gone too, so fall back to a non-blocking attempt.
	if err := emitter.Emit(stream.RunFailed{Kind: kind, Message: message}); err != nil {
		emitter.TryEmit(stream.RunFailed{Kind: kind, Message: message})
	}
	return fmt.Errorf("%s: %s", kind, message)
}

// cancelled emits the terminal event for an externally cancelled run. The
// consumer may already be gone, so delivery is best-effort.
func (o *Orchestrator) cancelled(runCtx *core.RunContext, emitter *stream.Emitter) error {
	msg := "run cancelled"
	if err := runCtx.Err(); err != nil {
		msg = err.Error()
	}
	runCtx.LogWarn("run.cancelled", "run_id", runCtx.RunID, "error", msg)
	emitter.TryEmit(stream.RunFailed{Kind: core.ErrorKindCancelled, Message: msg})
	return fmt.Errorf("%s: %s", core.ErrorKindCancelled, msg)
}
