// Package coachflow provides a high-level façade over the conversation
// orchestrator and its services (tool registry, model resolver, role
// policy & logging). Most applications interact with this package by:
//  1. Creating a CoachFlow via New() (registering tools and models)
//  2. Starting conversations asynchronously (RunConversation) or
//     synchronously (RunConversationSync)
//  3. Consuming the resulting event stream
//
// The façade delegates the run loop to orchestrator.Orchestrator while
// keeping setup and usage ergonomics concise. All defaults are safe for
// local development and testing; production deployments typically supply
// configured model adapters and a structured logger.
package coachflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/service-bene-fit-co-nz/coachflow/auth"
	"github.com/service-bene-fit-co-nz/coachflow/core"
	"github.com/service-bene-fit-co-nz/coachflow/internal/util"
	"github.com/service-bene-fit-co-nz/coachflow/logging"
	"github.com/service-bene-fit-co-nz/coachflow/model"
	"github.com/service-bene-fit-co-nz/coachflow/orchestrator"
	"github.com/service-bene-fit-co-nz/coachflow/stream"
	"github.com/service-bene-fit-co-nz/coachflow/tool"
)

// DefaultSystemPrompt frames the assistant for the coaching domain. The
// {{.ClientID}} scope value is rendered in when a client is selected.
const DefaultSystemPrompt = `You are a fitness coaching assistant. ` +
	`Use the available tools to look up real data instead of guessing. ` +
	`{{if .ClientID}}The currently selected client is {{.ClientID}}.{{end}}`

// Options configures the CoachFlow instance.
type Options struct {
	// Registry holds the available tools. A fresh empty registry is used
	// when nil.
	Registry *tool.Registry

	// Models resolves model identifiers to configured adapters. A fresh
	// empty resolver is used when nil.
	Models *model.Resolver

	// Policy decides the caller's authorized tool set. Defaults to the
	// built-in role policy.
	Policy *auth.Policy

	// MaxRounds caps model calls per run (0 means the orchestrator default).
	MaxRounds int

	// ToolTimeout bounds each tool call (0 means the executor default).
	ToolTimeout time.Duration

	// RunTimeout bounds the whole run. 0 disables the run deadline.
	RunTimeout time.Duration

	// SystemPrompt overrides DefaultSystemPrompt.
	SystemPrompt string

	// EnableStreaming requests partial text deltas from models that
	// support them.
	EnableStreaming bool

	// MaxParallelTools caps concurrent tool calls within one batch.
	MaxParallelTools int

	// EventBufferSize sets channel buffering for the event stream. Larger
	// buffers reduce producer suspensions but increase peak lag.
	EventBufferSize int

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// RunRequest describes one conversation run.
type RunRequest struct {
	// Messages seed the transcript; the last message is normally the
	// user's new input.
	Messages []core.Message
	// Model names the configured model adapter to drive the run.
	Model string
	// RequestedTools narrows the tool surface for this run. The effective
	// set is the intersection with the caller's authorized tools.
	RequestedTools []string
	// Caller identifies the user and their roles.
	Caller core.Identity
	// ClientID selects the client scope for client.* tools. Optional.
	ClientID string
}

// CoachFlow is the high-level façade aggregating the orchestrator and its
// services. Public methods are safe for concurrent use.
type CoachFlow struct {
	opts     Options
	registry *tool.Registry
	models   *model.Resolver
	policy   *auth.Policy
	orch     *orchestrator.Orchestrator
	logger   logging.Logger

	activeRuns map[string]context.CancelFunc
	mu         sync.Mutex
}

// New creates a new CoachFlow instance with optional overrides.
func New(optFns ...func(o *Options)) *CoachFlow {
	opts := Options{
		SystemPrompt:    DefaultSystemPrompt,
		EventBufferSize: 100,
		Logger:          logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Registry == nil {
		opts.Registry = tool.NewRegistry()
	}
	if opts.Models == nil {
		opts.Models = model.NewResolver()
	}
	if opts.Policy == nil {
		opts.Policy = auth.DefaultPolicy()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	orch := orchestrator.New(opts.Registry, opts.Models, func(o *orchestrator.Options) {
		o.MaxRounds = opts.MaxRounds
		o.ToolTimeout = opts.ToolTimeout
		o.SystemPrompt = opts.SystemPrompt
		o.EnableStreaming = opts.EnableStreaming
		o.MaxParallelTools = opts.MaxParallelTools
	})

	return &CoachFlow{
		opts:       opts,
		registry:   opts.Registry,
		models:     opts.Models,
		policy:     opts.Policy,
		orch:       orch,
		logger:     opts.Logger,
		activeRuns: make(map[string]context.CancelFunc),
	}
}

// Registry returns the tool registry for registration at setup time.
func (cf *CoachFlow) Registry() *tool.Registry { return cf.registry }

// Models returns the model resolver for registration at setup time.
func (cf *CoachFlow) Models() *model.Resolver { return cf.models }

// RunConversation starts an asynchronous run and returns its ID plus the
// event stream. The stream always ends with a terminal event (RunCompleted
// or RunFailed) and is then closed.
func (cf *CoachFlow) RunConversation(ctx context.Context, req RunRequest) (string, <-chan stream.Event, error) {
	if req.Model == "" {
		return "", nil, fmt.Errorf("no model specified")
	}
	if len(req.Messages) == 0 {
		return "", nil, fmt.Errorf("no messages provided")
	}

	runID := util.NewID()

	var cancel context.CancelFunc
	if cf.opts.RunTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, cf.opts.RunTimeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	cf.mu.Lock()
	cf.activeRuns[runID] = cancel
	cf.mu.Unlock()

	authorized := cf.policy.AuthorizedToolIDs(req.Caller, cf.registry.IDs())

	runCtx := core.NewRunContext(
		ctx,
		runID,
		req.Caller,
		req.ClientID,
		req.Model,
		authorized,
		cf.orch.MaxRounds(),
		cf.logger,
	)

	conv := core.NewConversation(req.Messages)
	emitter := stream.NewEmitter(ctx, cf.opts.EventBufferSize)

	go func() {
		defer func() {
			emitter.Close()
			cancel()
			cf.mu.Lock()
			delete(cf.activeRuns, runID)
			cf.mu.Unlock()
		}()

		// Terminal events carry the failure detail; the error return is
		// only meaningful to synchronous callers.
		_ = cf.orch.Run(runCtx, conv, req.RequestedTools, emitter)
	}()

	return runID, emitter.Events(), nil
}

// RunConversationSync is a synchronous helper that drains the event stream,
// accumulates events and returns them with the run ID. The returned error
// reflects a RunFailed terminal event.
func (cf *CoachFlow) RunConversationSync(ctx context.Context, req RunRequest) (string, []stream.Event, error) {
	runID, events, err := cf.RunConversation(ctx, req)
	if err != nil {
		return "", nil, err
	}

	var collected []stream.Event
	for ev := range events {
		collected = append(collected, ev)
	}

	if len(collected) > 0 {
		if failed, ok := collected[len(collected)-1].(stream.RunFailed); ok {
			return runID, collected, fmt.Errorf("run failed (%s): %s", failed.Kind, failed.Message)
		}
	}

	if err := ctx.Err(); err != nil {
		return runID, collected, err
	}

	return runID, collected, nil
}

// Cancel cancels a running conversation by ID.
func (cf *CoachFlow) Cancel(runID string) error {
	cf.mu.Lock()
	cancel, exists := cf.activeRuns[runID]
	cf.mu.Unlock()

	if !exists {
		return fmt.Errorf("run %s not found", runID)
	}

	cancel()

	return nil
}
