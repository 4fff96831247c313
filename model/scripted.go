package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/service-bene-fit-co-nz/coachflow/core"
)

// Turn is one scripted model reply. A turn either carries plain text or a
// set of tool calls the model pretends to request.
type Turn struct {
	Text      string
	ToolCalls []core.ToolCall
	Err       error
}

// ScriptedModel replays a fixed sequence of turns. It is the deterministic
// stand-in used by tests and examples; each Generate call consumes the next
// turn in order and keeps returning the last turn once the script runs out.
type ScriptedModel struct {
	mu    sync.Mutex
	name  string
	turns []Turn
	next  int
	calls int
}

// NewScriptedModel creates a ScriptedModel replaying the given turns.
func NewScriptedModel(name string, turns ...Turn) *ScriptedModel {
	return &ScriptedModel{name: name, turns: turns}
}

// TextTurn is a convenience constructor for a plain text reply.
func TextTurn(text string) Turn { return Turn{Text: text} }

// ToolTurn is a convenience constructor for a reply requesting tool calls.
func ToolTurn(calls ...core.ToolCall) Turn { return Turn{ToolCalls: calls} }

// ErrTurn is a convenience constructor for a failing turn.
func ErrTurn(err error) Turn { return Turn{Err: err} }

// Calls reports how many times Generate has been invoked.
func (m *ScriptedModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Generate implements Model; when req.Stream is set, text turns are emitted
// as per-rune partial deltas before the final message.
func (m *ScriptedModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	m.mu.Lock()
	m.calls++
	if len(m.turns) == 0 {
		m.mu.Unlock()
		go func() {
			defer close(respCh)
			defer close(errCh)
			errCh <- fmt.Errorf("scripted model %q has no turns", m.name)
		}()
		return respCh, errCh
	}
	turn := m.turns[m.next]
	if m.next < len(m.turns)-1 {
		m.next++
	}
	m.mu.Unlock()

	go func() {
		defer close(respCh)
		defer close(errCh)

		if turn.Err != nil {
			errCh <- turn.Err
			return
		}

		if len(turn.ToolCalls) > 0 {
			parts := make([]core.Part, 0, len(turn.ToolCalls))
			for _, tc := range turn.ToolCalls {
				parts = append(parts, core.ToolCallPart{Call: tc})
			}
			respCh <- Response{
				Partial:      false,
				Message:      core.Message{Role: core.RoleAssistant, Parts: parts},
				FinishReason: "tool_calls",
			}
			return
		}

		if req.Stream {
			for _, r := range turn.Text {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{
					Partial: true,
					Message: core.NewAssistantMessage(string(r)),
				}:
				}
			}
		}
		respCh <- Response{
			Partial:      false,
			Message:      core.NewAssistantMessage(turn.Text),
			FinishReason: "stop",
		}
	}()

	return respCh, errCh
}

// Info implements Model.
func (m *ScriptedModel) Info() Info {
	return Info{Name: m.name, Provider: "scripted", SupportsTools: true}
}
