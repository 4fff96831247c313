package stream

import (
	"context"
	"sync"
)

// Emitter serializes the event sequence produced by an orchestration run
// into a channel consumed by the caller-facing transport. Emission order is
// exactly production order. Emit blocks until the consumer accepts the
// event, which is what keeps the orchestrator from racing ahead of a slow
// consumer.
type Emitter struct {
	ctx       context.Context
	ch        chan Event
	closeOnce sync.Once
}

// NewEmitter creates an emitter bound to the run's context. A buffer of 0
// gives strict lockstep with the consumer; a small buffer trades a little
// lag tolerance for fewer suspensions.
func NewEmitter(ctx context.Context, buffer int) *Emitter {
	return &Emitter{ctx: ctx, ch: make(chan Event, buffer)}
}

// Events returns the consumer side of the event sequence. The channel is
// closed after the terminal event of the run.
func (e *Emitter) Events() <-chan Event { return e.ch }

// Emit delivers one event downstream, suspending until it is accepted.
// It returns the context error if the run is cancelled while waiting, in
// which case the event is dropped.
func (e *Emitter) Emit(ev Event) error {
	select {
	case <-e.ctx.Done():
		return e.ctx.Err()
	case e.ch <- ev:
		return nil
	}
}

// TryEmit delivers an event only if the consumer (or buffer) can accept it
// immediately. Used for the terminal event on a cancelled run, where
// blocking would leak the producing goroutine.
func (e *Emitter) TryEmit(ev Event) bool {
	select {
	case e.ch <- ev:
		return true
	default:
		return false
	}
}

// Close ends the event sequence. Safe to call more than once.
func (e *Emitter) Close() {
	e.closeOnce.Do(func() { close(e.ch) })
}
