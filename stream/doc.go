// Package stream defines the ordered outbound event sequence describing
// orchestration progress, and the Emitter that relays it to a consumer.
//
// Events form a closed tagged union: TextDelta, ToolCallStarted,
// ToolCallFinished, RunCompleted and RunFailed. Each run produces events in
// strict chronological order terminated by exactly one RunCompleted or
// RunFailed. The Emitter applies backpressure: the producing orchestrator
// suspends until the previous event has been accepted downstream.
package stream
