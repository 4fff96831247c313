// Package executor validates and runs batches of tool calls requested by a
// model turn. Calls within a batch run concurrently up to a configurable
// limit; results are always returned in the order the model requested the
// calls. Every fault that belongs to a single call (bad arguments, timeout,
// panic, tool error) is captured in that call's result rather than failing
// the batch, so the orchestrator can feed failures back to the model.
package executor
