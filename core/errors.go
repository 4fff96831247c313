package core

// ErrorKind classifies faults across the orchestration pipeline. Tool-level
// kinds (InvalidArguments, Timeout, ExecutionError) are recoverable: they are
// absorbed into the transcript as failure results the model can react to.
// Run-level kinds (RoundLimitExceeded, ModelCallError, Cancelled) terminate
// the run.
type ErrorKind string

const (
	// ErrorKindInvalidArguments marks tool arguments that failed schema validation.
	ErrorKindInvalidArguments ErrorKind = "invalid_arguments"
	// ErrorKindTimeout marks a tool execution that exceeded its bound.
	ErrorKindTimeout ErrorKind = "timeout"
	// ErrorKindExecutionError marks a fault raised by a tool handler, including
	// a model request for a tool absent from the resolved set.
	ErrorKindExecutionError ErrorKind = "execution_error"
	// ErrorKindRoundLimitExceeded marks a run that hit its model-call bound.
	ErrorKindRoundLimitExceeded ErrorKind = "round_limit_exceeded"
	// ErrorKindModelCallError marks an underlying model call failure.
	ErrorKindModelCallError ErrorKind = "model_call_error"
	// ErrorKindCancelled marks a run withdrawn by the caller.
	ErrorKindCancelled ErrorKind = "cancelled"
)
