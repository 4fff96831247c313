// Package tool implements the capability catalog that lets a conversation
// orchestrator invoke structured external operations (record lookups,
// computations, side effects) with schema described arguments and consistent
// error handling.
package tool

import "fmt"

// Tool defines the interface for a capability the model may request
// execution of.
//
// Tool identifiers are namespaced dot-segmented strings, e.g.
// "client.notes.get" or "utility.currentDateTime.get". The segment structure
// communicates scope to the authorization layer; everywhere else the
// identifier is opaque.
//
// Implementations should:
//   - Provide clear, descriptive identifiers and descriptions
//   - Define a JSON schema for their input
//   - Be safe for concurrent use: the same Tool value serves every run
type Tool interface {
	// ID returns the unique namespaced identifier for this tool.
	ID() string

	// Description returns a human-readable description of what this tool does.
	// It is provided to the model to help it decide when to use the tool.
	Description() string

	// InputSchema returns a JSON schema describing the expected argument
	// format. The executor validates arguments against it before dispatch.
	InputSchema() map[string]any

	// Call executes the tool with schema-validated arguments and the scoped
	// invocation context.
	Call(toolCtx *Context, args map[string]any) (any, error)
}

// Error represents a fault raised by a tool handler, carrying a code for
// categorization. Handlers may return *Error directly to control the code;
// any other error is wrapped by the executor.
type Error struct {
	Tool    string `json:"tool"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewError creates a new tool Error with the specified details.
func NewError(tool, message, code string) *Error {
	return &Error{Tool: tool, Message: message, Code: code}
}
