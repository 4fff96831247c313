package tool

import (
	"github.com/service-bene-fit-co-nz/coachflow/internal/util"
)

// FunctionTool is a generic adapter that exposes a plain Go function as a
// coachflow tool.
//
// Responsibilities:
//   - Holds the JSON-schema parameter specification advertised to the model
//   - Invokes the wrapped function with a *Context giving access to caller
//     identity, client scope and the invocation deadline
//
// Argument validation happens in the executor before Call is reached, so a
// FunctionTool body can rely on the declared required fields being present.
//
// A FunctionTool has no internal mutable state after construction and is
// safe for concurrent use by multiple goroutines.
type FunctionTool struct {
	id          string
	description string
	schema      map[string]any
	fn          func(toolCtx *Context, args map[string]any) (any, error)
}

// NewFunctionTool constructs a FunctionTool from an explicit schema and function.
//
// Example:
//
//	noteTool := NewFunctionTool(
//	  "client.notes.add",
//	  "Add a coaching note to the selected client",
//	  map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	      "body": map[string]any{"type": "string"},
//	    },
//	    "required": []string{"body"},
//	  },
//	  func(tc *Context, args map[string]any) (any, error) {
//	    ...
//	  },
//	)
func NewFunctionTool(
	id, description string,
	schema map[string]any,
	fn func(toolCtx *Context, args map[string]any) (any, error),
) *FunctionTool {
	return &FunctionTool{
		id:          id,
		description: description,
		schema:      schema,
		fn:          fn,
	}
}

// NewFunctionToolFromStruct derives the parameter schema from a struct using
// reflection. It is a convenience for simple argument containers.
//
// Example:
//
//	type NoteArgs struct {
//	  Body string `json:"body" description:"Note text"`
//	}
//
//	noteTool := NewFunctionToolFromStruct("client.notes.add", "Add a note", NoteArgs{}, fn)
func NewFunctionToolFromStruct(
	id, description string,
	structType any,
	fn func(toolCtx *Context, args map[string]any) (any, error),
) *FunctionTool {
	return NewFunctionTool(id, description, util.CreateSchema(structType), fn)
}

// ID returns the namespaced tool identifier.
func (t *FunctionTool) ID() string { return t.id }

// Description returns the short natural language description exposed to models.
func (t *FunctionTool) Description() string { return t.description }

// InputSchema returns the JSON schema describing expected arguments.
func (t *FunctionTool) InputSchema() map[string]any { return t.schema }

// Call invokes the underlying function.
func (t *FunctionTool) Call(toolCtx *Context, args map[string]any) (any, error) {
	return t.fn(toolCtx, args)
}
