package core

import "fmt"

// Conversation is the append-only message log for one orchestration run.
// It tracks which tool-call IDs have been issued by assistant messages so
// that tool results can be checked for referential integrity before they
// are fed back to the model.
//
// A Conversation is owned exclusively by the single orchestrator task
// driving its run; it is never shared across runs or goroutines, so no
// locking is required.
type Conversation struct {
	messages []Message
	issued   map[string]string // tool-call ID -> tool name
	resolved map[string]bool   // tool-call IDs answered by a tool result
}

// NewConversation seeds a conversation from the caller-supplied message list.
// The seed is copied; later mutations of the input slice have no effect.
func NewConversation(seed []Message) *Conversation {
	c := &Conversation{
		messages: make([]Message, len(seed)),
		issued:   map[string]string{},
		resolved: map[string]bool{},
	}
	copy(c.messages, seed)
	return c
}

// Append adds a message to the transcript. Assistant messages record the
// tool-call IDs they issue; tool messages must reference an issued and not
// yet resolved ID from this run.
func (c *Conversation) Append(m Message) error {
	switch m.Role {
	case RoleAssistant:
		for _, call := range m.ToolCalls() {
			if call.ID == "" {
				return fmt.Errorf("assistant tool call for %q has no id", call.Name)
			}
			c.issued[call.ID] = call.Name
		}
	case RoleTool:
		for _, res := range m.ToolResults() {
			if _, ok := c.issued[res.ToolCallID]; !ok {
				return fmt.Errorf("tool result references unknown call id %q", res.ToolCallID)
			}
			if c.resolved[res.ToolCallID] {
				return fmt.Errorf("tool result duplicates call id %q", res.ToolCallID)
			}
			c.resolved[res.ToolCallID] = true
		}
	}

	c.messages = append(c.messages, m)
	return nil
}

// Messages returns a defensive copy of the transcript in append order. The
// model is always re-invoked with the full growing transcript, never a
// summarized or reordered one.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages in the transcript.
func (c *Conversation) Len() int { return len(c.messages) }

// Issued reports whether a tool-call ID was issued by an assistant message
// in this run.
func (c *Conversation) Issued(toolCallID string) bool {
	_, ok := c.issued[toolCallID]
	return ok
}

// PendingCalls returns the issued tool-call IDs that have no tool result yet.
func (c *Conversation) PendingCalls() []string {
	var pending []string
	for id := range c.issued {
		if !c.resolved[id] {
			pending = append(pending, id)
		}
	}
	return pending
}
