package core

// Role identifies the conversational author of a message.
type Role string

const (
	// RoleUser marks caller-authored messages.
	RoleUser Role = "user"
	// RoleAssistant marks agent-authored messages.
	RoleAssistant Role = "assistant"
	// RoleSystem marks system instructions.
	RoleSystem Role = "system"
	// RoleTool marks tool result messages.
	RoleTool Role = "tool"
	// RoleDeveloper marks developer-supplied instructions.
	RoleDeveloper Role = "developer"
)

// Message is one entry of the conversation, built incrementally from
// streaming events. IDs are unique within a run.
type Message struct {
	ID         string     `json:"id"`
	Role       Role       `json:"role"`
	Content    string     `json:"content,omitempty"`
	Name       string     `json:"name,omitempty"`
	ToolCalls  []ToolCall `json:"toolCalls,omitempty"`
	ToolCallID string     `json:"toolCallId,omitempty"`
}

// ToolCall is a function invocation requested by the agent, attached to an
// assistant message.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall names the invoked function and carries its serialized
// argument payload (built incrementally from argument deltas).
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Clone returns a deep copy of the message.
func (m Message) Clone() Message {
	out := m
	if m.ToolCalls != nil {
		out.ToolCalls = make([]ToolCall, len(m.ToolCalls))
		copy(out.ToolCalls, m.ToolCalls)
	}

	return out
}

// CloneMessages returns a deep copy of a message slice. A nil input stays
// nil so absence survives round trips.
func CloneMessages(in []Message) []Message {
	if in == nil {
		return nil
	}

	out := make([]Message, len(in))
	for i, m := range in {
		out[i] = m.Clone()
	}

	return out
}
