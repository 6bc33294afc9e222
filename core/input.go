package core

import (
	"encoding/json"
)

// RunInput is the immutable per-invocation snapshot serialized as the
// request body of a run. It is deep-copied at creation so later mutation of
// the owning agent's fields cannot alias into an in-flight run.
type RunInput struct {
	ThreadID       string          `json:"threadId"`
	RunID          string          `json:"runId"`
	State          json.RawMessage `json:"state,omitempty"`
	Messages       []Message       `json:"messages"`
	Tools          []Tool          `json:"tools"`
	Context        []ContextItem   `json:"context"`
	ForwardedProps json.RawMessage `json:"forwardedProps,omitempty"`
}

// Tool describes a frontend-provided capability the agent may call.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// ContextItem is one piece of ambient context forwarded to the agent.
type ContextItem struct {
	Description string `json:"description,omitempty"`
	Value       string `json:"value"`
}

// Clone returns a deep copy of the input safe for independent mutation.
func (in RunInput) Clone() RunInput {
	out := in
	out.State = CloneRawJSON(in.State)
	out.Messages = CloneMessages(in.Messages)
	out.ForwardedProps = CloneRawJSON(in.ForwardedProps)

	if in.Tools != nil {
		out.Tools = make([]Tool, len(in.Tools))
		for i, t := range in.Tools {
			out.Tools[i] = t
			out.Tools[i].Parameters = CloneRawJSON(t.Parameters)
		}
	}

	if in.Context != nil {
		out.Context = make([]ContextItem, len(in.Context))
		copy(out.Context, in.Context)
	}

	return out
}

// CloneRawJSON returns an independent copy of a raw JSON document. A nil
// input stays nil.
func CloneRawJSON(in json.RawMessage) json.RawMessage {
	if in == nil {
		return nil
	}

	return append(json.RawMessage(nil), in...)
}
