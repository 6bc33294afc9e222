package core

import (
	"encoding/json"
)

// AgentState is the caller-visible projection of a run: the materialized
// conversation plus the opaque application state, one snapshot per verified
// event. Snapshots are deep copies; callers may retain or mutate them freely.
type AgentState struct {
	Messages []Message       `json:"messages,omitempty"`
	State    json.RawMessage `json:"state,omitempty"`
}

// Clone returns a deep copy of the snapshot.
func (s AgentState) Clone() AgentState {
	return AgentState{
		Messages: CloneMessages(s.Messages),
		State:    CloneRawJSON(s.State),
	}
}
