package state

import (
	"fmt"

	"github.com/hupe1980/agui/core"
)

// Reducer folds verified events into AgentState snapshots. Implementations
// receive events in verified order and must emit exactly one snapshot per
// event. A returned error is terminal for the run.
type Reducer interface {
	Reduce(ev core.Event) (core.AgentState, error)
}

// Factory builds a fresh Reducer bound to one invocation's input. The
// orchestrator calls it once per run.
type Factory func(input core.RunInput) Reducer

// callRef locates an open tool call inside the working message slice.
type callRef struct {
	msg  int
	call int
}

// DefaultReducer is the standard reduction: message lifecycle events build
// the conversation incrementally, tool-call events build call arguments,
// snapshot/delta events replace or patch the opaque state document.
type DefaultReducer struct {
	messages      []core.Message
	state         []byte
	openMessages  map[string]int
	openToolCalls map[string]callRef
}

var _ Reducer = (*DefaultReducer)(nil)

// NewDefaultReducer initializes the working copies from the run input. The
// input is cloned again here so the reducer never aliases caller data.
func NewDefaultReducer(input core.RunInput) *DefaultReducer {
	return &DefaultReducer{
		messages:      core.CloneMessages(input.Messages),
		state:         core.CloneRawJSON(input.State),
		openMessages:  make(map[string]int),
		openToolCalls: make(map[string]callRef),
	}
}

// NewDefault is a Factory for the default reducer.
func NewDefault(input core.RunInput) Reducer { return NewDefaultReducer(input) }

// Reduce applies one verified event and returns the resulting snapshot.
func (r *DefaultReducer) Reduce(ev core.Event) (core.AgentState, error) {
	switch e := ev.(type) {
	case *core.TextMessageStartEvent:
		r.messages = append(r.messages, core.Message{ID: e.MessageID, Role: e.Role})
		r.openMessages[e.MessageID] = len(r.messages) - 1

	case *core.TextMessageContentEvent:
		idx, ok := r.openMessages[e.MessageID]
		if !ok {
			return core.AgentState{}, fmt.Errorf("reducer has no open message %q", e.MessageID)
		}
		r.messages[idx].Content += e.Delta

	case *core.TextMessageEndEvent:
		delete(r.openMessages, e.MessageID)

	case *core.ToolCallStartEvent:
		r.startToolCall(e)

	case *core.ToolCallArgsEvent:
		ref, ok := r.openToolCalls[e.ToolCallID]
		if !ok {
			return core.AgentState{}, fmt.Errorf("reducer has no open tool call %q", e.ToolCallID)
		}
		r.messages[ref.msg].ToolCalls[ref.call].Function.Arguments += e.Delta

	case *core.ToolCallEndEvent:
		delete(r.openToolCalls, e.ToolCallID)

	case *core.StateSnapshotEvent:
		r.state = core.CloneRawJSON(e.Snapshot)

	case *core.StateDeltaEvent:
		patched, err := ApplyPatch(r.state, e.Delta)
		if err != nil {
			return core.AgentState{}, err
		}
		r.state = patched

	case *core.MessagesSnapshotEvent:
		r.messages = core.CloneMessages(e.Messages)
		r.openMessages = make(map[string]int)
		r.openToolCalls = make(map[string]callRef)

	case *core.RunStartedEvent, *core.RunFinishedEvent, *core.RunErrorEvent,
		*core.StepStartedEvent, *core.StepFinishedEvent,
		*core.RawEvent, *core.CustomEvent:
		// Lifecycle and passthrough events leave the working copies
		// untouched but still yield a snapshot.
	}

	return r.snapshot(), nil
}

// startToolCall attaches the call to its open parent message when one is
// named, otherwise appends a new assistant message to carry it.
func (r *DefaultReducer) startToolCall(e *core.ToolCallStartEvent) {
	call := core.ToolCall{
		ID:       e.ToolCallID,
		Type:     "function",
		Function: core.FunctionCall{Name: e.ToolCallName},
	}

	if e.ParentMessageID != "" {
		if idx, ok := r.openMessages[e.ParentMessageID]; ok {
			r.messages[idx].ToolCalls = append(r.messages[idx].ToolCalls, call)
			r.openToolCalls[e.ToolCallID] = callRef{msg: idx, call: len(r.messages[idx].ToolCalls) - 1}
			return
		}
	}

	id := e.ParentMessageID
	if id == "" {
		id = e.ToolCallID
	}

	r.messages = append(r.messages, core.Message{ID: id, Role: core.RoleAssistant, ToolCalls: []core.ToolCall{call}})
	r.openToolCalls[e.ToolCallID] = callRef{msg: len(r.messages) - 1, call: 0}
}

func (r *DefaultReducer) snapshot() core.AgentState {
	return core.AgentState{
		Messages: core.CloneMessages(r.messages),
		State:    core.CloneRawJSON(r.state),
	}
}
