package core

import (
	"encoding/json"
)

// EventType discriminates the closed event union. The values are the wire
// names used in the JSON "type" field of each streamed record.
type EventType string

const (
	// EventTypeRunStarted marks the beginning of a run. It must be the
	// first event of every stream.
	EventTypeRunStarted EventType = "RUN_STARTED"
	// EventTypeRunFinished marks successful completion of a run.
	EventTypeRunFinished EventType = "RUN_FINISHED"
	// EventTypeRunError marks failed termination of a run.
	EventTypeRunError EventType = "RUN_ERROR"

	// EventTypeStepStarted marks the beginning of a named step inside a run.
	EventTypeStepStarted EventType = "STEP_STARTED"
	// EventTypeStepFinished marks completion of a previously started step.
	EventTypeStepFinished EventType = "STEP_FINISHED"

	// EventTypeTextMessageStart opens a streaming text message.
	EventTypeTextMessageStart EventType = "TEXT_MESSAGE_START"
	// EventTypeTextMessageContent appends a content delta to an open message.
	EventTypeTextMessageContent EventType = "TEXT_MESSAGE_CONTENT"
	// EventTypeTextMessageEnd closes an open text message.
	EventTypeTextMessageEnd EventType = "TEXT_MESSAGE_END"

	// EventTypeToolCallStart opens a streaming tool call.
	EventTypeToolCallStart EventType = "TOOL_CALL_START"
	// EventTypeToolCallArgs appends an argument delta to an open tool call.
	EventTypeToolCallArgs EventType = "TOOL_CALL_ARGS"
	// EventTypeToolCallEnd closes an open tool call.
	EventTypeToolCallEnd EventType = "TOOL_CALL_END"

	// EventTypeStateSnapshot replaces the run state wholesale.
	EventTypeStateSnapshot EventType = "STATE_SNAPSHOT"
	// EventTypeStateDelta patches the run state with RFC 6902 operations.
	EventTypeStateDelta EventType = "STATE_DELTA"
	// EventTypeMessagesSnapshot replaces the message history wholesale.
	EventTypeMessagesSnapshot EventType = "MESSAGES_SNAPSHOT"

	// EventTypeRaw passes an unprocessed upstream event through the stream.
	EventTypeRaw EventType = "RAW"
	// EventTypeCustom carries an application-defined extension event.
	EventTypeCustom EventType = "CUSTOM"
)

// Event is one typed record in a run's event stream. Concrete event types
// implement the unexported isEvent marker enabling a closed set; every kind
// maps to exactly one verifier transition and one reducer update.
type Event interface {
	// Type returns the discriminator of the concrete event.
	Type() EventType

	isEvent()
}

// BaseEvent carries the discriminator and optional metadata common to all
// events. Concrete event types embed it.
type BaseEvent struct {
	EventType EventType `json:"type"`
	Timestamp *int64    `json:"timestamp,omitempty"`
}

// Type returns the event discriminator.
func (e *BaseEvent) Type() EventType { return e.EventType }

func (e *BaseEvent) isEvent() {}

// RunStartedEvent signals that agent execution has begun.
type RunStartedEvent struct {
	BaseEvent
	ThreadID string `json:"threadId"`
	RunID    string `json:"runId"`
}

// RunFinishedEvent signals successful completion. Result optionally carries
// a final output value produced by the agent.
type RunFinishedEvent struct {
	BaseEvent
	ThreadID string          `json:"threadId"`
	RunID    string          `json:"runId"`
	Result   json.RawMessage `json:"result,omitempty"`
}

// RunErrorEvent signals failed termination of the run.
type RunErrorEvent struct {
	BaseEvent
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// StepStartedEvent opens a named step.
type StepStartedEvent struct {
	BaseEvent
	StepName string `json:"stepName"`
}

// StepFinishedEvent closes a previously opened step.
type StepFinishedEvent struct {
	BaseEvent
	StepName string `json:"stepName"`
}

// TextMessageStartEvent opens a streaming text message identified by
// MessageID. Content arrives via TextMessageContentEvent deltas.
type TextMessageStartEvent struct {
	BaseEvent
	MessageID string `json:"messageId"`
	Role      Role   `json:"role"`
}

// TextMessageContentEvent appends Delta to the open message's content.
type TextMessageContentEvent struct {
	BaseEvent
	MessageID string `json:"messageId"`
	Delta     string `json:"delta"`
}

// TextMessageEndEvent closes the open message.
type TextMessageEndEvent struct {
	BaseEvent
	MessageID string `json:"messageId"`
}

// ToolCallStartEvent opens a streaming tool call. ParentMessageID optionally
// attaches the call to an existing assistant message.
type ToolCallStartEvent struct {
	BaseEvent
	ToolCallID      string `json:"toolCallId"`
	ToolCallName    string `json:"toolCallName"`
	ParentMessageID string `json:"parentMessageId,omitempty"`
}

// ToolCallArgsEvent appends Delta to the open tool call's serialized
// argument payload.
type ToolCallArgsEvent struct {
	BaseEvent
	ToolCallID string `json:"toolCallId"`
	Delta      string `json:"delta"`
}

// ToolCallEndEvent closes the open tool call.
type ToolCallEndEvent struct {
	BaseEvent
	ToolCallID string `json:"toolCallId"`
}

// StateSnapshotEvent replaces the run state with Snapshot.
type StateSnapshotEvent struct {
	BaseEvent
	Snapshot json.RawMessage `json:"snapshot"`
}

// StateDeltaEvent patches the run state with an ordered list of RFC 6902
// operations.
type StateDeltaEvent struct {
	BaseEvent
	Delta []PatchOp `json:"delta"`
}

// MessagesSnapshotEvent replaces the message history with Messages.
type MessagesSnapshotEvent struct {
	BaseEvent
	Messages []Message `json:"messages"`
}

// RawEvent passes an upstream event through untouched. Source optionally
// names the producing system.
type RawEvent struct {
	BaseEvent
	Event  json.RawMessage `json:"event"`
	Source string          `json:"source,omitempty"`
}

// CustomEvent carries an application-defined extension payload.
type CustomEvent struct {
	BaseEvent
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value,omitempty"`
}

// PatchOp is a single RFC 6902 JSON Patch operation carried by a
// StateDeltaEvent.
type PatchOp struct {
	Op    string          `json:"op"`
	Path  string          `json:"path"`
	From  string          `json:"from,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
}

// NewRunStartedEvent creates a RUN_STARTED event.
func NewRunStartedEvent(threadID, runID string) *RunStartedEvent {
	return &RunStartedEvent{BaseEvent: BaseEvent{EventType: EventTypeRunStarted}, ThreadID: threadID, RunID: runID}
}

// NewRunFinishedEvent creates a RUN_FINISHED event.
func NewRunFinishedEvent(threadID, runID string) *RunFinishedEvent {
	return &RunFinishedEvent{BaseEvent: BaseEvent{EventType: EventTypeRunFinished}, ThreadID: threadID, RunID: runID}
}

// NewRunErrorEvent creates a RUN_ERROR event.
func NewRunErrorEvent(message, code string) *RunErrorEvent {
	return &RunErrorEvent{BaseEvent: BaseEvent{EventType: EventTypeRunError}, Message: message, Code: code}
}

// NewStepStartedEvent creates a STEP_STARTED event.
func NewStepStartedEvent(stepName string) *StepStartedEvent {
	return &StepStartedEvent{BaseEvent: BaseEvent{EventType: EventTypeStepStarted}, StepName: stepName}
}

// NewStepFinishedEvent creates a STEP_FINISHED event.
func NewStepFinishedEvent(stepName string) *StepFinishedEvent {
	return &StepFinishedEvent{BaseEvent: BaseEvent{EventType: EventTypeStepFinished}, StepName: stepName}
}

// NewTextMessageStartEvent creates a TEXT_MESSAGE_START event.
func NewTextMessageStartEvent(messageID string, role Role) *TextMessageStartEvent {
	return &TextMessageStartEvent{BaseEvent: BaseEvent{EventType: EventTypeTextMessageStart}, MessageID: messageID, Role: role}
}

// NewTextMessageContentEvent creates a TEXT_MESSAGE_CONTENT event.
func NewTextMessageContentEvent(messageID, delta string) *TextMessageContentEvent {
	return &TextMessageContentEvent{BaseEvent: BaseEvent{EventType: EventTypeTextMessageContent}, MessageID: messageID, Delta: delta}
}

// NewTextMessageEndEvent creates a TEXT_MESSAGE_END event.
func NewTextMessageEndEvent(messageID string) *TextMessageEndEvent {
	return &TextMessageEndEvent{BaseEvent: BaseEvent{EventType: EventTypeTextMessageEnd}, MessageID: messageID}
}

// NewToolCallStartEvent creates a TOOL_CALL_START event.
func NewToolCallStartEvent(toolCallID, toolCallName string) *ToolCallStartEvent {
	return &ToolCallStartEvent{BaseEvent: BaseEvent{EventType: EventTypeToolCallStart}, ToolCallID: toolCallID, ToolCallName: toolCallName}
}

// NewToolCallArgsEvent creates a TOOL_CALL_ARGS event.
func NewToolCallArgsEvent(toolCallID, delta string) *ToolCallArgsEvent {
	return &ToolCallArgsEvent{BaseEvent: BaseEvent{EventType: EventTypeToolCallArgs}, ToolCallID: toolCallID, Delta: delta}
}

// NewToolCallEndEvent creates a TOOL_CALL_END event.
func NewToolCallEndEvent(toolCallID string) *ToolCallEndEvent {
	return &ToolCallEndEvent{BaseEvent: BaseEvent{EventType: EventTypeToolCallEnd}, ToolCallID: toolCallID}
}

// NewStateSnapshotEvent creates a STATE_SNAPSHOT event.
func NewStateSnapshotEvent(snapshot json.RawMessage) *StateSnapshotEvent {
	return &StateSnapshotEvent{BaseEvent: BaseEvent{EventType: EventTypeStateSnapshot}, Snapshot: snapshot}
}

// NewStateDeltaEvent creates a STATE_DELTA event.
func NewStateDeltaEvent(delta []PatchOp) *StateDeltaEvent {
	return &StateDeltaEvent{BaseEvent: BaseEvent{EventType: EventTypeStateDelta}, Delta: delta}
}

// NewMessagesSnapshotEvent creates a MESSAGES_SNAPSHOT event.
func NewMessagesSnapshotEvent(messages []Message) *MessagesSnapshotEvent {
	return &MessagesSnapshotEvent{BaseEvent: BaseEvent{EventType: EventTypeMessagesSnapshot}, Messages: messages}
}

// NewRawEvent creates a RAW passthrough event.
func NewRawEvent(event json.RawMessage, source string) *RawEvent {
	return &RawEvent{BaseEvent: BaseEvent{EventType: EventTypeRaw}, Event: event, Source: source}
}

// NewCustomEvent creates a CUSTOM extension event.
func NewCustomEvent(name string, value json.RawMessage) *CustomEvent {
	return &CustomEvent{BaseEvent: BaseEvent{EventType: EventTypeCustom}, Name: name, Value: value}
}
