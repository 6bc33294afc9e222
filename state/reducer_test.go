package state

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agui/core"
)

func reduceAll(t *testing.T, r Reducer, events []core.Event) core.AgentState {
	t.Helper()

	var final core.AgentState

	for _, ev := range events {
		snapshot, err := r.Reduce(ev)
		require.NoError(t, err)
		final = snapshot
	}

	return final
}

func TestDefaultReducer_StreamedMessage(t *testing.T) {
	input := core.RunInput{RunID: "r1", Messages: []core.Message{}, State: json.RawMessage(`{}`)}

	final := reduceAll(t, NewDefaultReducer(input), []core.Event{
		core.NewRunStartedEvent("t1", "r1"),
		core.NewTextMessageStartEvent("m1", core.RoleAssistant),
		core.NewTextMessageContentEvent("m1", "Hi"),
		core.NewTextMessageEndEvent("m1"),
		core.NewRunFinishedEvent("t1", "r1"),
	})

	require.Len(t, final.Messages, 1)
	assert.Equal(t, core.Message{ID: "m1", Role: core.RoleAssistant, Content: "Hi"}, final.Messages[0])
	assert.JSONEq(t, `{}`, string(final.State))
}

func TestDefaultReducer_SnapshotThenDelta(t *testing.T) {
	final := reduceAll(t, NewDefaultReducer(core.RunInput{RunID: "r1"}), []core.Event{
		core.NewRunStartedEvent("t1", "r1"),
		core.NewStateSnapshotEvent(json.RawMessage(`{"count":1}`)),
		core.NewStateDeltaEvent([]core.PatchOp{{Op: "replace", Path: "/count", Value: json.RawMessage("2")}}),
		core.NewRunFinishedEvent("t1", "r1"),
	})

	assert.JSONEq(t, `{"count":2}`, string(final.State))
}

func TestDefaultReducer_DeltaBeforeSnapshotStartsEmpty(t *testing.T) {
	final := reduceAll(t, NewDefaultReducer(core.RunInput{RunID: "r1"}), []core.Event{
		core.NewRunStartedEvent("t1", "r1"),
		core.NewStateDeltaEvent([]core.PatchOp{{Op: "add", Path: "/fresh", Value: json.RawMessage("true")}}),
	})

	assert.JSONEq(t, `{"fresh":true}`, string(final.State))
}

func TestDefaultReducer_InvalidPatchFails(t *testing.T) {
	r := NewDefaultReducer(core.RunInput{RunID: "r1", State: json.RawMessage(`{"count":1}`)})

	_, err := r.Reduce(core.NewRunStartedEvent("t1", "r1"))
	require.NoError(t, err)

	_, err = r.Reduce(core.NewStateDeltaEvent([]core.PatchOp{
		{Op: "test", Path: "/count", Value: json.RawMessage("99")},
	}))
	assert.ErrorContains(t, err, "state delta")
}

func TestDefaultReducer_ToolCallOnParentMessage(t *testing.T) {
	start := core.NewToolCallStartEvent("c1", "get_weather")
	start.ParentMessageID = "m1"

	final := reduceAll(t, NewDefaultReducer(core.RunInput{RunID: "r1"}), []core.Event{
		core.NewRunStartedEvent("t1", "r1"),
		core.NewTextMessageStartEvent("m1", core.RoleAssistant),
		start,
		core.NewToolCallArgsEvent("c1", `{"city":`),
		core.NewToolCallArgsEvent("c1", `"Berlin"}`),
		core.NewToolCallEndEvent("c1"),
		core.NewTextMessageEndEvent("m1"),
		core.NewRunFinishedEvent("t1", "r1"),
	})

	require.Len(t, final.Messages, 1)
	require.Len(t, final.Messages[0].ToolCalls, 1)

	call := final.Messages[0].ToolCalls[0]
	assert.Equal(t, "c1", call.ID)
	assert.Equal(t, "get_weather", call.Function.Name)
	assert.Equal(t, `{"city":"Berlin"}`, call.Function.Arguments)
}

func TestDefaultReducer_ToolCallWithoutParentCreatesMessage(t *testing.T) {
	final := reduceAll(t, NewDefaultReducer(core.RunInput{RunID: "r1"}), []core.Event{
		core.NewRunStartedEvent("t1", "r1"),
		core.NewToolCallStartEvent("c1", "get_weather"),
		core.NewToolCallArgsEvent("c1", `{}`),
		core.NewToolCallEndEvent("c1"),
		core.NewRunFinishedEvent("t1", "r1"),
	})

	require.Len(t, final.Messages, 1)
	assert.Equal(t, core.RoleAssistant, final.Messages[0].Role)
	require.Len(t, final.Messages[0].ToolCalls, 1)
	assert.Equal(t, `{}`, final.Messages[0].ToolCalls[0].Function.Arguments)
}

func TestDefaultReducer_MessagesSnapshotReplaces(t *testing.T) {
	input := core.RunInput{RunID: "r1", Messages: []core.Message{{ID: "old", Role: core.RoleUser, Content: "old"}}}

	final := reduceAll(t, NewDefaultReducer(input), []core.Event{
		core.NewRunStartedEvent("t1", "r1"),
		core.NewMessagesSnapshotEvent([]core.Message{{ID: "new", Role: core.RoleAssistant, Content: "new"}}),
		core.NewRunFinishedEvent("t1", "r1"),
	})

	require.Len(t, final.Messages, 1)
	assert.Equal(t, "new", final.Messages[0].ID)
}

func TestDefaultReducer_Deterministic(t *testing.T) {
	input := core.RunInput{RunID: "r1", State: json.RawMessage(`{"n":0}`)}
	events := []core.Event{
		core.NewRunStartedEvent("t1", "r1"),
		core.NewTextMessageStartEvent("m1", core.RoleAssistant),
		core.NewTextMessageContentEvent("m1", "a"),
		core.NewTextMessageContentEvent("m1", "b"),
		core.NewTextMessageEndEvent("m1"),
		core.NewStateDeltaEvent([]core.PatchOp{{Op: "replace", Path: "/n", Value: json.RawMessage("5")}}),
		core.NewRunFinishedEvent("t1", "r1"),
	}

	first := reduceAll(t, NewDefaultReducer(input), events)
	second := reduceAll(t, NewDefaultReducer(input), events)

	assert.Equal(t, first.Messages, second.Messages)
	assert.JSONEq(t, string(first.State), string(second.State))
}

func TestDefaultReducer_SnapshotsDoNotAlias(t *testing.T) {
	r := NewDefaultReducer(core.RunInput{RunID: "r1"})

	_, err := r.Reduce(core.NewRunStartedEvent("t1", "r1"))
	require.NoError(t, err)

	_, err = r.Reduce(core.NewTextMessageStartEvent("m1", core.RoleAssistant))
	require.NoError(t, err)

	before, err := r.Reduce(core.NewTextMessageContentEvent("m1", "Hi"))
	require.NoError(t, err)

	_, err = r.Reduce(core.NewTextMessageContentEvent("m1", " there"))
	require.NoError(t, err)

	// The earlier snapshot must not observe the later append.
	assert.Equal(t, "Hi", before.Messages[0].Content)
}

func TestDefaultReducer_DoesNotAliasInput(t *testing.T) {
	messages := []core.Message{{ID: "m0", Role: core.RoleUser, Content: "original"}}
	input := core.RunInput{RunID: "r1", Messages: messages}

	r := NewDefaultReducer(input)
	messages[0].Content = "mutated"

	snapshot, err := r.Reduce(core.NewRunStartedEvent("t1", "r1"))
	require.NoError(t, err)
	assert.Equal(t, "original", snapshot.Messages[0].Content)
}
