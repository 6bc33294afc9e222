package core

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// eventFactories maps every wire discriminator to a constructor for its
// concrete type. The table is the single dispatch point of the codec; adding
// an event kind without registering it here is a bug caught by tests.
var eventFactories = map[EventType]func() Event{
	EventTypeRunStarted:         func() Event { return &RunStartedEvent{} },
	EventTypeRunFinished:        func() Event { return &RunFinishedEvent{} },
	EventTypeRunError:           func() Event { return &RunErrorEvent{} },
	EventTypeStepStarted:        func() Event { return &StepStartedEvent{} },
	EventTypeStepFinished:       func() Event { return &StepFinishedEvent{} },
	EventTypeTextMessageStart:   func() Event { return &TextMessageStartEvent{} },
	EventTypeTextMessageContent: func() Event { return &TextMessageContentEvent{} },
	EventTypeTextMessageEnd:     func() Event { return &TextMessageEndEvent{} },
	EventTypeToolCallStart:      func() Event { return &ToolCallStartEvent{} },
	EventTypeToolCallArgs:       func() Event { return &ToolCallArgsEvent{} },
	EventTypeToolCallEnd:        func() Event { return &ToolCallEndEvent{} },
	EventTypeStateSnapshot:      func() Event { return &StateSnapshotEvent{} },
	EventTypeStateDelta:         func() Event { return &StateDeltaEvent{} },
	EventTypeMessagesSnapshot:   func() Event { return &MessagesSnapshotEvent{} },
	EventTypeRaw:                func() Event { return &RawEvent{} },
	EventTypeCustom:             func() Event { return &CustomEvent{} },
}

// UnmarshalEvent decodes a single JSON-encoded event payload into its
// concrete type, dispatching on the "type" discriminator.
func UnmarshalEvent(data []byte) (Event, error) {
	tag := gjson.GetBytes(data, "type")
	if !tag.Exists() {
		return nil, fmt.Errorf("event payload missing type discriminator: %s", truncate(data, 120))
	}

	factory, ok := eventFactories[EventType(tag.String())]
	if !ok {
		return nil, fmt.Errorf("unknown event type %q", tag.String())
	}

	ev := factory()
	if err := json.Unmarshal(data, ev); err != nil {
		return nil, fmt.Errorf("failed to decode %s event: %w", tag.String(), err)
	}

	return ev, nil
}

// MarshalEvent encodes an event into its JSON wire form.
func MarshalEvent(ev Event) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s event: %w", ev.Type(), err)
	}

	return data, nil
}

func truncate(data []byte, n int) string {
	if len(data) <= n {
		return string(data)
	}

	return string(data[:n]) + "..."
}
