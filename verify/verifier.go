package verify

import (
	"errors"
	"fmt"

	"github.com/hupe1980/agui/core"
)

// ErrViolation is the sentinel wrapped by every protocol ordering error, so
// callers can classify failures with errors.Is.
var ErrViolation = errors.New("protocol violation")

// runState tracks the coarse run lifecycle.
type runState int

const (
	runNotStarted runState = iota
	runRunning
	runFinished
	runFailed
)

// Verifier validates one run's event sequence. It carries per-run state and
// must not be reused across runs; create one per invocation with New.
type Verifier struct {
	state         runState
	openMessages  map[string]struct{}
	openToolCalls map[string]struct{}
	openSteps     map[string]struct{}
}

// New creates a verifier in the NOT_STARTED state.
func New() *Verifier {
	return &Verifier{
		openMessages:  make(map[string]struct{}),
		openToolCalls: make(map[string]struct{}),
		openSteps:     make(map[string]struct{}),
	}
}

// Check validates ev against the grammar and advances the machine. A nil
// return means the event is legal and must be forwarded unchanged; a non-nil
// return is terminal for the stream.
func (v *Verifier) Check(ev core.Event) error {
	switch v.state {
	case runFinished, runFailed:
		return fmt.Errorf("%w: %s after the run terminated", ErrViolation, ev.Type())
	case runNotStarted:
		if ev.Type() != core.EventTypeRunStarted {
			return fmt.Errorf("%w: first event must be %s, got %s", ErrViolation, core.EventTypeRunStarted, ev.Type())
		}
	}

	switch e := ev.(type) {
	case *core.RunStartedEvent:
		if v.state == runRunning {
			return fmt.Errorf("%w: repeated %s", ErrViolation, core.EventTypeRunStarted)
		}
		v.state = runRunning

	case *core.RunFinishedEvent:
		if err := v.checkAllClosed(); err != nil {
			return err
		}
		v.state = runFinished

	case *core.RunErrorEvent:
		v.state = runFailed

	case *core.StepStartedEvent:
		if _, open := v.openSteps[e.StepName]; open {
			return fmt.Errorf("%w: step %q started while already running", ErrViolation, e.StepName)
		}
		v.openSteps[e.StepName] = struct{}{}

	case *core.StepFinishedEvent:
		if _, open := v.openSteps[e.StepName]; !open {
			return fmt.Errorf("%w: %s for step %q that was never started", ErrViolation, ev.Type(), e.StepName)
		}
		delete(v.openSteps, e.StepName)

	case *core.TextMessageStartEvent:
		if _, open := v.openMessages[e.MessageID]; open {
			return fmt.Errorf("%w: message %q started while already open", ErrViolation, e.MessageID)
		}
		v.openMessages[e.MessageID] = struct{}{}

	case *core.TextMessageContentEvent:
		if _, open := v.openMessages[e.MessageID]; !open {
			return fmt.Errorf("%w: %s for message %q that is not open", ErrViolation, ev.Type(), e.MessageID)
		}
		if e.Delta == "" {
			return fmt.Errorf("%w: empty delta for message %q", ErrViolation, e.MessageID)
		}

	case *core.TextMessageEndEvent:
		if _, open := v.openMessages[e.MessageID]; !open {
			return fmt.Errorf("%w: %s for message %q that is not open", ErrViolation, ev.Type(), e.MessageID)
		}
		delete(v.openMessages, e.MessageID)

	case *core.ToolCallStartEvent:
		if _, open := v.openToolCalls[e.ToolCallID]; open {
			return fmt.Errorf("%w: tool call %q started while already open", ErrViolation, e.ToolCallID)
		}
		v.openToolCalls[e.ToolCallID] = struct{}{}

	case *core.ToolCallArgsEvent:
		if _, open := v.openToolCalls[e.ToolCallID]; !open {
			return fmt.Errorf("%w: %s for tool call %q that is not open", ErrViolation, ev.Type(), e.ToolCallID)
		}

	case *core.ToolCallEndEvent:
		if _, open := v.openToolCalls[e.ToolCallID]; !open {
			return fmt.Errorf("%w: %s for tool call %q that is not open", ErrViolation, ev.Type(), e.ToolCallID)
		}
		delete(v.openToolCalls, e.ToolCallID)

	case *core.StateSnapshotEvent, *core.StateDeltaEvent, *core.MessagesSnapshotEvent,
		*core.RawEvent, *core.CustomEvent:
		// Legal whenever the run is RUNNING, which the lifecycle switch
		// above already guarantees.

	default:
		return fmt.Errorf("%w: unhandled event type %s", ErrViolation, ev.Type())
	}

	return nil
}

// Finish validates that the stream may legally end here. Every run must
// reach RUN_FINISHED or RUN_ERROR before its stream completes; a clean EOF
// without a terminal event is a truncated run, not a successful one.
func (v *Verifier) Finish() error {
	switch v.state {
	case runFinished, runFailed:
		return nil
	case runNotStarted:
		return fmt.Errorf("%w: stream ended before %s", ErrViolation, core.EventTypeRunStarted)
	default:
		return fmt.Errorf("%w: stream ended before a terminal event", ErrViolation)
	}
}

// checkAllClosed rejects RUN_FINISHED while messages, tool calls or steps
// are still open.
func (v *Verifier) checkAllClosed() error {
	for id := range v.openMessages {
		return fmt.Errorf("%w: %s with message %q still open", ErrViolation, core.EventTypeRunFinished, id)
	}
	for id := range v.openToolCalls {
		return fmt.Errorf("%w: %s with tool call %q still open", ErrViolation, core.EventTypeRunFinished, id)
	}
	for name := range v.openSteps {
		return fmt.Errorf("%w: %s with step %q still open", ErrViolation, core.EventTypeRunFinished, name)
	}

	return nil
}
