package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/hupe1980/agui/core"
	"github.com/hupe1980/agui/logging"
	"github.com/hupe1980/agui/state"
	"github.com/hupe1980/agui/transport"
)

// Options holds dependency + configuration overrides passed to New().
type Options struct {
	// AgentID identifies this agent instance. Generated once on first use
	// if left empty.
	AgentID string
	// ThreadID is the long-lived conversation identity spanning runs.
	// Generated on first run if left empty.
	ThreadID string
	// Description is a human-readable label for the agent.
	Description string
	// InitialMessages seeds the persisted conversation.
	InitialMessages []core.Message
	// InitialState seeds the persisted opaque state document.
	InitialState json.RawMessage
	// Header holds extra request headers sent on every run.
	Header http.Header
	// Transport opens the streaming connection. Defaults to HTTP.
	Transport transport.Transport
	// ReducerFactory builds the per-run reducer. Defaults to the standard
	// reduction.
	ReducerFactory state.Factory
	// OnRunError is invoked once per failed run before the error is
	// re-raised to the caller.
	OnRunError func(err error)
	// OnRunFinalize is invoked exactly once per run regardless of outcome.
	OnRunFinalize func()
	// EventBufferSize sets channel buffering for events and snapshots.
	EventBufferSize int
	// Logger receives run lifecycle diagnostics.
	Logger logging.Logger
}

// Agent drives a remote agent endpoint and folds its event stream into
// state snapshots. Public methods are safe for concurrent use, but
// concurrent runs on the same instance that assume stable messages/state
// require caller-level synchronization.
type Agent struct {
	url         string
	description string
	header      http.Header

	transport  transport.Transport
	newReducer state.Factory

	onRunError    func(err error)
	onRunFinalize func()

	bufferSize int
	logger     logging.Logger

	mu       sync.Mutex
	agentID  string
	threadID string
	messages []core.Message
	state    json.RawMessage
	active   *runHandle
}

// runHandle identifies one active run and carries its cancellation.
type runHandle struct {
	cancel context.CancelFunc
}

// New constructs an Agent for the given endpoint URL with optional
// overrides.
func New(url string, optFns ...func(o *Options)) *Agent {
	opts := Options{
		Transport:       transport.NewHTTPTransport(),
		ReducerFactory:  state.NewDefault,
		EventBufferSize: 16,
		Logger:          logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Agent{
		url:           url,
		description:   opts.Description,
		header:        opts.Header.Clone(),
		transport:     opts.Transport,
		newReducer:    opts.ReducerFactory,
		onRunError:    opts.OnRunError,
		onRunFinalize: opts.OnRunFinalize,
		bufferSize:    opts.EventBufferSize,
		logger:        opts.Logger,
		agentID:       opts.AgentID,
		threadID:      opts.ThreadID,
		messages:      core.CloneMessages(opts.InitialMessages),
		state:         core.CloneRawJSON(opts.InitialState),
	}
}

// AgentID returns the stable instance identifier, generating it on first
// use.
func (a *Agent) AgentID() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.agentID == "" {
		a.agentID = core.NewID()
	}

	return a.agentID
}

// ThreadID returns the conversation identifier, empty until the first run
// assigns one.
func (a *Agent) ThreadID() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.threadID
}

// Description returns the human-readable agent label.
func (a *Agent) Description() string { return a.description }

// Messages returns a deep copy of the persisted conversation.
func (a *Agent) Messages() []core.Message {
	a.mu.Lock()
	defer a.mu.Unlock()

	return core.CloneMessages(a.messages)
}

// State returns a deep copy of the persisted state document.
func (a *Agent) State() json.RawMessage {
	a.mu.Lock()
	defer a.mu.Unlock()

	return core.CloneRawJSON(a.state)
}

// SetMessages replaces the persisted conversation. It must not be called
// while a run is active.
func (a *Agent) SetMessages(messages []core.Message) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.messages = core.CloneMessages(messages)
}

// SetState replaces the persisted state document. It must not be called
// while a run is active.
func (a *Agent) SetState(st json.RawMessage) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.state = core.CloneRawJSON(st)
}

// AbortRun cancels the active run, if any; otherwise it is a no-op.
// Cancellation terminates the stream without raising an error.
func (a *Agent) AbortRun() {
	a.mu.Lock()
	handle := a.active
	a.active = nil
	a.mu.Unlock()

	if handle != nil {
		handle.cancel()
	}
}

// IsRunning reports whether a run is currently active.
func (a *Agent) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.active != nil
}

// Clone returns an independent copy of the agent's identity, configuration
// and persisted messages/state. An in-flight run is not carried over.
func (a *Agent) Clone() *Agent {
	a.mu.Lock()
	defer a.mu.Unlock()

	return &Agent{
		url:           a.url,
		description:   a.description,
		header:        a.header.Clone(),
		transport:     a.transport,
		newReducer:    a.newReducer,
		onRunError:    a.onRunError,
		onRunFinalize: a.onRunFinalize,
		bufferSize:    a.bufferSize,
		logger:        a.logger,
		agentID:       a.agentID,
		threadID:      a.threadID,
		messages:      core.CloneMessages(a.messages),
		state:         core.CloneRawJSON(a.state),
	}
}

// registerRun installs the cancellation handle for a starting run.
func (a *Agent) registerRun(cancel context.CancelFunc) *runHandle {
	a.mu.Lock()
	defer a.mu.Unlock()

	handle := &runHandle{cancel: cancel}
	a.active = handle

	return handle
}

// clearRun removes the handle when the run it belongs to ends. A newer
// run's handle is left untouched.
func (a *Agent) clearRun(handle *runHandle) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.active == handle {
		a.active = nil
	}
}
