package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hupe1980/agui/core"
	"github.com/hupe1980/agui/legacy"
	"github.com/hupe1980/agui/sse"
	"github.com/hupe1980/agui/transport"
	"github.com/hupe1980/agui/verify"
)

// RunAgentParams carries optional per-invocation inputs. All fields may be
// left zero; identifiers are assigned automatically.
type RunAgentParams struct {
	// RunID overrides the generated run identifier.
	RunID string
	// Tools lists frontend-provided capabilities for this run.
	Tools []core.Tool
	// Context lists ambient context items forwarded to the agent.
	Context []core.ContextItem
	// ForwardedProps is an opaque payload forwarded to the agent.
	ForwardedProps json.RawMessage
}

// Run starts one invocation from an explicit input and returns the verified
// event stream. The input is cloned before use; decode or protocol failures
// terminate the stream with an error. Most callers want RunAgent instead,
// which also reduces the stream into state snapshots and manages hooks and
// identifiers.
func (a *Agent) Run(ctx context.Context, input core.RunInput) (<-chan core.Event, <-chan error) {
	eventsCh := make(chan core.Event, a.bufferSize)
	errCh := make(chan error, 1)

	input = input.Clone()

	go func() {
		defer close(eventsCh)
		defer close(errCh)

		if err := a.produce(ctx, input, eventsCh); err != nil {
			// Cancellation ends the stream silently, it is not a failure.
			if ctx.Err() != nil {
				return
			}
			errCh <- err
		}
	}()

	return eventsCh, errCh
}

// produce drives transport → decoder → verifier for one run, forwarding
// verified events to out. The derived cancel guarantees the transport
// goroutine unblocks when produce returns early on a failure.
func (a *Agent) produce(ctx context.Context, input core.RunInput, out chan<- core.Event) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	body, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("failed to encode run input: %w", err)
	}

	notifyCh, errCh := a.transport.Open(ctx, transport.Request{
		Method: http.MethodPost,
		URL:    a.url,
		Header: a.header.Clone(),
		Body:   body,
	})

	decoder := sse.NewDecoder()
	verifier := verify.New()

	for n := range notifyCh {
		switch n := n.(type) {
		case transport.HeadersNotification:
			a.logger.Debug("run stream opened", "run_id", input.RunID, "status", n.StatusCode)

		case transport.DataNotification:
			events, err := decoder.Feed(n.Chunk)
			if err != nil {
				return err
			}

			for _, ev := range events {
				if err := verifier.Check(ev); err != nil {
					return err
				}

				select {
				case <-ctx.Done():
					return ctx.Err()
				case out <- ev:
				}
			}
		}
	}

	// The transport delivers its terminal failure before closing.
	if err := <-errCh; err != nil {
		return err
	}

	if err := decoder.Flush(); err != nil {
		return err
	}

	return verifier.Finish()
}

// RunAgent starts one invocation against the persisted conversation/state
// and returns the reduced snapshot stream. It assigns missing identifiers,
// deep-clones the input, registers the cancellation handle, invokes the
// error hook before re-raising a failure, and invokes the finalize hook
// exactly once regardless of outcome. On success the final snapshot is
// persisted back into the agent.
//
// The run starts as soon as RunAgent returns; the channels deliver the
// results of work already in flight, so consume them promptly.
func (a *Agent) RunAgent(ctx context.Context, params *RunAgentParams) (<-chan core.AgentState, <-chan error) {
	statesCh := make(chan core.AgentState, a.bufferSize)
	errCh := make(chan error, 1)

	input := a.prepareRunInput(params)

	runCtx, cancel := context.WithCancel(ctx)
	handle := a.registerRun(cancel)

	go func() {
		defer close(statesCh)
		defer close(errCh)
		defer a.finalize()
		defer a.clearRun(handle)
		defer cancel()

		final, err := a.consume(runCtx, input, statesCh)
		if err != nil {
			if runCtx.Err() != nil {
				return
			}

			a.logger.Error("run failed", "run_id", input.RunID, "error", err)
			a.handleRunError(err)
			errCh <- err

			return
		}

		if runCtx.Err() == nil {
			a.persist(final)
		}
	}()

	return statesCh, errCh
}

// RunAgentBridged starts one invocation and taps the verified event stream
// (not the reduced state), converting each event to the legacy wire
// representation enriched with thread/run/agent identifiers. Ordering
// follows the verified stream exactly.
func (a *Agent) RunAgentBridged(ctx context.Context, params *RunAgentParams, conv legacy.Converter) (<-chan json.RawMessage, <-chan error) {
	outCh := make(chan json.RawMessage, a.bufferSize)
	errCh := make(chan error, 1)

	input := a.prepareRunInput(params)
	ids := legacy.Identifiers{ThreadID: input.ThreadID, RunID: input.RunID, AgentID: a.AgentID()}

	runCtx, cancel := context.WithCancel(ctx)
	handle := a.registerRun(cancel)

	go func() {
		defer close(outCh)
		defer close(errCh)
		defer a.finalize()
		defer a.clearRun(handle)
		defer cancel()

		if err := a.bridge(runCtx, input, ids, conv, outCh); err != nil {
			if runCtx.Err() != nil {
				return
			}

			a.handleRunError(err)
			errCh <- err
		}
	}()

	return outCh, errCh
}

// consume applies the reducer to the verified stream, emitting one snapshot
// per event, and returns the final snapshot.
func (a *Agent) consume(ctx context.Context, input core.RunInput, out chan<- core.AgentState) (core.AgentState, error) {
	reducer := a.newReducer(input)

	var final core.AgentState

	eventsCh, errCh := a.Run(ctx, input)

	for ev := range eventsCh {
		snapshot, err := reducer.Reduce(ev)
		if err != nil {
			return core.AgentState{}, err
		}

		final = snapshot

		select {
		case <-ctx.Done():
			return core.AgentState{}, ctx.Err()
		case out <- snapshot:
		}
	}

	if err := <-errCh; err != nil {
		return core.AgentState{}, err
	}

	return final, nil
}

// bridge feeds the verified stream through the legacy converter.
func (a *Agent) bridge(ctx context.Context, input core.RunInput, ids legacy.Identifiers, conv legacy.Converter, out chan<- json.RawMessage) error {
	eventsCh, errCh := a.Run(ctx, input)

	for ev := range eventsCh {
		converted, err := conv.Convert(ids, ev)
		if err != nil {
			return fmt.Errorf("legacy conversion failed: %w", err)
		}

		for _, raw := range converted {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case out <- raw:
			}
		}
	}

	return <-errCh
}

// prepareRunInput builds the immutable per-invocation snapshot from the
// persisted conversation/state plus the caller's params, assigning missing
// identifiers.
func (a *Agent) prepareRunInput(params *RunAgentParams) core.RunInput {
	if params == nil {
		params = &RunAgentParams{}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.agentID == "" {
		a.agentID = core.NewID()
	}

	if a.threadID == "" {
		a.threadID = core.NewID()
	}

	runID := params.RunID
	if runID == "" {
		runID = core.NewID()
	}

	input := core.RunInput{
		ThreadID:       a.threadID,
		RunID:          runID,
		State:          a.state,
		Messages:       a.messages,
		Tools:          params.Tools,
		Context:        params.Context,
		ForwardedProps: params.ForwardedProps,
	}

	return input.Clone()
}

// persist stores the final snapshot as the agent's conversation/state for
// subsequent runs.
func (a *Agent) persist(final core.AgentState) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if final.Messages != nil {
		a.messages = core.CloneMessages(final.Messages)
	}

	if final.State != nil {
		a.state = core.CloneRawJSON(final.State)
	}
}

func (a *Agent) handleRunError(err error) {
	if a.onRunError != nil {
		a.onRunError(err)
	}
}

func (a *Agent) finalize() {
	if a.onRunFinalize != nil {
		a.onRunFinalize()
	}
}
