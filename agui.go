// Package agui provides a high-level façade over the run pipeline (agent
// orchestration, transport, decoding, verification and reduction) for
// driving remote agents that speak the streaming event protocol. Most
// applications interact with this package by:
//  1. Creating an Agent via NewAgent() (optionally overriding transport,
//     reducer, hooks or logging)
//  2. Starting runs asynchronously (RunAgent) or synchronously (RunSync)
//  3. Consuming the resulting snapshot stream
//
// The façade delegates orchestration to agent.Agent while keeping setup and
// usage ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply custom headers, a tuned
// HTTP client and a structured logger.
package agui

import (
	"context"

	"github.com/hupe1980/agui/agent"
	"github.com/hupe1980/agui/core"
)

// NewAgent creates an Agent for the given endpoint URL. See agent.Options
// for the available overrides.
func NewAgent(url string, optFns ...func(o *agent.Options)) *agent.Agent {
	return agent.New(url, optFns...)
}

// RunSync is a synchronous helper that starts a run, drains the snapshot
// stream and returns the final state. The context governs cancellation; on
// failure the snapshots observed so far are returned alongside the error.
func RunSync(ctx context.Context, a *agent.Agent, params *agent.RunAgentParams) (core.AgentState, error) {
	statesCh, errCh := a.RunAgent(ctx, params)

	var final core.AgentState

	for {
		select {
		case <-ctx.Done():
			return final, ctx.Err()

		case snapshot, ok := <-statesCh:
			if !ok {
				// Snapshot channel closed - check for terminal error.
				if err := <-errCh; err != nil {
					return final, err
				}

				return final, nil
			}

			final = snapshot

		case err := <-errCh:
			if err != nil {
				return final, err
			}
		}
	}
}
