// Package core provides the foundational protocol types shared by every
// stage of the run pipeline. It defines:
//
//   - Events (the closed union of typed records an agent run may emit)
//   - Messages and tool calls (incrementally built conversation content)
//   - RunInput (the immutable per-invocation snapshot sent to the agent)
//   - AgentState (the caller-visible projection produced by the reducer)
//
// The package intentionally keeps implementation concerns (transport,
// decoding, verification, reduction, orchestration) out of scope. All state
// carried by events and inputs is plain data; the only behavior exposed here
// is the JSON codec for the tagged event union and deep-copy helpers used at
// trust boundaries.
package core
