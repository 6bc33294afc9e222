// Package state folds verified protocol events into materialized AgentState
// snapshots. The default reducer maintains working copies of the
// conversation and the opaque state document, emitting one deep-copied
// snapshot per event. Reducers are substitutable: any implementation
// honoring "verified events in, snapshots out, same order" can replace the
// default to derive domain-specific state.
package state
