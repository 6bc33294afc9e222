// Package agent composes the run pipeline (transport, decoder, verifier,
// reducer) into a single public entry point per invocation. An Agent owns
// its identifiers and the persisted conversation/state between runs, clones
// every input at invocation start, exposes cooperative cancellation, and
// invokes overridable error/finalize hooks around each run.
package agent
