// Package verify enforces the legal ordering grammar of a run's event
// stream. The verifier is a finite-state machine interposed between decoder
// and reducer: on success it is a pure pass-through (output sequence equals
// input sequence, in order); any violation yields one terminal, descriptive
// error and ends the stream. There is no partial recovery and no silent
// drop.
package verify
