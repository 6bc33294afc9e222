// Package legacy defines the bridging contract toward the older external
// wire protocol. The run orchestrator taps the verified event stream (not
// the reduced state) and hands each event, together with thread/run/agent
// identifiers, to a Converter. The exact output shape is owned by the
// converter implementation; this module only guarantees a correctly
// verified, correctly ordered input stream.
package legacy
