// Package logging provides a tiny abstraction over slog so the run pipeline
// can depend on a minimal interface (Logger) while allowing users to plug
// any structured logger. A NoOp implementation is the default everywhere so
// logging never becomes a hard dependency of the protocol engine.
package logging
