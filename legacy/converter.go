package legacy

import (
	"encoding/json"

	"github.com/hupe1980/agui/core"
)

// Identifiers carries the correlation ids attached to every converted event.
type Identifiers struct {
	ThreadID string
	RunID    string
	AgentID  string
}

// Converter translates one verified protocol event into zero or more legacy
// wire events, in order. Implementations may expand a single event into
// several legacy records (or none) but must preserve relative ordering.
type Converter interface {
	Convert(ids Identifiers, ev core.Event) ([]json.RawMessage, error)
}

// ConverterFunc adapts a plain function to the Converter interface.
type ConverterFunc func(ids Identifiers, ev core.Event) ([]json.RawMessage, error)

// Convert calls the wrapped function.
func (f ConverterFunc) Convert(ids Identifiers, ev core.Event) ([]json.RawMessage, error) {
	return f(ids, ev)
}
