package transport

import (
	"context"
	"net/http"
)

// Request describes a single streaming request to an agent endpoint.
type Request struct {
	// Method is the HTTP method (POST for protocol runs).
	Method string
	// URL is the absolute endpoint URL.
	URL string
	// Header holds caller-supplied headers merged with the fixed protocol
	// headers by the transport.
	Header http.Header
	// Body is the serialized request payload, may be nil.
	Body []byte
}

// Notification is one element of a streaming connection's output. Concrete
// notification types implement the unexported isNotification marker
// enabling a closed set.
type Notification interface{ isNotification() }

// HeadersNotification reports the response status and headers. It is always
// the first notification of a successful connection and occurs exactly once.
type HeadersNotification struct {
	StatusCode int
	Header     http.Header
}

func (HeadersNotification) isNotification() {}

// DataNotification carries one raw chunk of response body bytes. Chunk
// boundaries carry no meaning; downstream decoding must not depend on them.
type DataNotification struct {
	Chunk []byte
}

func (DataNotification) isNotification() {}

// Transport opens streaming connections. Implementations must deliver
// notifications in arrival order and stop emitting as soon as ctx is
// cancelled.
type Transport interface {
	// Open starts the request and returns the notification stream plus an
	// error channel. Both channels are closed when the stream ends; a
	// terminal failure is delivered on the error channel first. Context
	// cancellation ends the stream without an error.
	Open(ctx context.Context, req Request) (<-chan Notification, <-chan error)
}
