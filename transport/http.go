package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/hupe1980/agui/logging"
)

const (
	// readBufferSize is the size of the body read buffer per connection.
	readBufferSize = 4096
	// errorBodyLimit bounds how much of a non-2xx response body is read
	// into the returned error.
	errorBodyLimit = 4096
)

// HTTPOptions holds dependency + configuration overrides passed to
// NewHTTPTransport.
type HTTPOptions struct {
	// Client is the underlying HTTP client. Streaming requires a client
	// without a global timeout; use context deadlines instead.
	Client *http.Client
	// BufferSize sets channel buffering for notifications.
	BufferSize int
	// Logger receives connection lifecycle diagnostics.
	Logger logging.Logger
}

// HTTPTransport implements Transport over net/http with chunked response
// body streaming.
type HTTPTransport struct {
	client     *http.Client
	bufferSize int
	logger     logging.Logger
}

var _ Transport = (*HTTPTransport)(nil)

// NewHTTPTransport constructs an HTTPTransport with optional overrides.
func NewHTTPTransport(optFns ...func(o *HTTPOptions)) *HTTPTransport {
	opts := HTTPOptions{
		Client:     &http.Client{},
		BufferSize: 16,
		Logger:     logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &HTTPTransport{
		client:     opts.Client,
		bufferSize: opts.BufferSize,
		logger:     opts.Logger,
	}
}

// Open implements Transport. The request is issued immediately; body chunks
// are delivered until EOF, failure or cancellation.
func (t *HTTPTransport) Open(ctx context.Context, req Request) (<-chan Notification, <-chan error) {
	notifyCh := make(chan Notification, t.bufferSize)
	errCh := make(chan error, 1)

	go func() {
		defer close(notifyCh)
		defer close(errCh)

		if err := t.stream(ctx, req, notifyCh); err != nil {
			// Cancellation ends the stream silently, it is not a failure.
			if ctx.Err() != nil {
				return
			}
			errCh <- err
		}
	}()

	return notifyCh, errCh
}

func (t *HTTPTransport) stream(ctx context.Context, req Request, notifyCh chan<- Notification) error {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	// Fixed protocol headers take precedence over caller-supplied ones.
	httpReq.Header.Set("Accept", "text/event-stream")
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to connect to agent: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	t.logger.Debug("transport connected", "url", req.URL, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return fmt.Errorf("agent returned status %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case notifyCh <- HeadersNotification{StatusCode: resp.StatusCode, Header: resp.Header.Clone()}:
	}

	buf := make([]byte, readBufferSize)

	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])

			select {
			case <-ctx.Done():
				return ctx.Err()
			case notifyCh <- DataNotification{Chunk: chunk}:
			}
		}

		if err != nil {
			if err == io.EOF {
				return nil
			}

			return fmt.Errorf("stream interrupted: %w", err)
		}
	}
}
