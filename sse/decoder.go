package sse

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/hupe1980/agui/core"
)

// Decoder incrementally extracts protocol events from an event-stream byte
// sequence. A Decoder is single-use: after any error it stays poisoned and
// refuses further input.
type Decoder struct {
	buf []byte
	err error
}

// NewDecoder creates an empty decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed appends a chunk and returns every event whose record became complete.
// Records are delimited by a blank line; multi-line data payloads are joined
// with '\n' per the event-stream format. Once Feed returns an error every
// subsequent call returns the same error.
func (d *Decoder) Feed(chunk []byte) ([]core.Event, error) {
	if d.err != nil {
		return nil, d.err
	}

	d.buf = append(d.buf, chunk...)

	var events []core.Event

	for {
		idx, width := recordBoundary(d.buf)
		if idx < 0 {
			break
		}

		record := string(d.buf[:idx])
		d.buf = d.buf[idx+width:]

		ev, ok, err := parseRecord(record)
		if err != nil {
			d.err = err
			return nil, err
		}

		if ok {
			events = append(events, ev)
		}
	}

	return events, nil
}

// Flush reports whether buffered input ended mid-record. Call it after the
// transport signals natural completion; trailing bytes that never formed a
// complete record indicate a truncated stream.
func (d *Decoder) Flush() error {
	if d.err != nil {
		return d.err
	}

	rest := strings.TrimRight(string(d.buf), "\r\n")
	if rest != "" {
		d.err = fmt.Errorf("stream ended with incomplete record: %q", truncateRecord(rest))
		return d.err
	}

	return nil
}

// recordBoundary finds the earliest blank line ("\n\n", "\r\n\r\n", or the
// mixed forms), returning the record length and delimiter width.
func recordBoundary(buf []byte) (int, int) {
	best, width := -1, 0

	for _, delim := range []string{"\r\n\r\n", "\r\n\n", "\n\r\n", "\n\n"} {
		if i := bytes.Index(buf, []byte(delim)); i >= 0 && (best < 0 || i < best) {
			best, width = i, len(delim)
		}
	}

	return best, width
}

// parseRecord extracts the data payload from one record and decodes it. The
// boolean result is false for records carrying no data lines (comments,
// heartbeats, bare field lines) which the protocol permits and ignores.
func parseRecord(record string) (core.Event, bool, error) {
	var data []string

	for _, line := range strings.Split(record, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}

		if after, ok := strings.CutPrefix(line, "data:"); ok {
			data = append(data, strings.TrimPrefix(after, " "))
		}
		// Other fields (event:, id:, retry:) carry no payload here.
	}

	if len(data) == 0 {
		return nil, false, nil
	}

	payload := strings.Join(data, "\n")

	ev, err := core.UnmarshalEvent([]byte(payload))
	if err != nil {
		return nil, false, fmt.Errorf("malformed event record: %w", err)
	}

	return ev, true, nil
}

func truncateRecord(s string) string {
	if len(s) <= 120 {
		return s
	}

	return s[:120] + "..."
}
