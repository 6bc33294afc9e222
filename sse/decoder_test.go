package sse

import (
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agui/core"
)

func TestDecoder_SingleRecord(t *testing.T) {
	d := NewDecoder()

	events, err := d.Feed([]byte("data: {\"type\":\"RUN_STARTED\",\"threadId\":\"t1\",\"runId\":\"r1\"}\n\n"))
	require.NoError(t, err)
	require.Len(t, events, 1)

	started, ok := events[0].(*core.RunStartedEvent)
	require.True(t, ok)
	assert.Equal(t, "r1", started.RunID)

	require.NoError(t, d.Flush())
}

func TestDecoder_PartialRecordAcrossChunks(t *testing.T) {
	record := "data: {\"type\":\"TEXT_MESSAGE_CONTENT\",\"messageId\":\"m1\",\"delta\":\"Hello\"}\n\n"

	d := NewDecoder()

	events, err := d.Feed([]byte(record[:17]))
	require.NoError(t, err)
	assert.Empty(t, events)

	events, err = d.Feed([]byte(record[17:]))
	require.NoError(t, err)
	require.Len(t, events, 1)

	content, ok := events[0].(*core.TextMessageContentEvent)
	require.True(t, ok)
	assert.Equal(t, "Hello", content.Delta)
}

func TestDecoder_CRLFAndComments(t *testing.T) {
	stream := ": heartbeat\r\n\r\n" +
		"event: message\r\ndata: {\"type\":\"RUN_STARTED\",\"threadId\":\"t1\",\"runId\":\"r1\"}\r\n\r\n" +
		"data: {\"type\":\"RUN_FINISHED\",\"threadId\":\"t1\",\"runId\":\"r1\"}\r\n\r\n"

	d := NewDecoder()

	events, err := d.Feed([]byte(stream))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, core.EventTypeRunStarted, events[0].Type())
	assert.Equal(t, core.EventTypeRunFinished, events[1].Type())
}

func TestDecoder_MultiLineData(t *testing.T) {
	// Multi-line data payloads are joined with '\n' per the event-stream
	// format; JSON tolerates the interior newline as whitespace.
	stream := "data: {\"type\":\"RUN_STARTED\",\ndata:  \"threadId\":\"t1\",\"runId\":\"r1\"}\n\n"

	d := NewDecoder()

	events, err := d.Feed([]byte(stream))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, core.EventTypeRunStarted, events[0].Type())
}

func TestDecoder_ParseFailureIsFatal(t *testing.T) {
	d := NewDecoder()

	_, err := d.Feed([]byte("data: {not json}\n\n"))
	require.ErrorContains(t, err, "malformed event record")

	// Poisoned: even well-formed input is refused afterwards.
	_, err2 := d.Feed([]byte("data: {\"type\":\"RUN_STARTED\",\"threadId\":\"t\",\"runId\":\"r\"}\n\n"))
	assert.Equal(t, err, err2)
}

func TestDecoder_FlushReportsTruncatedRecord(t *testing.T) {
	d := NewDecoder()

	_, err := d.Feed([]byte("data: {\"type\":\"RUN_STARTED\""))
	require.NoError(t, err)

	assert.ErrorContains(t, d.Flush(), "incomplete record")
}

func TestDecoder_IgnoresDatalessRecords(t *testing.T) {
	d := NewDecoder()

	events, err := d.Feed([]byte("event: ping\n\nid: 7\n\n"))
	require.NoError(t, err)
	assert.Empty(t, events)
}

// TestDecoder_ChunkingInvariance verifies that for any event sequence and
// any chunk split of its serialized stream, the decoder reconstructs the
// identical sequence as when fed a single chunk.
func TestDecoder_ChunkingInvariance(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("chunk boundaries never change the event sequence", prop.ForAll(
		func(deltas []string, splits []int) bool {
			stream := buildStream(deltas)

			want, err := decodeAll(NewDecoder(), [][]byte{stream})
			if err != nil {
				return false
			}

			got, err := decodeAll(NewDecoder(), splitStream(stream, splits))
			if err != nil {
				return false
			}

			return reflect.DeepEqual(want, got)
		},
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.IntRange(1, 64)),
	))

	properties.TestingRun(t)
}

// buildStream serializes a run carrying one content event per delta.
func buildStream(deltas []string) []byte {
	var sb strings.Builder

	write := func(ev core.Event) {
		data, err := core.MarshalEvent(ev)
		if err != nil {
			panic(err)
		}
		sb.WriteString("data: ")
		sb.Write(data)
		sb.WriteString("\n\n")
	}

	write(core.NewRunStartedEvent("t1", "r1"))
	write(core.NewTextMessageStartEvent("m1", core.RoleAssistant))
	for _, delta := range deltas {
		if delta == "" {
			continue
		}
		write(core.NewTextMessageContentEvent("m1", delta))
	}
	write(core.NewTextMessageEndEvent("m1"))
	write(core.NewRunFinishedEvent("t1", "r1"))

	return []byte(sb.String())
}

// splitStream cuts the stream at successive offsets taken from sizes,
// cycling through them until the stream is exhausted.
func splitStream(stream []byte, sizes []int) [][]byte {
	if len(sizes) == 0 {
		return [][]byte{stream}
	}

	var chunks [][]byte
	for i := 0; len(stream) > 0; i++ {
		n := sizes[i%len(sizes)]
		if n > len(stream) {
			n = len(stream)
		}
		chunks = append(chunks, stream[:n])
		stream = stream[n:]
	}

	return chunks
}

func decodeAll(d *Decoder, chunks [][]byte) ([]core.Event, error) {
	var events []core.Event

	for _, chunk := range chunks {
		evs, err := d.Feed(chunk)
		if err != nil {
			return nil, err
		}
		events = append(events, evs...)
	}

	if err := d.Flush(); err != nil {
		return nil, err
	}

	return events, nil
}
