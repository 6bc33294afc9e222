package agui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agui/agent"
	"github.com/hupe1980/agui/core"
)

// newSSEServer serves one scripted run over a real HTTP connection, echoing
// the thread/run identifiers from the request body.
func newSSEServer(t *testing.T) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var input core.RunInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&input))

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)

		emit := func(ev core.Event) {
			data, err := core.MarshalEvent(ev)
			require.NoError(t, err)
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}

		emit(core.NewRunStartedEvent(input.ThreadID, input.RunID))
		emit(core.NewTextMessageStartEvent("m1", core.RoleAssistant))
		emit(core.NewTextMessageContentEvent("m1", "Hello, "))
		emit(core.NewTextMessageContentEvent("m1", "world!"))
		emit(core.NewTextMessageEndEvent("m1"))
		emit(core.NewStateSnapshotEvent(json.RawMessage(`{"greeted":true}`)))
		emit(core.NewRunFinishedEvent(input.ThreadID, input.RunID))
	}))
}

func TestRunSync_EndToEnd(t *testing.T) {
	server := newSSEServer(t)
	defer server.Close()

	a := NewAgent(server.URL, func(o *agent.Options) {
		o.InitialMessages = []core.Message{{ID: "m0", Role: core.RoleUser, Content: "Say hello"}}
	})

	final, err := RunSync(context.Background(), a, nil)
	require.NoError(t, err)

	require.Len(t, final.Messages, 2)
	assert.Equal(t, "Say hello", final.Messages[0].Content)
	assert.Equal(t, "Hello, world!", final.Messages[1].Content)
	assert.JSONEq(t, `{"greeted":true}`, string(final.State))

	// The run outcome is persisted for the next turn.
	assert.Len(t, a.Messages(), 2)
}

func TestRunSync_SecondTurnCarriesHistory(t *testing.T) {
	server := newSSEServer(t)
	defer server.Close()

	a := NewAgent(server.URL)

	_, err := RunSync(context.Background(), a, nil)
	require.NoError(t, err)

	final, err := RunSync(context.Background(), a, nil)
	require.NoError(t, err)

	// Each turn appends the streamed assistant message to the carried history.
	assert.Len(t, final.Messages, 2)
	assert.NotEmpty(t, a.ThreadID())
}

func TestRunSync_ServerErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such agent", http.StatusNotFound)
	}))
	defer server.Close()

	a := NewAgent(server.URL)

	_, err := RunSync(context.Background(), a, nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "status 404")
}
