package client

import (
	"context"
	"io"
	"log"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-assistant-be/internal/dto"
	"ai-assistant-be/pkg/frame"
)

type recordingFinalizer struct {
	mu    sync.Mutex
	calls []*dto.PersistTurnRequest
}

func (f *recordingFinalizer) PersistTurn(_ context.Context, _ uuid.UUID, req *dto.PersistTurnRequest) (*dto.PersistTurnResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	return &dto.PersistTurnResponse{Id: uuid.New()}, nil
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestSessionHappyPath(t *testing.T) {
	session := NewTurnSession("what changed in Q3", nil, quietLogger())

	state, _, _, _ := session.Snapshot()
	assert.Equal(t, StateAwaitingSources, state)

	session.OnSources([]frame.Source{{Title: "Q3 report", URL: "https://example.com/q3", Type: "document"}})
	session.OnTiming(1.2)
	session.OnChunk("Revenue ")
	session.OnChunk("grew 12%.")

	state, sources, reply, _ := session.Snapshot()
	assert.Equal(t, StateStreaming, state)
	require.Len(t, sources, 1)
	assert.Equal(t, "Revenue grew 12%.", reply)
	assert.InDelta(t, 1.2, session.SearchSeconds(), 1e-9)
}

func TestSessionFinalizesExactlyOnce(t *testing.T) {
	finalizer := &recordingFinalizer{}
	session := NewTurnSession("q", nil, quietLogger())
	threadId := uuid.New()

	session.OnSources(nil)
	session.OnChunk("answer")

	require.NoError(t, session.CloseStream(context.Background(), finalizer, threadId))
	require.NoError(t, session.CloseStream(context.Background(), finalizer, threadId))
	require.NoError(t, session.CloseStream(context.Background(), finalizer, threadId))

	require.Len(t, finalizer.calls, 1)
	assert.Equal(t, "q", finalizer.calls[0].Query)
	assert.Equal(t, "answer", finalizer.calls[0].Reply)
	require.NotNil(t, finalizer.calls[0].CompletionTimeSeconds)
	assert.GreaterOrEqual(t, *finalizer.calls[0].CompletionTimeSeconds, 0.0)
}

func TestSessionErroredTurnIsNotPersisted(t *testing.T) {
	finalizer := &recordingFinalizer{}
	session := NewTurnSession("q", nil, quietLogger())

	session.OnChunk("partial ")
	session.OnError("model fell over")

	state, _, reply, errMsg := session.Snapshot()
	assert.Equal(t, StateErrored, state)
	assert.Equal(t, "partial ", reply, "partial reply stays visible")
	assert.Equal(t, "model fell over", errMsg)

	require.NoError(t, session.CloseStream(context.Background(), finalizer, uuid.New()))
	assert.Empty(t, finalizer.calls)
}

func TestSessionIgnoresDuplicateSources(t *testing.T) {
	session := NewTurnSession("q", nil, quietLogger())

	session.OnSources([]frame.Source{{Title: "first"}})
	session.OnSources([]frame.Source{{Title: "second"}, {Title: "third"}})

	_, sources, _, _ := session.Snapshot()
	require.Len(t, sources, 1)
	assert.Equal(t, "first", sources[0].Title)
}

func TestSessionChunksAfterCloseAreDropped(t *testing.T) {
	session := NewTurnSession("q", nil, quietLogger())
	session.OnChunk("before")
	require.NoError(t, session.CloseStream(context.Background(), nil, uuid.New()))

	session.OnChunk(" after")

	_, _, reply, _ := session.Snapshot()
	assert.Equal(t, "before", reply)
}

// Drive a session through the decoder end to end: reply text must equal
// the concatenation of all chunk frames no matter how the bytes arrive.
func TestSessionThroughDecoder(t *testing.T) {
	updates := 0
	session := NewTurnSession("q", func() { updates++ }, quietLogger())
	dec := frame.NewDecoder(session, quietLogger())

	wire := `{"type":"sources","sources":[{"title":"a","url":"u","type":"web"}]}` + "\n" +
		`{"type":"timing","searchTimeSeconds":0.8}` + "\n" +
		`{"type":"chunk","text":"Hello "}` + "\n" +
		`{"type":"chunk","text":"world"}` + "\n"

	for _, b := range []byte(wire) {
		dec.Feed([]byte{b})
	}
	dec.Close()

	state, sources, reply, _ := session.Snapshot()
	assert.Equal(t, StateStreaming, state)
	require.Len(t, sources, 1)
	assert.Equal(t, "Hello world", reply)
	assert.Greater(t, updates, 0)
}
