package service

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-assistant-be/internal/constant"
	"ai-assistant-be/internal/dto"
	"ai-assistant-be/pkg/embedding"
	"ai-assistant-be/pkg/frame"
	"ai-assistant-be/pkg/llm"
	"ai-assistant-be/pkg/rag/intent"
	"ai-assistant-be/pkg/rag/search"
)

// stubLLM answers Generate with a fixed intent classification and streams
// fixed deltas from ChatStream.
type stubLLM struct {
	intentJSON  string
	deltas      []string
	streamErr   error
	lastHistory []llm.Message
}

func (s *stubLLM) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	return "", nil
}

func (s *stubLLM) Generate(_ context.Context, _ string, _ ...llm.Option) (string, error) {
	return s.intentJSON, nil
}

func (s *stubLLM) ChatStream(_ context.Context, history []llm.Message, onDelta llm.StreamHandler, _ ...llm.Option) error {
	s.lastHistory = history
	for _, d := range s.deltas {
		if err := onDelta(d); err != nil {
			return err
		}
	}
	return s.streamErr
}

type stubQueryEmbedder struct{ err error }

func (s *stubQueryEmbedder) Generate(_ context.Context, _ string, _ string) (*embedding.EmbeddingResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{1, 0}},
	}, nil
}

func (s *stubQueryEmbedder) GenerateBatch(_ context.Context, texts []string, _ string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i := range texts {
		vecs[i] = []float32{1, 0}
	}
	return vecs, nil
}

// frameRecorder collects decoded frames in arrival order.
type frameRecorder struct {
	order   []string
	sources [][]frame.Source
	chunks  []string
	timings []float64
	errors  []string
}

func (r *frameRecorder) OnSources(s []frame.Source) {
	r.order = append(r.order, "sources")
	r.sources = append(r.sources, s)
}

func (r *frameRecorder) OnTiming(t float64) {
	r.order = append(r.order, "timing")
	r.timings = append(r.timings, t)
}

func (r *frameRecorder) OnChunk(text string) {
	r.order = append(r.order, "chunk")
	r.chunks = append(r.chunks, text)
}

func (r *frameRecorder) OnError(msg string) {
	r.order = append(r.order, "error")
	r.errors = append(r.errors, msg)
}

func discardLogger() *log.Logger { return log.New(io.Discard, "", 0) }

type noopZapLike struct{}

func (noopZapLike) Debug(string, string, map[string]interface{}) {}
func (noopZapLike) Info(string, string, map[string]interface{})  {}
func (noopZapLike) Warn(string, string, map[string]interface{})  {}
func (noopZapLike) Error(string, string, map[string]interface{}) {}
func (noopZapLike) Sync() error                                  { return nil }

func newAskServiceForTest(model *stubLLM) IAskService {
	classifier := intent.NewClassifier(model, discardLogger(), 0)
	engine := search.NewEngine(nil, nil, nil, nil, nil, discardLogger(), search.DefaultConfig())
	return NewAskService(classifier, engine, &stubQueryEmbedder{}, model, noopZapLike{})
}

func decodeStream(t *testing.T, raw []byte) *frameRecorder {
	t.Helper()
	rec := &frameRecorder{}
	dec := frame.NewDecoder(rec, discardLogger())
	dec.Feed(raw)
	dec.Close()
	return rec
}

func runStream(svc IAskService, req *dto.AskStreamRequest) []byte {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	svc.Stream(context.Background(), uuid.New(), req, w)
	w.Flush()
	return buf.Bytes()
}

func TestStreamFrameOrderForChatIntent(t *testing.T) {
	model := &stubLLM{
		intentJSON: `{"intent": "chat"}`,
		deltas:     []string{"Hello", " there"},
	}
	svc := newAskServiceForTest(model)

	rec := decodeStream(t, runStream(svc, &dto.AskStreamRequest{Message: "hi"}))

	require.GreaterOrEqual(t, len(rec.order), 3)
	assert.Equal(t, "sources", rec.order[0])
	assert.Equal(t, "timing", rec.order[1])
	assert.Equal(t, []string{"Hello", " there"}, rec.chunks)
	assert.Empty(t, rec.errors)

	// Chat intent runs no retrieval: empty sources, zero timing.
	require.Len(t, rec.sources, 1)
	assert.Empty(t, rec.sources[0])
	assert.Zero(t, rec.timings[0])
}

func TestStreamSearchIntentEmitsTimedSources(t *testing.T) {
	model := &stubLLM{
		intentJSON: `{"intent": "search"}`,
		deltas:     []string{"answer"},
	}
	svc := newAskServiceForTest(model)

	rec := decodeStream(t, runStream(svc, &dto.AskStreamRequest{Message: "what is in my docs"}))

	require.Len(t, rec.sources, 1)
	require.Len(t, rec.timings, 1)
	assert.GreaterOrEqual(t, rec.timings[0], 0.0)

	// The grounded system prompt reaches the model.
	require.NotEmpty(t, model.lastHistory)
	assert.Equal(t, constant.ChatMessageRoleSystem, model.lastHistory[0].Role)
	assert.Contains(t, model.lastHistory[0].Content, "<sources>")
}

func TestStreamUnsupportedIntentIsCanned(t *testing.T) {
	model := &stubLLM{
		intentJSON: `{"intent": "unsupported"}`,
		deltas:     []string{"should never stream"},
	}
	svc := newAskServiceForTest(model)

	rec := decodeStream(t, runStream(svc, &dto.AskStreamRequest{Message: "do something bad"}))

	require.Len(t, rec.chunks, 1)
	assert.Equal(t, constant.UnsupportedReplyV1, rec.chunks[0])
	assert.Nil(t, model.lastHistory, "no LLM chat call for refused requests")
}

func TestStreamLLMFailureEmitsErrorFrame(t *testing.T) {
	model := &stubLLM{
		intentJSON: `{"intent": "chat"}`,
		deltas:     []string{"partial"},
		streamErr:  fmt.Errorf("upstream hiccup"),
	}
	svc := newAskServiceForTest(model)

	rec := decodeStream(t, runStream(svc, &dto.AskStreamRequest{Message: "hi"}))

	assert.Equal(t, []string{"partial"}, rec.chunks)
	require.Len(t, rec.errors, 1)
	assert.Equal(t, "error", rec.order[len(rec.order)-1])
}

func TestStreamCarriesConversationContext(t *testing.T) {
	model := &stubLLM{
		intentJSON: `{"intent": "chat"}`,
		deltas:     []string{"ok"},
	}
	svc := newAskServiceForTest(model)

	runStream(svc, &dto.AskStreamRequest{
		Message: "and then?",
		Context: []dto.ContextMessage{
			{Role: "user", Content: "tell me a story"},
			{Role: "assistant", Content: "once upon a time"},
		},
	})

	require.Len(t, model.lastHistory, 4)
	assert.Equal(t, "tell me a story", model.lastHistory[1].Content)
	assert.Equal(t, "once upon a time", model.lastHistory[2].Content)
	assert.Equal(t, "and then?", model.lastHistory[3].Content)
}
