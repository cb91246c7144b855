package search

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-assistant-be/pkg/embedding"
	"ai-assistant-be/pkg/store"
)

// stubEmbedder scores each chunk by how many times a keyword appears in it,
// making the nearest-chunk choice predictable without a real model.
type stubEmbedder struct {
	keyword string
	err     error
}

func (s *stubEmbedder) Generate(_ context.Context, text string, _ string) (*embedding.EmbeddingResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: s.embed(text)},
	}, nil
}

func (s *stubEmbedder) GenerateBatch(_ context.Context, texts []string, _ string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = s.embed(text)
	}
	return vectors, nil
}

func (s *stubEmbedder) embed(text string) []float32 {
	return []float32{float32(strings.Count(strings.ToLower(text), s.keyword)), 1}
}

type mapPageCache struct {
	mu    sync.Mutex
	pages map[string]string
}

func newMapPageCache() *mapPageCache {
	return &mapPageCache{pages: map[string]string{}}
}

func (c *mapPageCache) Get(_ context.Context, url string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	text, ok := c.pages[url]
	return text, ok
}

func (c *mapPageCache) Set(_ context.Context, url string, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[url] = text
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func pageHTML(body string) string {
	return "<html><head><title>t</title><script>var x=1;</script></head><body><nav>menu</nav><p>" + body + "</p><footer>contact</footer></body></html>"
}

func longFiller(n int) string {
	var sb strings.Builder
	for sb.Len() < n {
		sb.WriteString("general commentary about unrelated topics and filler prose. ")
	}
	return sb.String()
}

func TestWebUnitPicksBestChunk(t *testing.T) {
	body := longFiller(300) + " The walrus population recovered sharply after 2015, walrus counts tripled. " + longFiller(300)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, pageHTML(body))
	}))
	defer server.Close()

	unit := NewWebUnit(&stubEmbedder{keyword: "walrus"}, nil, testLogger(), DefaultUnitConfig())
	snippet := unit.Process(context.Background(), store.RetrievalCandidate{Link: server.URL}, []float32{1, 0})

	require.NotNil(t, snippet)
	assert.Contains(t, snippet.Text, "walrus")
	assert.Greater(t, snippet.Score, 0.0)
}

func TestWebUnitSkipsFetchWhenTextPresent(t *testing.T) {
	// No server at all: a fetch attempt would fail, proving Text short-circuits it.
	unit := NewWebUnit(&stubEmbedder{keyword: "walrus"}, nil, testLogger(), DefaultUnitConfig())

	candidate := store.RetrievalCandidate{
		Link: "http://127.0.0.1:1/unreachable",
		Text: longFiller(260) + " walrus herds migrate north in summer.",
	}
	snippet := unit.Process(context.Background(), candidate, []float32{1, 0})

	require.NotNil(t, snippet)
}

func TestWebUnitDropsBelowNoiseFloor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, pageHTML("toothin"))
	}))
	defer server.Close()

	unit := NewWebUnit(&stubEmbedder{keyword: "walrus"}, nil, testLogger(), DefaultUnitConfig())
	snippet := unit.Process(context.Background(), store.RetrievalCandidate{Link: server.URL}, []float32{1, 0})

	assert.Nil(t, snippet)
}

func TestWebUnitDeadlineIsolatesSlowPage(t *testing.T) {
	slowDone := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-slowDone
		fmt.Fprint(w, pageHTML(longFiller(400)))
	}))
	defer func() { close(slowDone); slow.Close() }()

	fast := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, pageHTML(longFiller(300)+" walrus facts. "+longFiller(100)))
	}))
	defer fast.Close()

	cfg := DefaultUnitConfig()
	cfg.FetchTimeout = 150 * time.Millisecond
	unit := NewWebUnit(&stubEmbedder{keyword: "walrus"}, nil, testLogger(), cfg)

	start := time.Now()
	slowSnippet := unit.Process(context.Background(), store.RetrievalCandidate{Link: slow.URL}, []float32{1, 0})
	elapsed := time.Since(start)

	assert.Nil(t, slowSnippet)
	assert.Less(t, elapsed, time.Second, "slow page must be abandoned at the deadline, not awaited")

	fastSnippet := unit.Process(context.Background(), store.RetrievalCandidate{Link: fast.URL}, []float32{1, 0})
	require.NotNil(t, fastSnippet)
}

func TestWebUnitDropsOnEmbedFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, pageHTML(longFiller(400)))
	}))
	defer server.Close()

	unit := NewWebUnit(&stubEmbedder{keyword: "walrus", err: fmt.Errorf("model offline")}, nil, testLogger(), DefaultUnitConfig())
	snippet := unit.Process(context.Background(), store.RetrievalCandidate{Link: server.URL}, []float32{1, 0})

	assert.Nil(t, snippet)
}

func TestWebUnitUsesPageCache(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		fmt.Fprint(w, pageHTML(longFiller(400)))
	}))
	defer server.Close()

	cache := newMapPageCache()
	unit := NewWebUnit(&stubEmbedder{keyword: "walrus"}, cache, testLogger(), DefaultUnitConfig())

	candidate := store.RetrievalCandidate{Link: server.URL}
	require.NotNil(t, unit.Process(context.Background(), candidate, []float32{1, 0}))
	require.NotNil(t, unit.Process(context.Background(), candidate, []float32{1, 0}))

	assert.Equal(t, 1, hits)
}

func TestExtractTextStripsChrome(t *testing.T) {
	text, err := extractText(pageHTML("actual   article\n\ntext"))
	require.NoError(t, err)

	assert.Contains(t, text, "actual article text")
	assert.NotContains(t, text, "var x=1")
	assert.NotContains(t, text, "menu")
	assert.NotContains(t, text, "contact")
}
