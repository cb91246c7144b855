package search

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"ai-assistant-be/pkg/embedding"
	"ai-assistant-be/pkg/store"
	"ai-assistant-be/pkg/utils"
)

// PageCache caches extracted page text keyed by URL. Nil-safe: the unit
// works without one.
type PageCache interface {
	Get(ctx context.Context, url string) (string, bool)
	Set(ctx context.Context, url string, text string)
}

// UnitConfig bounds one candidate's processing.
type UnitConfig struct {
	FetchTimeout  time.Duration // race deadline for the page fetch
	MinContentLen int           // extracted text shorter than this is noise
	ChunkSize     int           // characters per embedding chunk
}

func DefaultUnitConfig() UnitConfig {
	return UnitConfig{
		FetchTimeout:  1500 * time.Millisecond,
		MinContentLen: 250,
		ChunkSize:     200,
	}
}

// RankedSnippet is the best-matching chunk of one candidate.
type RankedSnippet struct {
	Text  string
	Score float64
}

// WebUnit turns a raw retrieval candidate into its single best-matching
// snippet: fetch under a deadline, strip markup, chunk, embed the chunks in
// one batch, keep the nearest chunk to the query. Every failure at any step
// is local to the candidate and surfaces as nil, never as an error: one dead
// page must not abort the batch.
type WebUnit struct {
	embedder embedding.EmbeddingProvider
	pages    PageCache
	client   *http.Client
	logger   *log.Logger
	cfg      UnitConfig
}

func NewWebUnit(embedder embedding.EmbeddingProvider, pages PageCache, logger *log.Logger, cfg UnitConfig) *WebUnit {
	if cfg.FetchTimeout <= 0 {
		cfg = DefaultUnitConfig()
	}
	return &WebUnit{
		embedder: embedder,
		pages:    pages,
		// The fetch goroutine outlives the race deadline; this timeout is
		// only a backstop so abandoned fetches eventually release sockets.
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
		cfg:    cfg,
	}
}

// Process returns the candidate's best snippet, or nil when the candidate
// is dropped (timeout, fetch/parse/embed failure, or too little content).
func (u *WebUnit) Process(ctx context.Context, candidate store.RetrievalCandidate, queryVec []float32) *RankedSnippet {
	text := candidate.Text
	if text == "" {
		fetched, ok := u.fetchWithDeadline(ctx, candidate.Link)
		if !ok {
			return nil
		}
		text = fetched
	}

	text = strings.TrimSpace(text)
	if len(text) < u.cfg.MinContentLen {
		u.logger.Printf("[DEBUG] candidate %s dropped: %d chars below noise floor", candidate.Link, len(text))
		return nil
	}

	chunks := utils.SplitText(text, u.cfg.ChunkSize, 0)
	if len(chunks) == 0 {
		return nil
	}

	vectors, err := u.embedder.GenerateBatch(ctx, chunks, embedding.TaskRetrievalDocument)
	if err != nil {
		u.logger.Printf("[WARN] candidate %s dropped: batch embed failed: %v", candidate.Link, err)
		return nil
	}

	chunk, score, ok := newMemoryIndex(chunks, vectors).Best(queryVec)
	if !ok {
		return nil
	}
	return &RankedSnippet{Text: chunk, Score: score}
}

// fetchWithDeadline races the page fetch against a timer. When the timer
// wins the fetch goroutine is abandoned, not cancelled: the buffered
// channel lets it finish and be garbage collected without blocking anyone.
func (u *WebUnit) fetchWithDeadline(ctx context.Context, link string) (string, bool) {
	if link == "" {
		return "", false
	}

	if u.pages != nil {
		if text, found := u.pages.Get(ctx, link); found {
			return text, true
		}
	}

	resultCh := make(chan string, 1)
	go func() {
		text, err := u.fetchText(link)
		if err != nil {
			u.logger.Printf("[DEBUG] fetch %s failed: %v", link, err)
			resultCh <- ""
			return
		}
		resultCh <- text
	}()

	timer := time.NewTimer(u.cfg.FetchTimeout)
	defer timer.Stop()

	select {
	case text := <-resultCh:
		if text == "" {
			return "", false
		}
		if u.pages != nil {
			u.pages.Set(ctx, link, text)
		}
		return text, true
	case <-timer.C:
		u.logger.Printf("[DEBUG] fetch %s dropped: deadline %s exceeded", link, u.cfg.FetchTimeout)
		return "", false
	case <-ctx.Done():
		return "", false
	}
}

func (u *WebUnit) fetchText(link string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, link, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := u.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", err
	}

	return extractText(string(body))
}

// Elements whose subtrees carry no answerable content.
var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"nav":      true,
	"header":   true,
	"footer":   true,
	"aside":    true,
	"iframe":   true,
	"svg":      true,
	"form":     true,
}

// extractText strips non-content markup and collapses the remaining text
// nodes into whitespace-normalized prose.
func extractText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				sb.WriteString(text)
				sb.WriteByte(' ')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(strings.Fields(sb.String()), " "), nil
}
