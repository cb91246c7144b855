package search

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"ai-assistant-be/pkg/llm"
	"ai-assistant-be/pkg/store"
	"ai-assistant-be/pkg/websearch"
)

// MemorySearcher looks a pre-embedded query up in the per-user vector store.
type MemorySearcher interface {
	Search(ctx context.Context, userId uuid.UUID, queryVec []float32, limit int) ([]store.SourceRecord, error)
}

// IndexSearcher queries the external document/email index.
type IndexSearcher interface {
	Search(ctx context.Context, userId uuid.UUID, query string, types []string, limit int) ([]store.SourceRecord, error)
}

// WebSearcher is the external web-search API.
type WebSearcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]websearch.Result, error)
}

// Config encapsulates retrieval parameters.
type Config struct {
	TopK            int           // final ranked list size
	ProviderLimit   int           // per-provider candidate cap before merge
	WebResultCap    int           // live-web candidates entering the fetch unit
	ProviderTimeout time.Duration // per external call
}

func DefaultConfig() Config {
	return Config{
		TopK:            4,
		ProviderLimit:   10,
		WebResultCap:    6,
		ProviderTimeout: 10 * time.Second,
	}
}

// Options select which providers run for one retrieval pass.
type Options struct {
	EnabledSourceTypes []string
	LiveWebEnabled     bool
}

// Engine fans the query out to the enabled providers and merges their
// heterogeneous results. A provider that errors contributes zero results
// and a log line; it never fails the overall retrieval.
type Engine struct {
	memories    MemorySearcher
	index       IndexSearcher
	web         WebSearcher
	unit        *WebUnit
	llmProvider llm.LLMProvider
	logger      *log.Logger
	cfg         Config
}

func NewEngine(
	memories MemorySearcher,
	index IndexSearcher,
	web WebSearcher,
	unit *WebUnit,
	llmProvider llm.LLMProvider,
	logger *log.Logger,
	cfg Config,
) *Engine {
	if cfg.TopK <= 0 {
		cfg = DefaultConfig()
	}
	return &Engine{
		memories:    memories,
		index:       index,
		web:         web,
		unit:        unit,
		llmProvider: llmProvider,
		logger:      logger,
		cfg:         cfg,
	}
}

// Retrieve produces the ranked source list for one turn.
func (e *Engine) Retrieve(
	ctx context.Context,
	userId uuid.UUID,
	query string,
	queryVec []float32,
	opts Options,
) []store.SourceRecord {

	var lists [][]store.SourceRecord

	if e.memories != nil && len(queryVec) > 0 {
		lists = append(lists, e.searchMemories(ctx, userId, queryVec))
	}
	if e.index != nil {
		lists = append(lists, e.searchIndex(ctx, userId, query, opts.EnabledSourceTypes))
	}
	if opts.LiveWebEnabled && e.web != nil && e.unit != nil {
		lists = append(lists, e.searchLiveWeb(ctx, query, queryVec))
	}

	ranked := Merge(e.cfg.TopK, lists...)
	e.logger.Printf("[DEBUG] retrieval merged %d lists into %d sources", len(lists), len(ranked))
	return ranked
}

func (e *Engine) searchMemories(ctx context.Context, userId uuid.UUID, queryVec []float32) []store.SourceRecord {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.ProviderTimeout)
	defer cancel()

	results, err := e.memories.Search(ctx, userId, queryVec, e.cfg.ProviderLimit)
	if err != nil {
		e.logger.Printf("[WARN] memory search failed, contributing zero results: %v", err)
		return nil
	}
	return results
}

func (e *Engine) searchIndex(ctx context.Context, userId uuid.UUID, query string, types []string) []store.SourceRecord {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.ProviderTimeout)
	defer cancel()

	results, err := e.index.Search(ctx, userId, query, types, e.cfg.ProviderLimit)
	if err != nil {
		e.logger.Printf("[WARN] index search failed, contributing zero results: %v", err)
		return nil
	}
	return results
}

// searchLiveWeb rephrases the query for a search engine, collects capped
// candidates, and runs every candidate through the fetch-embed-rank unit
// concurrently. Only candidates that produced a snippet survive.
func (e *Engine) searchLiveWeb(ctx context.Context, query string, queryVec []float32) []store.SourceRecord {
	searchCtx, cancel := context.WithTimeout(ctx, e.cfg.ProviderTimeout)
	defer cancel()

	results, err := e.web.Search(searchCtx, e.rephraseQuery(ctx, query), e.cfg.WebResultCap)
	if err != nil {
		e.logger.Printf("[WARN] web search failed, contributing zero results: %v", err)
		return nil
	}
	if len(results) == 0 {
		return nil
	}

	snippets := make([]*RankedSnippet, len(results))
	g, groupCtx := errgroup.WithContext(ctx)
	for i, res := range results {
		g.Go(func() error {
			candidate := store.RetrievalCandidate{
				Title: res.Title,
				Link:  res.URL,
			}
			// Process never returns an error: a failed candidate is nil.
			snippets[i] = e.unit.Process(groupCtx, candidate, queryVec)
			return nil
		})
	}
	_ = g.Wait()

	var records []store.SourceRecord
	for i, snippet := range snippets {
		if snippet == nil {
			continue
		}
		records = append(records, store.SourceRecord{
			Title:      results[i].Title,
			URL:        results[i].URL,
			Type:       store.SourceTypeWeb,
			Content:    snippet.Text,
			Similarity: store.Score(snippet.Score),
		})
	}
	return records
}

// rephraseQuery turns a conversational question into search-engine terms.
// Best effort: on any failure the raw query goes out instead.
func (e *Engine) rephraseQuery(ctx context.Context, query string) string {
	if e.llmProvider == nil {
		return query
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	prompt := "Rewrite the following question as a short web search query. " +
		"Respond with the query only, no quotes, no commentary.\n\n" + query
	rephrased, err := e.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.0))
	rephrased = strings.TrimSpace(strings.Trim(strings.TrimSpace(rephrased), `"`))
	if err != nil || rephrased == "" {
		e.logger.Printf("[DEBUG] query rephrase failed, using raw query: %v", err)
		return query
	}
	return rephrased
}
