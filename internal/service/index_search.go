package service

import (
	"context"

	"github.com/google/uuid"

	"ai-assistant-be/pkg/docindex"
	"ai-assistant-be/pkg/store"
)

// IndexSearchAdapter maps the external document/email index into the
// retrieval engine's provider shape. Index scores pass through as-is;
// a result the index didn't score stays unscored.
type IndexSearchAdapter struct {
	client *docindex.Client
}

func NewIndexSearchAdapter(client *docindex.Client) *IndexSearchAdapter {
	return &IndexSearchAdapter{client: client}
}

func (a *IndexSearchAdapter) Search(ctx context.Context, userId uuid.UUID, query string, types []string, limit int) ([]store.SourceRecord, error) {
	results, err := a.client.Search(ctx, userId.String(), query, types, limit)
	if err != nil {
		return nil, err
	}

	records := make([]store.SourceRecord, 0, len(results))
	for _, r := range results {
		records = append(records, store.SourceRecord{
			Title:       r.Title,
			URL:         r.URL,
			Type:        r.Type,
			Content:     r.Snippet,
			From:        r.From,
			TextRank:    r.TextRank,
			HybridScore: r.HybridScore,
		})
	}
	return records, nil
}
