package service

import (
	"context"

	"github.com/google/uuid"

	"ai-assistant-be/internal/repository/unitofwork"
	"ai-assistant-be/pkg/store"
)

// MemorySearchAdapter exposes the pgvector memory store to the retrieval
// engine as a scored provider.
type MemorySearchAdapter struct {
	uowFactory unitofwork.RepositoryFactory
	threshold  float64
}

func NewMemorySearchAdapter(uowFactory unitofwork.RepositoryFactory, threshold float64) *MemorySearchAdapter {
	return &MemorySearchAdapter{
		uowFactory: uowFactory,
		threshold:  threshold,
	}
}

func (a *MemorySearchAdapter) Search(ctx context.Context, userId uuid.UUID, queryVec []float32, limit int) ([]store.SourceRecord, error) {
	uow := a.uowFactory.NewUnitOfWork(ctx)

	scored, err := uow.MemoryEmbeddingRepository().SearchSimilarWithScore(ctx, queryVec, limit, userId, a.threshold)
	if err != nil {
		return nil, err
	}

	records := make([]store.SourceRecord, 0, len(scored))
	for _, s := range scored {
		if s.Embedding == nil {
			continue
		}
		records = append(records, store.SourceRecord{
			Title:      "Past conversation",
			Type:       store.SourceTypeMemory,
			Content:    s.Embedding.Document,
			Similarity: store.Score(s.Similarity),
		})
	}
	return records, nil
}
