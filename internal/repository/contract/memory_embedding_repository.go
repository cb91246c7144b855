package contract

import (
	"context"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredMemoryEmbedding wraps MemoryEmbedding with its similarity score
type ScoredMemoryEmbedding struct {
	Embedding  *entity.MemoryEmbedding
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type MemoryEmbeddingRepository interface {
	Create(ctx context.Context, embedding *entity.MemoryEmbedding) error
	CreateBulk(ctx context.Context, embeddings []*entity.MemoryEmbedding) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByTurnId(ctx context.Context, turnId uuid.UUID) error
	DeleteByThreadId(ctx context.Context, threadId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.MemoryEmbedding, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.MemoryEmbedding, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilarWithScore returns embeddings with their similarity scores, filtered by threshold
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, userId uuid.UUID, threshold float64) ([]*ScoredMemoryEmbedding, error)
}
