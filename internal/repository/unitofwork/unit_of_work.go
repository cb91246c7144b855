package unitofwork

import (
	"context"

	"ai-assistant-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ThreadRepository() contract.ThreadRepository
	TurnRepository() contract.TurnRepository
	MemoryEmbeddingRepository() contract.MemoryEmbeddingRepository
}
