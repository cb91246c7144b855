package entity

import (
	"time"

	"github.com/google/uuid"
)

// MemoryEmbedding is one embedded chunk of a persisted turn, searchable
// as the "memory" retrieval provider.
type MemoryEmbedding struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Document       string
	EmbeddingValue []float32
	TurnId         uuid.UUID `gorm:"type:uuid;index"`
	UserId         uuid.UUID `gorm:"type:uuid;index"`
	ChunkIndex     int
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
