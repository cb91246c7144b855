package entity

import (
	"time"

	"github.com/google/uuid"

	"ai-assistant-be/pkg/store"
)

// Turn is one finalized question-and-answer exchange. Turns are written
// exactly once, after the reply stream has closed; a streaming turn that
// errors out is never persisted.
type Turn struct {
	Id                    uuid.UUID `gorm:"type:uuid;primaryKey"`
	ThreadId              uuid.UUID `gorm:"type:uuid;index"`
	Query                 string
	Reply                 string
	Sources               []store.SourceRecord
	CompletionTimeSeconds *float64
	CreatedAt             time.Time
}
