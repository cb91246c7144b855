package dto

import (
	"time"

	"github.com/google/uuid"

	"ai-assistant-be/pkg/store"
)

type CreateThreadRequest struct {
	FirstMessage string `json:"first_message" validate:"required"`
}

type CreateThreadResponse struct {
	Id    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

type GetThreadsResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type GetTurnsResponse struct {
	Id                    uuid.UUID            `json:"id"`
	Query                 string               `json:"query"`
	Reply                 string               `json:"reply"`
	Sources               []store.SourceRecord `json:"sources,omitempty"`
	CompletionTimeSeconds *float64             `json:"completion_time_seconds,omitempty"`
	CreatedAt             time.Time            `json:"created_at"`
}

type PersistTurnRequest struct {
	Query                 string               `json:"query" validate:"required"`
	Reply                 string               `json:"reply" validate:"required"`
	Sources               []store.SourceRecord `json:"sources,omitempty"`
	CompletionTimeSeconds *float64             `json:"completion_time_seconds,omitempty"`
}

type PersistTurnResponse struct {
	Id uuid.UUID `json:"id"`
}
