package dto

import "github.com/google/uuid"

// ContextMessage is one prior exchange replayed for LLM context.
type ContextMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

type AskStreamRequest struct {
	Message            string           `json:"message" validate:"required"`
	Context            []ContextMessage `json:"context,omitempty" validate:"max=20,dive"`
	EnabledSourceTypes []string         `json:"enabled_source_types,omitempty"`
	LiveWebEnabled     bool             `json:"live_web_enabled"`
}

// PublishEmbedTurnMessage asks the consumer to embed a persisted turn
// into the memory store.
type PublishEmbedTurnMessage struct {
	TurnId uuid.UUID `json:"turn_id"`
}
