package events

import (
	"time"

	"github.com/google/uuid"
)

const EventTypeTurnCompleted = "turn.completed"

// NewTurnCompletedEvent is emitted after a turn has been persisted, so
// downstream consumers (analytics, digests) can react without touching
// the request path.
func NewTurnCompletedEvent(turnId, threadId, userId uuid.UUID, sourceCount int, completionTimeSeconds *float64) Event {
	data := map[string]interface{}{
		"turn_id":      turnId.String(),
		"thread_id":    threadId.String(),
		"user_id":      userId.String(),
		"source_count": sourceCount,
	}
	if completionTimeSeconds != nil {
		data["completion_time_seconds"] = *completionTimeSeconds
	}
	return BaseEvent{
		Type:       EventTypeTurnCompleted,
		Data:       data,
		OccurredAt: time.Now(),
	}
}
