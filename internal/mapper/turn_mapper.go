package mapper

import (
	"encoding/json"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/model"
	"ai-assistant-be/pkg/store"
)

type TurnMapper struct{}

func NewTurnMapper() *TurnMapper {
	return &TurnMapper{}
}

// ToEntity decodes the JSON sources column. An unreadable column yields a
// turn with no sources rather than a load failure.
func (m *TurnMapper) ToEntity(t *model.Turn) *entity.Turn {
	if t == nil {
		return nil
	}

	var sources []store.SourceRecord
	if t.Sources != "" {
		if err := json.Unmarshal([]byte(t.Sources), &sources); err != nil {
			sources = nil
		}
	}

	return &entity.Turn{
		Id:                    t.Id,
		ThreadId:              t.ThreadId,
		Query:                 t.Query,
		Reply:                 t.Reply,
		Sources:               sources,
		CompletionTimeSeconds: t.CompletionTime,
		CreatedAt:             t.CreatedAt,
	}
}

func (m *TurnMapper) ToModel(t *entity.Turn) *model.Turn {
	if t == nil {
		return nil
	}

	sources := ""
	if len(t.Sources) > 0 {
		if data, err := json.Marshal(t.Sources); err == nil {
			sources = string(data)
		}
	}

	return &model.Turn{
		Id:             t.Id,
		ThreadId:       t.ThreadId,
		Query:          t.Query,
		Reply:          t.Reply,
		Sources:        sources,
		CompletionTime: t.CompletionTimeSeconds,
		CreatedAt:      t.CreatedAt,
	}
}

func (m *TurnMapper) ToEntities(turns []*model.Turn) []*entity.Turn {
	entities := make([]*entity.Turn, len(turns))
	for i, t := range turns {
		entities[i] = m.ToEntity(t)
	}
	return entities
}
