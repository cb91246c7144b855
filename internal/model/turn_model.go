package model

import (
	"time"

	"github.com/google/uuid"
)

type Turn struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ThreadId       uuid.UUID `gorm:"type:uuid;not null;index"`
	Query          string    `gorm:"type:text;not null"`
	Reply          string    `gorm:"type:text"`
	Sources        string    `gorm:"type:text"` // JSON-encoded source records
	CompletionTime *float64  `gorm:"column:completion_time"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (Turn) TableName() string {
	return "turns"
}
