package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AgentTurn struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey"`
	SessionId      uuid.UUID      `gorm:"type:uuid;not null;index"`
	Question       string         `gorm:"type:text;not null"`
	Route          string         `gorm:"type:varchar(8)"`
	RelevantTables datatypes.JSON `gorm:"type:jsonb"`
	Query          string         `gorm:"type:text"`
	Result         string         `gorm:"type:text"`
	Answer         string         `gorm:"type:text"`
	Citations      datatypes.JSON `gorm:"type:jsonb"`
	Error          string         `gorm:"type:text"`
	DurationMs     int64
	CreatedAt      time.Time `gorm:"autoCreateTime;index"`
}

func (AgentTurn) TableName() string {
	return "agent_turns"
}
