package entity

import (
	"time"

	"github.com/google/uuid"
)

type Citation struct {
	Source  string
	Excerpt string
}

// Turn is the audit record of one answered (or failed) question.
type Turn struct {
	Id             uuid.UUID
	SessionId      uuid.UUID
	Question       string
	Route          string
	RelevantTables []string
	Query          string
	Result         string
	Answer         string
	Citations      []Citation
	Error          string
	DurationMs     int64
	CreatedAt      time.Time
}
