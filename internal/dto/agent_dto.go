package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionResponse struct {
	Id        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

type AskRequest struct {
	Question string `json:"question" validate:"required,max=4000"`
}

type CitationDTO struct {
	Source  string `json:"source"`
	Excerpt string `json:"excerpt"`
}

type AskResponse struct {
	SessionId      uuid.UUID     `json:"session_id"`
	TurnId         uuid.UUID     `json:"turn_id"`
	Route          string        `json:"route"`
	Answer         string        `json:"answer"`
	RelevantTables []string      `json:"relevant_tables,omitempty"`
	Query          string        `json:"query,omitempty"`
	Result         string        `json:"result,omitempty"`
	Citations      []CitationDTO `json:"citations,omitempty"`
	DurationMs     int64         `json:"duration_ms"`
}

type HistoryResponse struct {
	SessionId uuid.UUID `json:"session_id"`
	Entries   []string  `json:"entries"`
}

type ColumnDTO struct {
	Name     string `json:"name"`
	DataType string `json:"data_type,omitempty"`
	Comment  string `json:"comment,omitempty"`
}

type TableDTO struct {
	Name     string      `json:"name"`
	Comment  string      `json:"comment,omitempty"`
	External bool        `json:"external,omitempty"`
	Columns  []ColumnDTO `json:"columns"`
}

type CatalogResponse struct {
	Comment string     `json:"comment,omitempty"`
	Tables  []TableDTO `json:"tables"`
}

type TurnResponse struct {
	Id             uuid.UUID     `json:"id"`
	Question       string        `json:"question"`
	Route          string        `json:"route"`
	RelevantTables []string      `json:"relevant_tables,omitempty"`
	Query          string        `json:"query,omitempty"`
	Answer         string        `json:"answer"`
	Citations      []CitationDTO `json:"citations,omitempty"`
	Error          string        `json:"error,omitempty"`
	DurationMs     int64         `json:"duration_ms"`
	CreatedAt      time.Time     `json:"created_at"`
}

// PublishTurnMessage is the in-process bus payload for a finished turn.
type PublishTurnMessage struct {
	TurnId         uuid.UUID     `json:"turn_id"`
	SessionId      uuid.UUID     `json:"session_id"`
	Question       string        `json:"question"`
	Route          string        `json:"route"`
	RelevantTables []string      `json:"relevant_tables"`
	Query          string        `json:"query"`
	Result         string        `json:"result"`
	Answer         string        `json:"answer"`
	Citations      []CitationDTO `json:"citations"`
	Error          string        `json:"error,omitempty"`
	DurationMs     int64         `json:"duration_ms"`
	CreatedAt      time.Time     `json:"created_at"`
}

type IngestDocumentRequest struct {
	Source  string `json:"source" validate:"required,max=512"`
	Content string `json:"content" validate:"required"`
}

type IngestDocumentResponse struct {
	Source string `json:"source"`
	Chunks int    `json:"chunks"`
}
