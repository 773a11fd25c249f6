package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session is a conversation; History is its carried-over record.
type Session struct {
	Id        uuid.UUID `json:"id"`
	History   []string  `json:"history"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
