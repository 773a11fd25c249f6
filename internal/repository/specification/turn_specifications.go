package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BySessionID filters turns of one conversation.
type BySessionID struct {
	SessionID uuid.UUID
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

type ByRoute struct {
	Route string
}

func (s ByRoute) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("route = ?", s.Route)
}

// Failed keeps turns that aborted with an error.
type Failed struct{}

func (s Failed) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("error <> ''")
}

type BySource struct {
	Source string
}

func (s BySource) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("source = ?", s.Source)
}
