package contract

import (
	"context"
	"errors"

	"ai-sqlagent-be/internal/entity"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionHistoryStore keeps conversations between turns. Get returns
// ErrSessionNotFound for unknown or expired sessions.
type SessionHistoryStore interface {
	Save(ctx context.Context, session *entity.Session) error
	Get(ctx context.Context, id uuid.UUID) (*entity.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
