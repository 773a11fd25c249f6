package memory

import (
	"context"
	"time"

	"ai-sqlagent-be/internal/entity"
	"ai-sqlagent-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const defaultSessionTTL = 2 * time.Hour

// SessionRepository keeps sessions in process memory. Entries expire after
// the TTL of inactivity and are purged every ten minutes.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository(ttl time.Duration) contract.SessionHistoryStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionRepository{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

func (r *SessionRepository) Save(ctx context.Context, session *entity.Session) error {
	stored := *session
	stored.History = append([]string(nil), session.History...)
	r.cache.Set(session.Id.String(), &stored, cache.DefaultExpiration)
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	x, found := r.cache.Get(id.String())
	if !found {
		return nil, contract.ErrSessionNotFound
	}
	stored := x.(*entity.Session)
	out := *stored
	out.History = append([]string(nil), stored.History...)
	return &out, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.cache.Delete(id.String())
	return nil
}
