package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai-sqlagent-be/internal/entity"
	"ai-sqlagent-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "sqlagent:session:"

// SessionRepository stores sessions as JSON documents so several API
// instances can serve the same conversation.
type SessionRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionRepository(rdb *redis.Client, ttl time.Duration) contract.SessionHistoryStore {
	return &SessionRepository{rdb: rdb, ttl: ttl}
}

func key(id uuid.UUID) string {
	return keyPrefix + id.String()
}

func (r *SessionRepository) Save(ctx context.Context, session *entity.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return r.rdb.Set(ctx, key(session.Id), data, r.ttl).Err()
}

func (r *SessionRepository) Get(ctx context.Context, id uuid.UUID) (*entity.Session, error) {
	data, err := r.rdb.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, contract.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var session entity.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", id, err)
	}
	return &session, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.rdb.Del(ctx, key(id)).Err()
}
