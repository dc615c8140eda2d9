package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"basegraph.app/helpdesk/internal/model"
	"github.com/redis/go-redis/v9"
)

type redisSessionStore struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisSessionStore keeps sessions as JSON values that Redis expires on their own.
func NewRedisSessionStore(client *redis.Client, keyPrefix string) SessionStore {
	return &redisSessionStore{
		client: client,
		prefix: keyPrefix,
		now:    time.Now,
	}
}

func (s *redisSessionStore) key(id int64) string {
	return fmt.Sprintf("%s:session:%d", s.prefix, id)
}

func (s *redisSessionStore) Create(ctx context.Context, session *model.Session) error {
	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("session %d already expired", session.ID)
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	if err := s.client.Set(ctx, s.key(session.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("storing session: %w", err)
	}
	return nil
}

func (s *redisSessionStore) GetValid(ctx context.Context, id int64) (*model.Session, error) {
	payload, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}

	var session model.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	if session.Expired(s.now()) {
		return nil, ErrNotFound
	}
	return &session, nil
}

func (s *redisSessionStore) Delete(ctx context.Context, id int64) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}
