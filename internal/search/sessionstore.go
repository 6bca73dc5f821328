// internal/search/sessionstore.go
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tradeboard/internal/store"
)

const sessionKeyPrefix = "search:session:"

// SessionStore persists session snapshots to redis so a stateless frontend
// can resume a "load more" flow on any instance. It stores per-client
// accumulation state only, never shared query results.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

// Save writes the session snapshot under the given id, refreshing the TTL.
func (s *SessionStore) Save(ctx context.Context, id string, sess *Session) error {
	data, err := json.Marshal(sess.Snapshot())
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", id, err)
	}
	if err := s.client.Set(ctx, sessionKey(id), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", id, err)
	}
	return nil
}

// Load rebuilds the session stored under id against the given store.
// A missing id yields store.ErrNotFound.
func (s *SessionStore) Load(ctx context.Context, id string, st store.Store, limits Limits) (*Session, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return RestoreSession(st, limits, snap), nil
}

// Delete removes a persisted session. Deleting a missing id is not an error.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}
