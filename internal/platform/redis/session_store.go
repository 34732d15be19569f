package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/athena-learn/athena-web/internal/domain"
	"github.com/athena-learn/athena-web/internal/store"
)

const keyPrefix = "athena:session:"

// SessionStore implements store.SessionStore on Redis hashes.
type SessionStore struct {
	rdb goredis.UniversalClient
	ttl time.Duration
}

var _ store.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a store. A non-positive ttl keeps hashes until cleared.
func NewSessionStore(rdb goredis.UniversalClient, ttl time.Duration) *SessionStore {
	return &SessionStore{rdb: rdb, ttl: ttl}
}

func hashKey(browserKey string) string {
	return keyPrefix + browserKey
}

// Get implements store.SessionStore.
func (s *SessionStore) Get(ctx context.Context, key string) (domain.Session, error) {
	fields, err := s.rdb.HGetAll(ctx, hashKey(key)).Result()
	if err != nil {
		return domain.Session{}, store.NewStoreError("session", "get", "hgetall failed", mapError(err))
	}
	return store.DecodeFields(fields)
}

// Set implements store.SessionStore. The hash is replaced atomically.
func (s *SessionStore) Set(ctx context.Context, key string, sess domain.Session) error {
	if strings.TrimSpace(key) == "" {
		return store.NewStoreError("session", "set", "empty browser key", store.ErrInvalidEntity)
	}
	if err := sess.Validate(); err != nil {
		return store.NewStoreError("session", "set", "incomplete session", store.ErrInvalidEntity)
	}

	hk := hashKey(key)
	values := make([]any, 0, 2*len(domain.SessionKeys))
	for k, v := range sess.Fields() {
		values = append(values, k, v)
	}

	_, err := s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, hk)
		pipe.HSet(ctx, hk, values...)
		if s.ttl > 0 {
			pipe.Expire(ctx, hk, s.ttl)
		}
		return nil
	})
	if err != nil {
		return store.NewStoreError("session", "set", "write failed", mapError(err))
	}
	return nil
}

// Clear implements store.SessionStore.
func (s *SessionStore) Clear(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, hashKey(key)).Err(); err != nil {
		return store.NewStoreError("session", "clear", "del failed", mapError(err))
	}
	return nil
}

func mapError(err error) error {
	if errors.Is(err, goredis.Nil) {
		return fmt.Errorf("%w: %w", store.ErrNotFound, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", store.ErrUnavailable, err)
}
