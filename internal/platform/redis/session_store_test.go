package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athena-learn/athena-web/internal/domain"
	"github.com/athena-learn/athena-web/internal/store"
)

func testSession() domain.Session {
	return domain.Session{
		AccessToken:  "access",
		RefreshToken: "refresh",
		UserID:       7,
		DisplayName:  "ada",
		Email:        "ada@example.com",
	}
}

// unreachableClient points at a closed port so every command fails fast.
func unreachableClient(t *testing.T) *goredis.Client {
	t.Helper()
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestHashKey(t *testing.T) {
	assert.Equal(t, "athena:session:abc", hashKey("abc"))
}

func TestMapError(t *testing.T) {
	assert.ErrorIs(t, mapError(goredis.Nil), store.ErrNotFound)
	assert.ErrorIs(t, mapError(errors.New("dial tcp: refused")), store.ErrUnavailable)
	assert.ErrorIs(t, mapError(context.Canceled), context.Canceled)
	assert.NotErrorIs(t, mapError(context.Canceled), store.ErrUnavailable)
}

func TestSetRejectsPartialSessionWithoutContactingRedis(t *testing.T) {
	s := NewSessionStore(unreachableClient(t), time.Hour)

	partial := testSession()
	partial.UserID = 0

	err := s.Set(context.Background(), "browser-1", partial)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestUnreachableRedisIsUnavailable(t *testing.T) {
	s := NewSessionStore(unreachableClient(t), time.Hour)
	ctx := context.Background()

	_, err := s.Get(ctx, "browser-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrUnavailable)

	assert.ErrorIs(t, s.Set(ctx, "browser-1", testSession()), store.ErrUnavailable)
	assert.ErrorIs(t, s.Clear(ctx, "browser-1"), store.ErrUnavailable)
}
