package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athena-learn/athena-web/internal/api/shared"
	"github.com/athena-learn/athena-web/internal/domain"
	"github.com/athena-learn/athena-web/internal/platform/logger"
	"github.com/athena-learn/athena-web/internal/service/guard"
)

type guardFunc func(ctx context.Context, key string) guard.Decision

func (f guardFunc) Check(ctx context.Context, key string) guard.Decision { return f(ctx, key) }

func TestTraceMiddleware(t *testing.T) {
	var traceID string
	var hasLogger bool
	h := NewTraceMiddleware(nil)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
		hasLogger = logger.FromContext(r.Context()) != slog.Default()
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, traceID, 32)
	assert.True(t, hasLogger)
}

func TestSessionCookie(t *testing.T) {
	c := SessionCookie{Name: "athena_session", MaxAge: time.Hour}

	var seen string
	h := c.Handler(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen, _ = shared.GetBrowserKey(r.Context())
	}))

	t.Run("mints a key", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "athena_session", cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
		assert.Equal(t, 3600, cookies[0].MaxAge)
		assert.Equal(t, cookies[0].Value, seen)
		_, err := uuid.Parse(seen)
		assert.NoError(t, err)
	})

	t.Run("reuses a valid key", func(t *testing.T) {
		key := uuid.NewString()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "athena_session", Value: key})
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		assert.Equal(t, key, seen)
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("replaces a malformed key", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "athena_session", Value: "../../etc"})
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		assert.NotEqual(t, "../../etc", seen)
		assert.Len(t, w.Result().Cookies(), 1)
	})

	t.Run("expire", func(t *testing.T) {
		w := httptest.NewRecorder()
		c.Expire(w)
		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, -1, cookies[0].MaxAge)
	})
}

func TestRequireSession(t *testing.T) {
	sess := domain.Session{AccessToken: "a", RefreshToken: "r", UserID: 7, DisplayName: "ada", Email: "a@example.com"}

	t.Run("denied", func(t *testing.T) {
		called := false
		g := guardFunc(func(context.Context, string) guard.Decision {
			return guard.Decision{State: guard.StateUnauthenticated, Redirect: guard.RedirectLogin}
		})
		h := NewAuthMiddleware(g).RequireSession(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			called = true
		}))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		var body shared.RedirectResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, shared.RedirectResponse{State: "unauthenticated", Redirect: "/login"}, body)
	})

	t.Run("allowed", func(t *testing.T) {
		g := guardFunc(func(_ context.Context, key string) guard.Decision {
			assert.Equal(t, "k", key)
			return guard.Decision{State: guard.StateAuthenticated, Session: sess}
		})
		var got domain.Session
		h := NewAuthMiddleware(g).RequireSession(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			got, _ = shared.GetSession(r.Context())
		}))

		r := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
		r = r.WithContext(shared.WithBrowserKey(r.Context(), "k"))
		h.ServeHTTP(httptest.NewRecorder(), r)
		assert.Equal(t, sess, got)
	})
}
