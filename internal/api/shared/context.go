package shared

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/athena-learn/athena-web/internal/domain"
)

// ContextKey is the key type for request context values.
type ContextKey string

// Context keys for request-scoped values.
const (
	// TraceIDKey is the key for the trace ID in the request context
	TraceIDKey ContextKey = "traceID"

	// BrowserKeyContextKey holds the opaque session cookie value
	BrowserKeyContextKey ContextKey = "browserKey"

	// SessionContextKey holds the authenticated domain.Session
	SessionContextKey ContextKey = "session"
)

// SetTraceID adds a fresh trace ID to the context.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, newTraceID())
}

// GetTraceID retrieves the trace ID from the context, or "".
func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(TraceIDKey).(string)
	return traceID
}

// WithBrowserKey stores the browser key in the context.
func WithBrowserKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, BrowserKeyContextKey, key)
}

// GetBrowserKey returns the browser key and whether one was set.
func GetBrowserKey(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(BrowserKeyContextKey).(string)
	return key, ok && key != ""
}

// WithSession stores the authenticated session in the context.
func WithSession(ctx context.Context, s domain.Session) context.Context {
	return context.WithValue(ctx, SessionContextKey, s)
}

// GetSession returns the authenticated session placed by the auth middleware.
func GetSession(ctx context.Context) (domain.Session, bool) {
	s, ok := ctx.Value(SessionContextKey).(domain.Session)
	return s, ok
}

// newTraceID returns 32 hex characters.
func newTraceID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
