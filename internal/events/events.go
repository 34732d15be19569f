package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session event types.
const (
	TypeSessionSet     = "session.set"
	TypeSessionCleared = "session.cleared"
)

// SessionEvent reports a change to the session stored for one browser.
type SessionEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is TypeSessionSet or TypeSessionCleared
	Type string `json:"type"`

	// BrowserKey identifies the browser whose session changed
	BrowserKey string `json:"browser_key"`

	// UserID is the user the session belonged to, zero when unknown
	UserID int64 `json:"user_id"`

	// Reason says why a session was cleared (logout, unauthorized, expired)
	Reason string `json:"reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// NewSessionEvent creates a SessionEvent with a fresh id.
func NewSessionEvent(eventType, browserKey string, userID int64, reason string) *SessionEvent {
	return &SessionEvent{
		ID:         uuid.New(),
		Type:       eventType,
		BrowserKey: browserKey,
		UserID:     userID,
		Reason:     reason,
		CreatedAt:  time.Now(),
	}
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	HandleEvent(ctx context.Context, event *SessionEvent) error
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(ctx context.Context, event *SessionEvent) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *SessionEvent) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *SessionEvent) error
}
