package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionEvent(t *testing.T) {
	event := NewSessionEvent(TypeSessionCleared, "browser-1", 7, "unauthorized")

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, TypeSessionCleared, event.Type)
	assert.Equal(t, "browser-1", event.BrowserKey)
	assert.Equal(t, int64(7), event.UserID)
	assert.Equal(t, "unauthorized", event.Reason)
	assert.WithinDuration(t, time.Now(), event.CreatedAt, 2*time.Second)

	raw, err := json.Marshal(event)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"type":"session.cleared"`)
}

// MockEventHandler implements the EventHandler interface for testing
type MockEventHandler struct {
	HandledCount int
	LastEvent    *SessionEvent
	HandlerError error
}

func (h *MockEventHandler) HandleEvent(ctx context.Context, event *SessionEvent) error {
	h.HandledCount++
	h.LastEvent = event
	return h.HandlerError
}

func TestHandlerFunc(t *testing.T) {
	var got *SessionEvent
	h := HandlerFunc(func(_ context.Context, e *SessionEvent) error {
		got = e
		return nil
	})

	event := NewSessionEvent(TypeSessionSet, "browser-1", 7, "")
	require.NoError(t, h.HandleEvent(context.Background(), event))
	assert.Same(t, event, got)
}
