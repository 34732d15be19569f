package mocks

import (
	"context"
	"sync"

	"github.com/athena-learn/athena-web/internal/domain"
)

// ClearCall records one Clear invocation.
type ClearCall struct {
	Key    string
	Reason string
}

// MockSessions is an in-memory stand-in for the session service.
type MockSessions struct {
	mu       sync.Mutex
	sessions map[string]domain.Session

	// SetErr, when non-nil, is returned by Set and nothing is stored.
	SetErr error

	Cleared []ClearCall
}

// NewMockSessions creates a MockSessions holding the given sessions.
func NewMockSessions(initial map[string]domain.Session) *MockSessions {
	m := &MockSessions{sessions: make(map[string]domain.Session)}
	for k, v := range initial {
		m.sessions[k] = v
	}
	return m
}

// Get returns the session for key.
func (m *MockSessions) Get(_ context.Context, key string) (domain.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[key]
	return s, ok
}

// Set stores a session after validating it.
func (m *MockSessions) Set(_ context.Context, key string, s domain.Session) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	if err := s.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	m.sessions[key] = s
	m.mu.Unlock()
	return nil
}

// Clear removes the session and records the call.
func (m *MockSessions) Clear(_ context.Context, key, reason string) {
	m.mu.Lock()
	delete(m.sessions, key)
	m.Cleared = append(m.Cleared, ClearCall{Key: key, Reason: reason})
	m.mu.Unlock()
}

// ClearCalls returns a copy of the recorded Clear calls.
func (m *MockSessions) ClearCalls() []ClearCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ClearCall, len(m.Cleared))
	copy(out, m.Cleared)
	return out
}
