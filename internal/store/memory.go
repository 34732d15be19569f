package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/athena-learn/athena-web/internal/domain"
)

type memoryEntry struct {
	fields    map[string]string
	expiresAt time.Time
}

// MemorySessionStore keeps sessions in process memory. It is used for tests
// and single-instance development.
type MemorySessionStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

var _ SessionStore = (*MemorySessionStore)(nil)

// NewMemorySessionStore creates a store whose entries expire after ttl.
// A non-positive ttl keeps entries until cleared.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get implements SessionStore.
func (m *MemorySessionStore) Get(_ context.Context, key string) (domain.Session, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return domain.Session{}, ErrSessionNotFound
	}
	if !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return domain.Session{}, ErrSessionNotFound
	}
	return DecodeFields(entry.fields)
}

// Set implements SessionStore.
func (m *MemorySessionStore) Set(_ context.Context, key string, s domain.Session) error {
	if strings.TrimSpace(key) == "" {
		return NewStoreError("session", "set", "empty browser key", ErrInvalidEntity)
	}
	if err := s.Validate(); err != nil {
		return NewStoreError("session", "set", "incomplete session", ErrInvalidEntity)
	}

	entry := memoryEntry{fields: s.Fields()}
	if m.ttl > 0 {
		entry.expiresAt = m.now().Add(m.ttl)
	}

	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

// Clear implements SessionStore.
func (m *MemorySessionStore) Clear(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// putFields stores raw fields, bypassing validation. Tests use it to
// simulate records written by older clients.
func (m *MemorySessionStore) putFields(key string, fields map[string]string) {
	m.mu.Lock()
	m.entries[key] = memoryEntry{fields: fields}
	m.mu.Unlock()
}
