package store

import (
	"context"

	"github.com/athena-learn/athena-web/internal/domain"
)

// SessionStore persists one session per browser key.
type SessionStore interface {
	// Get returns the session stored under key.
	// Returns ErrSessionNotFound if nothing is stored and ErrCorruptSession
	// if the stored fields do not form a complete session.
	Get(ctx context.Context, key string) (domain.Session, error)

	// Set replaces whatever is stored under key. Partial sessions are
	// rejected with ErrInvalidEntity; nothing is written.
	Set(ctx context.Context, key string, s domain.Session) error

	// Clear removes every field stored under key. Clearing an absent key is not an error.
	Clear(ctx context.Context, key string) error
}

// DecodeFields rebuilds a session from stored fields, mapping failures onto
// the store error taxonomy.
func DecodeFields(fields map[string]string) (domain.Session, error) {
	if len(fields) == 0 {
		return domain.Session{}, ErrSessionNotFound
	}
	s, err := domain.SessionFromFields(fields)
	if err != nil {
		return domain.Session{}, ErrCorruptSession
	}
	return s, nil
}
