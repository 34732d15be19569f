// Package session is the single entry point to the browser session area.
//
// Service wraps a store.SessionStore: reads never fail (store failures and
// corrupt records read as "no session" and are logged), and every change is
// announced through an events.EventEmitter so components holding per-user
// state can drop it.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/athena-learn/athena-web/internal/domain"
	"github.com/athena-learn/athena-web/internal/events"
	"github.com/athena-learn/athena-web/internal/platform/logger"
	"github.com/athena-learn/athena-web/internal/redact"
	"github.com/athena-learn/athena-web/internal/store"
)

// Reasons recorded on session.cleared events.
const (
	ReasonLogout       = "logout"
	ReasonUnauthorized = "unauthorized"
	ReasonExpired      = "expired"
	ReasonCorrupt      = "corrupt"
)

// Service reads and writes browser sessions.
type Service struct {
	store   store.SessionStore
	emitter events.EventEmitter
	logger  *slog.Logger
}

// NewService creates a Service. emitter may be nil.
func NewService(st store.SessionStore, emitter events.EventEmitter, log *slog.Logger) (*Service, error) {
	if st == nil {
		return nil, errors.New("session store cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		store:   st,
		emitter: emitter,
		logger:  log.With(slog.String("component", "session_service")),
	}, nil
}

// Get returns the session for key. Absent, partial and unreadable sessions
// all report ok == false.
func (s *Service) Get(ctx context.Context, key string) (domain.Session, bool) {
	if key == "" {
		return domain.Session{}, false
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	sess, err := s.store.Get(ctx, key)
	switch {
	case err == nil:
		return sess, true
	case store.IsNotFoundError(err):
		return domain.Session{}, false
	case errors.Is(err, store.ErrCorruptSession):
		log.Warn("discarding corrupt session record")
		s.clear(ctx, key, 0, ReasonCorrupt)
		return domain.Session{}, false
	default:
		log.Error("failed to read session; treating as absent",
			slog.String("error", redact.Error(err)))
		return domain.Session{}, false
	}
}

// Set stores a complete session for key. Partial sessions are rejected and
// nothing is stored.
func (s *Service) Set(ctx context.Context, key string, sess domain.Session) error {
	if key == "" {
		return fmt.Errorf("%w: empty browser key", domain.ErrInvalidSession)
	}
	if err := sess.Validate(); err != nil {
		return err
	}

	if err := s.store.Set(ctx, key, sess); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to store session",
			slog.String("error", redact.Error(err)))
		return fmt.Errorf("failed to store session: %w", err)
	}

	s.emit(ctx, events.NewSessionEvent(events.TypeSessionSet, key, sess.UserID, ""))
	return nil
}

// Clear removes the session for key and announces it. It never fails; a
// store error is logged.
func (s *Service) Clear(ctx context.Context, key, reason string) {
	if key == "" {
		return
	}
	var userID int64
	if sess, err := s.store.Get(ctx, key); err == nil {
		userID = sess.UserID
	}
	s.clear(ctx, key, userID, reason)
}

func (s *Service) clear(ctx context.Context, key string, userID int64, reason string) {
	if err := s.store.Clear(ctx, key); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to clear session",
			slog.String("reason", reason),
			slog.String("error", redact.Error(err)))
	}
	s.emit(ctx, events.NewSessionEvent(events.TypeSessionCleared, key, userID, reason))
}

func (s *Service) emit(ctx context.Context, event *events.SessionEvent) {
	if s.emitter == nil {
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("session event handler failed",
			slog.String("event_type", event.Type),
			slog.String("error", err.Error()))
	}
}
