// Package account owns the session lifecycle: it is the only code that
// creates a session (login, register) or replaces its tokens (refresh).
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/athena-learn/athena-web/internal/domain"
	"github.com/athena-learn/athena-web/internal/platform/backend"
	"github.com/athena-learn/athena-web/internal/platform/logger"
	"github.com/athena-learn/athena-web/internal/redact"
	"github.com/athena-learn/athena-web/internal/service"
	"github.com/athena-learn/athena-web/internal/session"
)

// ErrInvalidCredentials is returned when the backend rejects a login.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Sessions is the session area as seen by the account service.
type Sessions interface {
	Get(ctx context.Context, key string) (domain.Session, bool)
	Set(ctx context.Context, key string, s domain.Session) error
	Clear(ctx context.Context, key, reason string)
}

// Service implements login, registration, logout and token refresh.
type Service struct {
	api      backend.API
	sessions Sessions
	validate *validator.Validate
	logger   *slog.Logger
}

// NewService creates an account Service.
func NewService(api backend.API, sessions Sessions, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		api:      api,
		sessions: sessions,
		validate: validator.New(),
		logger:   log.With(slog.String("component", "account_service")),
	}
}

// Login authenticates with the backend and stores the new session under key.
func (s *Service) Login(ctx context.Context, key, username, password string) (domain.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.Session{}, domain.NewValidationError("username", "username is required")
	}
	if password == "" {
		return domain.Session{}, domain.NewValidationError("password", "password is required")
	}

	res, err := s.api.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, domain.ErrAuth) {
			return domain.Session{}, ErrInvalidCredentials
		}
		return domain.Session{}, s.remoteFailure(ctx, "login", err)
	}
	return s.establish(ctx, key, "login", res)
}

// Register creates an account and stores the new session under key.
func (s *Service) Register(ctx context.Context, key, username, email, password string) (domain.Session, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" {
		return domain.Session{}, domain.NewValidationError("username", "username is required")
	}
	if err := s.validate.Var(email, "required,email"); err != nil {
		return domain.Session{}, domain.NewValidationError("email", "a valid email address is required")
	}
	if password == "" {
		return domain.Session{}, domain.NewValidationError("password", "password is required")
	}

	res, err := s.api.Register(ctx, username, email, password)
	if err != nil {
		return domain.Session{}, s.remoteFailure(ctx, "register", err)
	}
	return s.establish(ctx, key, "register", res)
}

// Logout clears the session. It never fails.
func (s *Service) Logout(ctx context.Context, key string) {
	s.sessions.Clear(ctx, key, session.ReasonLogout)
}

// Refresh replaces the stored access token using the refresh token. A 401
// clears the session.
func (s *Service) Refresh(ctx context.Context, key string) (domain.Session, error) {
	sess, ok := s.sessions.Get(ctx, key)
	if !ok {
		return domain.Session{}, domain.ErrAuth
	}

	access, err := s.api.RefreshToken(ctx, sess.RefreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrAuth) {
			s.sessions.Clear(ctx, key, session.ReasonUnauthorized)
			return domain.Session{}, domain.ErrAuth
		}
		return domain.Session{}, s.remoteFailure(ctx, "refresh token", err)
	}

	sess.AccessToken = access
	if err := s.sessions.Set(ctx, key, sess); err != nil {
		return domain.Session{}, fmt.Errorf("failed to store refreshed session: %w", err)
	}
	return sess, nil
}

// establish stores the session only when every field came back.
func (s *Service) establish(ctx context.Context, key, op string, res backend.AuthResult) (domain.Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	sess, err := res.Session()
	if err != nil {
		log.Error("backend returned incomplete credentials", slog.String("operation", op))
		return domain.Session{}, domain.NewLoadError(op, fmt.Errorf("%w: incomplete credentials", domain.ErrServer))
	}
	if err := s.sessions.Set(ctx, key, sess); err != nil {
		log.Error("failed to store session", slog.String("operation", op), slog.String("error", redact.Error(err)))
		return domain.Session{}, fmt.Errorf("failed to store session: %w", err)
	}

	log.Info("session established", slog.String("operation", op), slog.Int64("user_id", sess.UserID))
	return sess, nil
}

func (s *Service) remoteFailure(ctx context.Context, op string, err error) error {
	classified := service.ClassifyRemote(op, err)
	var verr *domain.ValidationError
	if !errors.As(classified, &verr) {
		logger.FromContextOrDefault(ctx, s.logger).Warn(op+" failed", slog.String("error", redact.Error(err)))
	}
	return classified
}
