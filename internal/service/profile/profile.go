// Package profile resolves a user's profile, or decides that the user still
// has to go through onboarding.
package profile

import (
	"context"
	"errors"
	"log/slog"

	"github.com/athena-learn/athena-web/internal/domain"
	"github.com/athena-learn/athena-web/internal/platform/backend"
	"github.com/athena-learn/athena-web/internal/platform/logger"
	"github.com/athena-learn/athena-web/internal/redact"
	"github.com/athena-learn/athena-web/internal/service"
)

// Result is the outcome of a profile load. When NeedsOnboarding is true the
// caller redirects to onboarding; Profile may still hold a partial record.
type Result struct {
	Profile         *domain.Profile
	NeedsOnboarding bool
}

// Service loads profiles from the backend.
type Service struct {
	api    backend.API
	logger *slog.Logger
}

// NewService creates a profile Service.
func NewService(api backend.API, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{api: api, logger: log.With(slog.String("component", "profile_service"))}
}

// LoadProfile fetches the session user's profile.
//
// A 404 or a profile without a learning style is not an error: the result
// asks for onboarding. A 401 returns domain.ErrAuth. Network and server
// failures return a *domain.LoadError; nothing is retried.
func (s *Service) LoadProfile(ctx context.Context, sess domain.Session) (Result, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.Int64("user_id", sess.UserID))

	p, err := s.api.GetProfile(ctx, sess.AccessToken, sess.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Debug("no profile yet; onboarding required")
			return Result{NeedsOnboarding: true}, nil
		}
		classified := service.ClassifyRemote("profile", err)
		if !errors.Is(classified, domain.ErrAuth) {
			log.Warn("failed to load profile", slog.String("error", redact.Error(err)))
		}
		return Result{}, classified
	}

	return Result{Profile: p, NeedsOnboarding: p.NeedsOnboarding()}, nil
}
