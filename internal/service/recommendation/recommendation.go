// Package recommendation reconciles the recommendation bundle with the
// per-user strategies endpoint into one ordered strategy list.
package recommendation

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

// Aggregator produces Recommendations for a session.
type Aggregator struct {
	api    backend.API
	logger *slog.Logger
}

// NewAggregator creates an Aggregator.
func NewAggregator(api backend.API, log *slog.Logger) *Aggregator {
	if log == nil {
		log = slog.Default()
	}
	return &Aggregator{api: api, logger: log.With(slog.String("component", "recommendation_aggregator"))}
}

// LoadRecommendations fetches the bundle and, only when the bundle carries no
// strategies field at all, the per-user strategies list. A present list is
// authoritative even when empty. The fallback runs strictly after the bundle
// and at most once; its failure degrades to an empty list, except for a 401,
// which returns domain.ErrAuth. Backend order is preserved.
func (a *Aggregator) LoadRecommendations(ctx context.Context, sess domain.Session) (domain.Recommendations, error) {
	log := logger.FromContextOrDefault(ctx, a.logger).With(slog.Int64("user_id", sess.UserID))

	bundle, err := a.api.GetRecommendations(ctx, sess.AccessToken, sess.UserID)
	if err != nil {
		classified := service.ClassifyRemote("recommendations", err)
		if !errors.Is(classified, domain.ErrAuth) {
			log.Warn("failed to load recommendations", slog.String("error", redact.Error(err)))
		}
		return domain.Recommendations{}, classified
	}

	recs := domain.Recommendations{
		ProfileSnapshot: bundle.ProfileSnapshot,
		Courses:         nonNilCourses(bundle.Courses),
		Strategies:      nonNilStrategies(bundle.Strategies),
	}
	if bundle.HasStrategies {
		return recs, nil
	}

	strategies, err := a.api.GetStrategies(ctx, sess.AccessToken, sess.UserID)
	switch {
	case err == nil:
		recs.Strategies = nonNilStrategies(strategies)
	case errors.Is(err, domain.ErrAuth):
		return domain.Recommendations{}, domain.ErrAuth
	case errors.Is(err, context.Canceled):
		return domain.Recommendations{}, err
	default:
		log.Warn("strategies fallback failed; showing courses without strategies",
			slog.String("error", redact.Error(err)))
		recs.Strategies = []domain.Strategy{}
	}
	return recs, nil
}

func nonNilCourses(c []domain.Course) []domain.Course {
	if c == nil {
		return []domain.Course{}
	}
	return c
}

func nonNilStrategies(s []domain.Strategy) []domain.Strategy {
	if s == nil {
		return []domain.Strategy{}
	}
	return s
}
