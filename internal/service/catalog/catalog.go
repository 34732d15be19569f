// Package catalog serves the public course list.
package catalog

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/athena-learn/athena-web/internal/domain"
	"github.com/athena-learn/athena-web/internal/platform/backend"
	"github.com/athena-learn/athena-web/internal/platform/logger"
	"github.com/athena-learn/athena-web/internal/redact"
	"github.com/athena-learn/athena-web/internal/service"
)

// Catalog lists courses. Concurrent requests share one backend call.
type Catalog struct {
	api    backend.API
	group  singleflight.Group
	logger *slog.Logger
}

// New creates a Catalog.
func New(api backend.API, log *slog.Logger) *Catalog {
	if log == nil {
		log = slog.Default()
	}
	return &Catalog{api: api, logger: log.With(slog.String("component", "course_catalog"))}
}

// ListCourses returns every registered course in backend order.
func (c *Catalog) ListCourses(ctx context.Context) ([]domain.Course, error) {
	shared := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do("courses", func() (interface{}, error) {
		return c.api.ListCourses(shared)
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, c.logger).Warn("failed to list courses",
			slog.String("error", redact.Error(err)))
		return nil, service.ClassifyRemote("courses", err)
	}
	courses, _ := v.([]domain.Course)
	if courses == nil {
		courses = []domain.Course{}
	}
	return courses, nil
}
