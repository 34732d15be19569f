// Package ingestion runs the two-step "add course, generate strategy"
// workflow.
//
// The workflow is a saga with one compensation gap: when the course was
// registered but strategy generation fails, the course stays registered and
// the caller gets a *domain.PartialFailureError carrying its id. The next
// dashboard load shows the course without a strategy.
package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/athena-learn/athena-web/internal/domain"
	"github.com/athena-learn/athena-web/internal/platform/backend"
	"github.com/athena-learn/athena-web/internal/platform/logger"
	"github.com/athena-learn/athena-web/internal/redact"
	"github.com/athena-learn/athena-web/internal/service"
	"github.com/athena-learn/athena-web/internal/service/dashboard"
	"github.com/athena-learn/athena-web/internal/service/guard"
)

var courseURLPattern = regexp.MustCompile(`stepik\.org/course/(\d+)`)

// Guard is the access check and forced logout used by the workflow.
type Guard interface {
	Check(ctx context.Context, key string) guard.Decision
	ForceLogout(ctx context.Context, key string)
}

// Resolver re-resolves the dashboard after a successful ingestion.
type Resolver interface {
	Resolve(ctx context.Context, key string) (dashboard.Outcome, error)
}

// Result is the outcome of a successful ingestion. RefreshErr is set when the
// course and strategy were created but the follow-up dashboard resolve
// failed; the ingestion itself stands.
type Result struct {
	Course     domain.Course
	Strategy   domain.Strategy
	Dashboard  dashboard.Outcome
	RefreshErr error
}

// Workflow ingests courses. At most one ingestion runs per user.
type Workflow struct {
	api      backend.API
	guard    Guard
	resolver Resolver
	logger   *slog.Logger

	mu       sync.Mutex
	inFlight map[int64]struct{}
}

// NewWorkflow creates a Workflow.
func NewWorkflow(api backend.API, g Guard, r Resolver, log *slog.Logger) *Workflow {
	if log == nil {
		log = slog.Default()
	}
	return &Workflow{
		api:      api,
		guard:    g,
		resolver: r,
		logger:   log.With(slog.String("component", "course_ingestion")),
		inFlight: make(map[int64]struct{}),
	}
}

// ValidateCourseURL checks that raw is an http(s) link to a course page.
func ValidateCourseURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.NewValidationError("stepik_url", "course link is required")
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return domain.NewValidationError("stepik_url", "course link must be an http(s) URL")
	}
	if !courseURLPattern.MatchString(u.Host + u.Path) {
		return domain.NewValidationError("stepik_url", "link must point to stepik.org/course/<id>")
	}
	return nil
}

// Ingest registers the course behind stepikURL, generates a strategy for it
// and re-resolves the dashboard. Calls run strictly in sequence; a 401 at
// any step forces a logout and stops the workflow.
func (w *Workflow) Ingest(ctx context.Context, key, stepikURL string) (Result, error) {
	decision := w.guard.Check(ctx, key)
	if !decision.Authenticated() {
		return Result{}, domain.ErrAuth
	}
	sess := decision.Session
	log := logger.FromContextOrDefault(ctx, w.logger).With(slog.Int64("user_id", sess.UserID))

	if err := ValidateCourseURL(stepikURL); err != nil {
		return Result{}, err
	}
	stepikURL = strings.TrimSpace(stepikURL)

	if !w.acquire(sess.UserID) {
		return Result{}, domain.ErrIngestionInFlight
	}
	defer w.release(sess.UserID)

	course, err := w.api.RegisterCourse(ctx, sess.AccessToken, stepikURL)
	if err != nil {
		return Result{}, w.fail(ctx, key, log, "register course", err)
	}
	log = log.With(slog.Int64("course_id", course.ID))
	log.Info("course registered")

	strategy, err := w.api.GenerateStrategy(ctx, sess.AccessToken, sess.UserID, course.ID)
	if err != nil {
		if errors.Is(err, domain.ErrAuth) {
			w.guard.ForceLogout(ctx, key)
			return Result{}, domain.ErrAuth
		}
		log.Warn("strategy generation failed; course stays registered",
			slog.String("error", redact.Error(err)))
		return Result{}, &domain.PartialFailureError{
			CourseID: course.ID,
			Err:      service.ClassifyRemote("generate strategy", err),
		}
	}
	log.Info("strategy generated", slog.Int64("strategy_id", strategy.ID))

	res := Result{Course: course, Strategy: strategy}
	res.Dashboard, res.RefreshErr = w.resolver.Resolve(ctx, key)
	if res.RefreshErr != nil {
		log.Warn("dashboard refresh after ingestion failed",
			slog.String("error", redact.Error(res.RefreshErr)))
	}
	return res, nil
}

func (w *Workflow) fail(ctx context.Context, key string, log *slog.Logger, op string, err error) error {
	classified := service.ClassifyRemote(op, err)
	if errors.Is(classified, domain.ErrAuth) {
		w.guard.ForceLogout(ctx, key)
		return classified
	}
	log.Warn(op+" failed", slog.String("error", redact.Error(err)))
	return classified
}

func (w *Workflow) acquire(userID int64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, busy := w.inFlight[userID]; busy {
		return false
	}
	w.inFlight[userID] = struct{}{}
	return true
}

func (w *Workflow) release(userID int64) {
	w.mu.Lock()
	delete(w.inFlight, userID)
	w.mu.Unlock()
}
