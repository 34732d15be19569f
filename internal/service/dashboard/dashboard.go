// Package dashboard performs the full re-resolution behind the dashboard
// view: guard, then profile and recommendations in parallel, then derived
// gamification metrics.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/athena-learn/athena-web/internal/domain"
	"github.com/athena-learn/athena-web/internal/domain/gamification"
	"github.com/athena-learn/athena-web/internal/events"
	"github.com/athena-learn/athena-web/internal/platform/logger"
	"github.com/athena-learn/athena-web/internal/redact"
	"github.com/athena-learn/athena-web/internal/service/guard"
	"github.com/athena-learn/athena-web/internal/service/profile"
)

// State is the kind of outcome a resolve produced.
type State string

// Resolve outcomes.
const (
	StateRedirectLogin      State = "redirect_login"
	StateRedirectOnboarding State = "redirect_onboarding"
	StateReady              State = "ready"
)

// RedirectOnboarding is where users without a learning style are sent.
const RedirectOnboarding = "/onboarding"

// Guard is the access check the resolver runs first.
type Guard interface {
	Check(ctx context.Context, key string) guard.Decision
	ForceLogout(ctx context.Context, key string)
}

// ProfileLoader loads the session user's profile.
type ProfileLoader interface {
	LoadProfile(ctx context.Context, sess domain.Session) (profile.Result, error)
}

// RecommendationLoader loads the reconciled recommendations.
type RecommendationLoader interface {
	LoadRecommendations(ctx context.Context, sess domain.Session) (domain.Recommendations, error)
}

// Outcome is the result of a resolve. Dashboard is set only when State is
// StateReady.
type Outcome struct {
	State     State             `json:"state"`
	Redirect  string            `json:"redirect,omitempty"`
	Dashboard *domain.Dashboard `json:"dashboard,omitempty"`
}

type inflight struct {
	generation uint64
	cancel     context.CancelFunc
}

// Resolver builds dashboards. It keeps one in-flight resolve per user; a
// newer resolve cancels the older one, whose result is reported as
// domain.ErrStale.
type Resolver struct {
	guard   Guard
	profile ProfileLoader
	recs    RecommendationLoader
	params  *gamification.Params
	logger  *slog.Logger

	mu          sync.Mutex
	generations map[int64]uint64
	inflight    map[int64]inflight
}

var _ events.EventHandler = (*Resolver)(nil)

// NewResolver creates a Resolver.
func NewResolver(g Guard, p ProfileLoader, r RecommendationLoader, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{
		guard:       g,
		profile:     p,
		recs:        r,
		params:      gamification.NewDefaultParams(),
		logger:      log.With(slog.String("component", "dashboard_resolver")),
		generations: make(map[int64]uint64),
		inflight:    make(map[int64]inflight),
	}
}

// Resolve produces the dashboard outcome for a browser key.
func (r *Resolver) Resolve(ctx context.Context, key string) (Outcome, error) {
	decision := r.guard.Check(ctx, key)
	if !decision.Authenticated() {
		return Outcome{State: StateRedirectLogin, Redirect: decision.Redirect}, nil
	}
	sess := decision.Session
	log := logger.FromContextOrDefault(ctx, r.logger).With(slog.Int64("user_id", sess.UserID))

	ctx, generation := r.begin(ctx, sess.UserID)
	defer r.end(sess.UserID, generation)

	// Only a 401 cancels the sibling request. Other failures are kept per
	// branch so the profile outcome is decided before recommendations count.
	var (
		profileRes profile.Result
		recs       domain.Recommendations
		profileErr error
		recsErr    error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		profileRes, profileErr = r.profile.LoadProfile(gctx, sess)
		return authOnly(profileErr)
	})
	g.Go(func() error {
		recs, recsErr = r.recs.LoadRecommendations(gctx, sess)
		return authOnly(recsErr)
	})
	authErr := g.Wait()

	if !r.current(sess.UserID, generation) {
		log.Debug("discarding superseded dashboard resolve")
		return Outcome{}, domain.ErrStale
	}

	if authErr != nil {
		r.guard.ForceLogout(ctx, key)
		return Outcome{State: StateRedirectLogin, Redirect: guard.RedirectLogin}, nil
	}
	if profileErr != nil {
		log.Warn("dashboard profile load failed", slog.String("error", redact.Error(profileErr)))
		return Outcome{}, profileErr
	}
	if profileRes.NeedsOnboarding {
		if recsErr != nil {
			log.Debug("ignoring recommendations failure for user without profile",
				slog.String("error", redact.Error(recsErr)))
		}
		return Outcome{State: StateRedirectOnboarding, Redirect: RedirectOnboarding}, nil
	}
	if recsErr != nil {
		log.Warn("dashboard recommendations load failed", slog.String("error", redact.Error(recsErr)))
		return Outcome{}, recsErr
	}

	return Outcome{State: StateReady, Dashboard: r.build(*profileRes.Profile, recs)}, nil
}

func authOnly(err error) error {
	if errors.Is(err, domain.ErrAuth) {
		return err
	}
	return nil
}

// HandleEvent drops per-user in-flight state when a session is cleared, so a
// resolve that outlives its session never reports a result.
func (r *Resolver) HandleEvent(_ context.Context, event *events.SessionEvent) error {
	if event == nil || event.Type != events.TypeSessionCleared || event.UserID == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.inflight[event.UserID]; ok {
		f.cancel()
		delete(r.inflight, event.UserID)
	}
	r.generations[event.UserID]++
	return nil
}

func (r *Resolver) build(p domain.Profile, recs domain.Recommendations) *domain.Dashboard {
	d := &domain.Dashboard{
		Profile:        p,
		Courses:        recs.Courses,
		Strategies:     recs.Strategies,
		ActiveStrategy: recs.Active(),
		Gamification:   gamification.DeriveWithParams(recs.Strategies, r.params),
	}
	if d.Courses == nil {
		d.Courses = []domain.Course{}
	}
	if d.Strategies == nil {
		d.Strategies = []domain.Strategy{}
	}
	switch {
	case d.ActiveStrategy != nil && d.ActiveStrategy.Summary != "":
		d.Summary = d.ActiveStrategy.Summary
	case p.StrategySummary != nil:
		d.Summary = *p.StrategySummary
	}
	return d
}

func (r *Resolver) begin(ctx context.Context, userID int64) (context.Context, uint64) {
	ctx, cancel := context.WithCancel(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.inflight[userID]; ok {
		prev.cancel()
	}
	r.generations[userID]++
	gen := r.generations[userID]
	r.inflight[userID] = inflight{generation: gen, cancel: cancel}
	return ctx, gen
}

func (r *Resolver) end(userID int64, generation uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.inflight[userID]; ok && f.generation == generation {
		f.cancel()
		delete(r.inflight, userID)
	}
}

func (r *Resolver) current(userID int64, generation uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generations[userID] == generation
}
