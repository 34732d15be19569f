// Package onboarding drives the questionnaire that creates a user's profile.
package onboarding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/athena-learn/athena-web/internal/domain"
	"github.com/athena-learn/athena-web/internal/events"
	"github.com/athena-learn/athena-web/internal/platform/backend"
	"github.com/athena-learn/athena-web/internal/platform/logger"
	"github.com/athena-learn/athena-web/internal/redact"
	"github.com/athena-learn/athena-web/internal/service"
	"github.com/athena-learn/athena-web/internal/service/guard"
	"github.com/athena-learn/athena-web/internal/service/profile"
)

// State is a browser's position in the questionnaire.
type State string

// Flow states. A failed submission returns to answering on retry.
const (
	StateIdle       State = "idle"
	StateLoading    State = "loading"
	StateAnswering  State = "answering"
	StateSubmitting State = "submitting"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// RedirectOnboarding is the questionnaire view.
const RedirectOnboarding = "/onboarding"

// ErrSubmitInProgress rejects a second submission while one is running for
// the same browser.
var ErrSubmitInProgress = errors.New("answers are already being submitted")

// Guard is the access check and forced logout used by the flow.
type Guard interface {
	Check(ctx context.Context, key string) guard.Decision
	ForceLogout(ctx context.Context, key string)
}

// ProfileLoader reloads the profile after submission.
type ProfileLoader interface {
	LoadProfile(ctx context.Context, sess domain.Session) (profile.Result, error)
}

// Flow implements the onboarding state machine for every browser.
type Flow struct {
	api      backend.API
	guard    Guard
	profiles ProfileLoader
	logger   *slog.Logger

	questions singleflight.Group

	mu     sync.Mutex
	states map[string]State
}

var _ events.EventHandler = (*Flow)(nil)

// NewFlow creates a Flow.
func NewFlow(api backend.API, g Guard, profiles ProfileLoader, log *slog.Logger) *Flow {
	if log == nil {
		log = slog.Default()
	}
	return &Flow{
		api:      api,
		guard:    g,
		profiles: profiles,
		logger:   log.With(slog.String("component", "onboarding_flow")),
		states:   make(map[string]State),
	}
}

// State returns the current state for a browser key.
func (f *Flow) State(key string) State {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.states[key]; ok {
		return s
	}
	return StateIdle
}

// LoadQuestions fetches the public questionnaire. Concurrent loads share a
// single backend call.
func (f *Flow) LoadQuestions(ctx context.Context) ([]domain.OnboardingQuestion, error) {
	// The shared call must not fail for every waiter when the first caller
	// goes away; the backend client bounds it with its own timeout.
	shared := context.WithoutCancel(ctx)
	v, err, _ := f.questions.Do("questions", func() (interface{}, error) {
		return f.api.OnboardingQuestions(shared)
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, f.logger).Warn("failed to load onboarding questions",
			slog.String("error", redact.Error(err)))
		return nil, service.ClassifyRemote("onboarding questions", err)
	}
	questions, _ := v.([]domain.OnboardingQuestion)
	if questions == nil {
		questions = []domain.OnboardingQuestion{}
	}
	return questions, nil
}

// Start begins the questionnaire for a signed-in browser: it loads the
// questions and moves to answering, or to failed when the load fails.
func (f *Flow) Start(ctx context.Context, key string) ([]domain.OnboardingQuestion, error) {
	if !f.guard.Check(ctx, key).Authenticated() {
		f.reset(key)
		return nil, domain.ErrAuth
	}

	f.transition(key, StateLoading)
	questions, err := f.LoadQuestions(ctx)
	if err != nil {
		f.transition(key, StateFailed)
		return nil, err
	}
	f.transition(key, StateAnswering)
	return questions, nil
}

// Submit sends the answer set verbatim; partial sets are valid. On success
// the profile is reloaded to decide where the user goes next.
func (f *Flow) Submit(ctx context.Context, key string, answers domain.AnswerSet) (domain.OnboardingResult, error) {
	decision := f.guard.Check(ctx, key)
	if !decision.Authenticated() {
		f.reset(key)
		return domain.OnboardingResult{}, domain.ErrAuth
	}
	sess := decision.Session
	log := logger.FromContextOrDefault(ctx, f.logger).With(slog.Int64("user_id", sess.UserID))

	if !f.beginSubmit(key) {
		return domain.OnboardingResult{}, ErrSubmitInProgress
	}

	if answers == nil {
		answers = domain.AnswerSet{}
	}
	res, err := f.api.SubmitAnswers(ctx, sess.AccessToken, answers)
	if err != nil {
		if errors.Is(err, domain.ErrAuth) {
			f.reset(key)
			f.guard.ForceLogout(ctx, key)
			return domain.OnboardingResult{}, domain.ErrAuth
		}
		f.transition(key, StateFailed)
		log.Warn("failed to submit onboarding answers", slog.String("error", redact.Error(err)))
		return domain.OnboardingResult{}, service.ClassifyRemote("submit answers", err)
	}

	out := domain.OnboardingResult{
		Profile:         res.Profile,
		StrategySummary: res.StrategySummary,
	}

	reloaded, err := f.profiles.LoadProfile(ctx, sess)
	switch {
	case err == nil:
		if reloaded.Profile != nil {
			out.Profile = reloaded.Profile
		}
		out.Next = nextView(sess.UserID, reloaded.NeedsOnboarding)
	case errors.Is(err, domain.ErrAuth):
		f.reset(key)
		f.guard.ForceLogout(ctx, key)
		return domain.OnboardingResult{}, domain.ErrAuth
	default:
		log.Warn("profile reload after onboarding failed", slog.String("error", redact.Error(err)))
		out.Next = nextView(sess.UserID, out.Profile != nil && out.Profile.NeedsOnboarding())
	}

	f.transition(key, StateCompleted)
	log.Info("onboarding submitted", slog.Int("answers", len(answers)), slog.String("next", out.Next))
	return out, nil
}

// HandleEvent forgets a browser's progress when its session is cleared.
func (f *Flow) HandleEvent(_ context.Context, event *events.SessionEvent) error {
	if event != nil && event.Type == events.TypeSessionCleared {
		f.reset(event.BrowserKey)
	}
	return nil
}

func nextView(userID int64, needsOnboarding bool) string {
	if needsOnboarding {
		return RedirectOnboarding
	}
	return fmt.Sprintf("/dashboard/%d", userID)
}

func (f *Flow) beginSubmit(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.states[key] == StateSubmitting {
		return false
	}
	f.states[key] = StateSubmitting
	return true
}

func (f *Flow) transition(key string, s State) {
	f.mu.Lock()
	f.states[key] = s
	f.mu.Unlock()
}

func (f *Flow) reset(key string) {
	f.mu.Lock()
	delete(f.states, key)
	f.mu.Unlock()
}
