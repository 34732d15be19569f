package ingestion

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athena-learn/athena-web/internal/domain"
	"github.com/athena-learn/athena-web/internal/mocks"
	"github.com/athena-learn/athena-web/internal/service/dashboard"
	"github.com/athena-learn/athena-web/internal/service/guard"
	"github.com/athena-learn/athena-web/internal/session"
)

const courseURL = "https://stepik.org/course/59426/syllabus"

var sess = domain.Session{AccessToken: "tok", RefreshToken: "r", UserID: 7, DisplayName: "ada", Email: "a@example.com"}

type resolverFunc func(ctx context.Context, key string) (dashboard.Outcome, error)

func (f resolverFunc) Resolve(ctx context.Context, key string) (dashboard.Outcome, error) {
	return f(ctx, key)
}

func readyResolver(calls *int) resolverFunc {
	return func(context.Context, string) (dashboard.Outcome, error) {
		*calls++
		return dashboard.Outcome{State: dashboard.StateReady, Dashboard: &domain.Dashboard{}}, nil
	}
}

func newWorkflow(api *mocks.MockBackend, sessions *mocks.MockSessions, r Resolver) *Workflow {
	return NewWorkflow(api, guard.New(sessions, nil), r, nil)
}

func signedIn() *mocks.MockSessions {
	return mocks.NewMockSessions(map[string]domain.Session{"k": sess})
}

func TestValidateCourseURL(t *testing.T) {
	valid := []string{
		"https://stepik.org/course/59426/syllabus",
		"http://stepik.org/course/58852/",
		"  https://www.stepik.org/course/1  ",
	}
	for _, u := range valid {
		assert.NoError(t, ValidateCourseURL(u), u)
	}

	invalid := []string{
		"",
		"stepik.org/course/1",
		"ftp://stepik.org/course/1",
		"https://stepik.org/lesson/1",
		"https://example.com/course/1",
		"https://stepik.org/course/abc",
	}
	for _, u := range invalid {
		err := ValidateCourseURL(u)
		var verr *domain.ValidationError
		assert.True(t, errors.As(err, &verr), u)
	}
}

func TestIngestSuccess(t *testing.T) {
	api := &mocks.MockBackend{
		RegisterCourseFn: func(_ context.Context, token, stepikURL string) (domain.Course, error) {
			assert.Equal(t, "tok", token)
			assert.Equal(t, courseURL, stepikURL)
			return domain.Course{ID: 42, Title: "Go"}, nil
		},
		GenerateStrategyFn: func(_ context.Context, token string, userID, courseID int64) (domain.Strategy, error) {
			assert.Equal(t, int64(7), userID)
			assert.Equal(t, int64(42), courseID)
			return domain.Strategy{ID: 5, Course: domain.Course{ID: 42}}, nil
		},
	}
	resolves := 0

	res, err := newWorkflow(api, signedIn(), readyResolver(&resolves)).Ingest(context.Background(), "k", courseURL)
	require.NoError(t, err)
	assert.Equal(t, int64(42), res.Course.ID)
	assert.Equal(t, int64(5), res.Strategy.ID)
	assert.Equal(t, dashboard.StateReady, res.Dashboard.State)
	assert.NoError(t, res.RefreshErr)
	assert.Equal(t, 1, resolves, "success triggers exactly one re-resolution")
	assert.Equal(t, []string{"RegisterCourse", "GenerateStrategy"}, api.Calls())
}

func TestIngestInvalidURLMakesNoCalls(t *testing.T) {
	api := &mocks.MockBackend{}
	_, err := newWorkflow(api, signedIn(), readyResolver(new(int))).Ingest(context.Background(), "k", "https://example.com")
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Empty(t, api.Calls())
}

func TestIngestWithoutSession(t *testing.T) {
	api := &mocks.MockBackend{}
	_, err := newWorkflow(api, mocks.NewMockSessions(nil), readyResolver(new(int))).Ingest(context.Background(), "k", courseURL)
	assert.ErrorIs(t, err, domain.ErrAuth)
	assert.Empty(t, api.Calls())
}

func TestIngestRegisterValidationErrorAborts(t *testing.T) {
	api := &mocks.MockBackend{
		RegisterCourseFn: func(context.Context, string, string) (domain.Course, error) {
			return domain.Course{}, domain.NewValidationError("", "Invalid Stepik URL format")
		},
	}
	resolves := 0

	_, err := newWorkflow(api, signedIn(), readyResolver(&resolves)).Ingest(context.Background(), "k", courseURL)
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Invalid Stepik URL format", verr.Message)
	assert.Equal(t, 0, api.CallCount("GenerateStrategy"))
	assert.Zero(t, resolves)
}

func TestIngestGenerationFailureIsPartial(t *testing.T) {
	api := &mocks.MockBackend{
		RegisterCourseFn: func(context.Context, string, string) (domain.Course, error) {
			return domain.Course{ID: 42}, nil
		},
		GenerateStrategyFn: func(context.Context, string, int64, int64) (domain.Strategy, error) {
			return domain.Strategy{}, fmt.Errorf("http 500: %w", domain.ErrServer)
		},
	}
	resolves := 0

	_, err := newWorkflow(api, signedIn(), readyResolver(&resolves)).Ingest(context.Background(), "k", courseURL)
	var partial *domain.PartialFailureError
	require.True(t, errors.As(err, &partial))
	assert.Equal(t, int64(42), partial.CourseID)
	assert.ErrorIs(t, err, domain.ErrServer)
	assert.Equal(t, []string{"RegisterCourse", "GenerateStrategy"}, api.Calls(), "no rollback call")
	assert.Zero(t, resolves)
}

func TestIngestUnauthorizedForcesLogout(t *testing.T) {
	t.Run("at registration", func(t *testing.T) {
		api := &mocks.MockBackend{
			RegisterCourseFn: func(context.Context, string, string) (domain.Course, error) {
				return domain.Course{}, domain.ErrAuth
			},
		}
		sessions := signedIn()
		_, err := newWorkflow(api, sessions, readyResolver(new(int))).Ingest(context.Background(), "k", courseURL)
		assert.ErrorIs(t, err, domain.ErrAuth)
		assert.Equal(t, 0, api.CallCount("GenerateStrategy"))
		assert.Equal(t, []mocks.ClearCall{{Key: "k", Reason: session.ReasonUnauthorized}}, sessions.ClearCalls())
	})

	t.Run("at generation", func(t *testing.T) {
		api := &mocks.MockBackend{
			RegisterCourseFn: func(context.Context, string, string) (domain.Course, error) {
				return domain.Course{ID: 1}, nil
			},
			GenerateStrategyFn: func(context.Context, string, int64, int64) (domain.Strategy, error) {
				return domain.Strategy{}, domain.ErrAuth
			},
		}
		sessions := signedIn()
		resolves := 0
		_, err := newWorkflow(api, sessions, readyResolver(&resolves)).Ingest(context.Background(), "k", courseURL)
		assert.ErrorIs(t, err, domain.ErrAuth)
		assert.Zero(t, resolves)
		assert.Len(t, sessions.ClearCalls(), 1)
	})
}

func TestIngestRefreshFailureDoesNotUndoIngestion(t *testing.T) {
	api := &mocks.MockBackend{
		RegisterCourseFn: func(context.Context, string, string) (domain.Course, error) {
			return domain.Course{ID: 1}, nil
		},
		GenerateStrategyFn: func(context.Context, string, int64, int64) (domain.Strategy, error) {
			return domain.Strategy{ID: 2}, nil
		},
	}
	failing := resolverFunc(func(context.Context, string) (dashboard.Outcome, error) {
		return dashboard.Outcome{}, domain.NewLoadError("recommendations", domain.ErrNetwork)
	})

	res, err := newWorkflow(api, signedIn(), failing).Ingest(context.Background(), "k", courseURL)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Strategy.ID)
	assert.ErrorIs(t, res.RefreshErr, domain.ErrNetwork)
}

func TestIngestRejectsConcurrentRunForSameUser(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	api := &mocks.MockBackend{
		RegisterCourseFn: func(context.Context, string, string) (domain.Course, error) {
			close(entered)
			<-release
			return domain.Course{ID: 1}, nil
		},
		GenerateStrategyFn: func(context.Context, string, int64, int64) (domain.Strategy, error) {
			return domain.Strategy{ID: 2}, nil
		},
	}
	w := newWorkflow(api, signedIn(), readyResolver(new(int)))

	done := make(chan error, 1)
	go func() {
		_, err := w.Ingest(context.Background(), "k", courseURL)
		done <- err
	}()

	<-entered
	_, err := w.Ingest(context.Background(), "k", courseURL)
	assert.ErrorIs(t, err, domain.ErrIngestionInFlight)

	close(release)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("first ingestion never finished")
	}

	assert.Equal(t, 1, api.CallCount("RegisterCourse"))

	// The slot is released once the first run finishes.
	api.RegisterCourseFn = func(context.Context, string, string) (domain.Course, error) {
		return domain.Course{ID: 3}, nil
	}
	_, err = w.Ingest(context.Background(), "k", courseURL)
	assert.NoError(t, err)
}
