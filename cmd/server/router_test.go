package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athena-learn/athena-web/internal/config"
	"github.com/athena-learn/athena-web/internal/domain"
	"github.com/athena-learn/athena-web/internal/mocks"
	"github.com/athena-learn/athena-web/internal/platform/backend"
)

func strPtr(s string) *string { return &s }

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "debug", CookieName: "athena_session"},
		Backend: config.BackendConfig{
			BaseURL:                "http://backend.invalid/api",
			TimeoutSeconds:         15,
			GenerateTimeoutSeconds: 90,
		},
		Session: config.SessionConfig{Store: "memory", TTLHours: 1},
	}
}

type testServer struct {
	t      *testing.T
	srv    *httptest.Server
	client *http.Client
	cookie *http.Cookie
}

func newTestServer(t *testing.T, api *mocks.MockBackend) *testServer {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	app, err := newApplicationWithBackend(context.Background(), testConfig(), log, api)
	require.NoError(t, err)

	srv := httptest.NewServer(app.setupRouter())
	t.Cleanup(srv.Close)
	return &testServer{t: t, srv: srv, client: srv.Client()}
}

func (s *testServer) do(method, path, body string) *http.Response {
	s.t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, s.srv.URL+path, rdr)
	require.NoError(s.t, err)
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}
	resp, err := s.client.Do(req)
	require.NoError(s.t, err)
	for _, c := range resp.Cookies() {
		if c.Name == "athena_session" {
			if c.MaxAge < 0 {
				s.cookie = nil
			} else {
				s.cookie = c
			}
		}
	}
	s.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func loginBackend() *mocks.MockBackend {
	return &mocks.MockBackend{
		LoginFn: func(context.Context, string, string) (backend.AuthResult, error) {
			return backend.AuthResult{AccessToken: "opaque", RefreshToken: "r", UserID: 7, Username: "ada", Email: "ada@example.com"}, nil
		},
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, &mocks.MockBackend{})

	resp := s.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	s.do(http.MethodGet, "/api/session", "")
	resp = s.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `athena_http_requests_total{method="GET",route="/api/session",status="200"} 1`)
}

func TestGuardedRouteWithoutSession(t *testing.T) {
	api := &mocks.MockBackend{}
	s := newTestServer(t, api)

	resp := s.do(http.MethodGet, "/api/dashboard", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "/login", body["redirect"])
	assert.NotNil(t, s.cookie, "browser key cookie is issued")
	assert.Empty(t, api.Calls(), "guard makes no backend call")
}

func TestLoginThenOnboardingRedirect(t *testing.T) {
	api := loginBackend()
	s := newTestServer(t, api)

	resp := s.do(http.MethodPost, "/api/auth/login", `{"username":"ada","password":"secret"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(http.MethodGet, "/api/session", "")
	var sess map[string]interface{}
	decode(t, resp, &sess)
	assert.Equal(t, "authenticated", sess["state"])

	// GetProfile defaults to not found.
	resp = s.do(http.MethodGet, "/api/dashboard", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "/onboarding", body["redirect"])
}

func TestLoginThenDashboard(t *testing.T) {
	api := loginBackend()
	api.GetProfileFn = func(context.Context, string, int64) (*domain.Profile, error) {
		return &domain.Profile{UserID: 7, LearningStyle: strPtr("visual")}, nil
	}
	api.GetRecommendationsFn = func(context.Context, string, int64) (domain.RecommendationBundle, error) {
		return domain.RecommendationBundle{
			Courses:       []domain.Course{{ID: 1}},
			Strategies:    []domain.Strategy{{ID: 3, Summary: "plan", Steps: make([]domain.Step, 2)}},
			HasStrategies: true,
		}, nil
	}
	s := newTestServer(t, api)

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/auth/login", `{"username":"ada","password":"secret"}`).StatusCode)

	resp := s.do(http.MethodGet, "/api/dashboard", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		State     string           `json:"state"`
		Dashboard domain.Dashboard `json:"dashboard"`
	}
	decode(t, resp, &out)
	assert.Equal(t, "ready", out.State)
	assert.Equal(t, "plan", out.Dashboard.Summary)
	assert.Equal(t, 140, out.Dashboard.Gamification.XPCurrent)
	assert.Equal(t, 0, api.CallCount("GetStrategies"))
}

func TestBackendUnauthorizedLogsOut(t *testing.T) {
	api := loginBackend()
	api.GetProfileFn = func(context.Context, string, int64) (*domain.Profile, error) {
		return nil, domain.ErrAuth
	}
	s := newTestServer(t, api)

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/auth/login", `{"username":"ada","password":"secret"}`).StatusCode)

	resp := s.do(http.MethodGet, "/api/dashboard", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	calls := len(api.Calls())
	resp = s.do(http.MethodPost, "/api/courses/ingest", `{"stepik_url":"https://stepik.org/course/1"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, calls, len(api.Calls()), "no further protected calls after logout")
}

func TestLogoutClearsSession(t *testing.T) {
	s := newTestServer(t, loginBackend())

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/auth/login", `{"username":"ada","password":"secret"}`).StatusCode)
	assert.Equal(t, http.StatusNoContent, s.do(http.MethodPost, "/api/auth/logout", "").StatusCode)
	assert.Nil(t, s.cookie)

	resp := s.do(http.MethodGet, "/api/session", "")
	var sess map[string]interface{}
	decode(t, resp, &sess)
	assert.Equal(t, "unauthenticated", sess["state"])
}

func TestPublicCourses(t *testing.T) {
	api := &mocks.MockBackend{
		ListCoursesFn: func(context.Context) ([]domain.Course, error) {
			return []domain.Course{{ID: 1, Title: "Go"}}, nil
		},
	}
	s := newTestServer(t, api)

	resp := s.do(http.MethodGet, "/api/courses", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Courses []domain.Course `json:"courses"`
	}
	decode(t, resp, &body)
	assert.Len(t, body.Courses, 1)
}

func expiredAccessToken(t *testing.T) string {
	t.Helper()
	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return tok
}

func TestRefreshRenewsExpiredAccessToken(t *testing.T) {
	expired := expiredAccessToken(t)
	var refreshedWith string
	api := &mocks.MockBackend{
		LoginFn: func(context.Context, string, string) (backend.AuthResult, error) {
			return backend.AuthResult{AccessToken: expired, RefreshToken: "refresh-1", UserID: 7, Username: "ada", Email: "ada@example.com"}, nil
		},
		RefreshTokenFn: func(_ context.Context, refreshToken string) (string, error) {
			refreshedWith = refreshToken
			return "fresh-access", nil
		},
	}
	s := newTestServer(t, api)

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/auth/login", `{"username":"ada","password":"secret"}`).StatusCode)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/dashboard", "").StatusCode)

	resp := s.do(http.MethodGet, "/api/session", "")
	var probe map[string]interface{}
	decode(t, resp, &probe)
	assert.Equal(t, "unauthenticated", probe["state"])
	assert.Equal(t, true, probe["refreshable"])

	resp = s.do(http.MethodPost, "/api/auth/refresh", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "refresh-1", refreshedWith)

	// GetProfile defaults to not found, so a valid session lands on onboarding.
	assert.Equal(t, http.StatusConflict, s.do(http.MethodGet, "/api/dashboard", "").StatusCode)
}
