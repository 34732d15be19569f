package shared

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athena-learn/athena-web/internal/domain"
	"github.com/athena-learn/athena-web/internal/platform/logger"
)

func TestTraceID(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))

	ctx := SetTraceID(context.Background())
	id := GetTraceID(ctx)
	assert.Len(t, id, 32)
	assert.NotEqual(t, id, GetTraceID(SetTraceID(context.Background())))
}

func TestBrowserKeyAndSession(t *testing.T) {
	_, ok := GetBrowserKey(context.Background())
	assert.False(t, ok)
	_, ok = GetBrowserKey(WithBrowserKey(context.Background(), ""))
	assert.False(t, ok)

	key, ok := GetBrowserKey(WithBrowserKey(context.Background(), "k"))
	assert.True(t, ok)
	assert.Equal(t, "k", key)

	s := domain.Session{UserID: 7}
	got, ok := GetSession(WithSession(context.Background(), s))
	require.True(t, ok)
	assert.Equal(t, s, got)
}

type loginBody struct {
	Username string `json:"username" validate:"required"`
}

func TestDecodeAndValidate(t *testing.T) {
	var body loginBody
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":"ada"}`))
	require.NoError(t, DecodeJSON(r, &body))
	assert.NoError(t, ValidateRequest(body))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	assert.EqualError(t, DecodeJSON(r, &body), "request body is empty")

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))
	assert.Error(t, DecodeJSON(r, &body))

	assert.Error(t, ValidateRequest(loginBody{}))
}

func TestRespondWithErrorAndLogRedactsDetails(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx := logger.WithLogger(SetTraceID(context.Background()), log)
	r := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	RespondWithErrorAndLog(w, r, http.StatusBadGateway, "Backend unavailable",
		errors.New("dial tcp: password=hunter2"))

	require.Equal(t, http.StatusBadGateway, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Backend unavailable", resp.Error)
	assert.Equal(t, GetTraceID(ctx), resp.TraceID)
	assert.NotContains(t, w.Body.String(), "hunter2")

	assert.Contains(t, buf.String(), `"level":"ERROR"`)
	assert.NotContains(t, buf.String(), "hunter2")
}

func TestRespondWithRedirect(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	RespondWithRedirect(w, r, http.StatusConflict, "redirect_onboarding", "/onboarding")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"state":"redirect_onboarding","redirect":"/onboarding"}`, w.Body.String())
}
