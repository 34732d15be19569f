package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/athena-learn/athena-web/internal/api/middleware"
	"github.com/athena-learn/athena-web/internal/api/shared"
	"github.com/athena-learn/athena-web/internal/domain"
	"github.com/athena-learn/athena-web/internal/platform/logger"
	"github.com/athena-learn/athena-web/internal/service/guard"
)

// Accounts is the session lifecycle used by AuthHandler.
type Accounts interface {
	Login(ctx context.Context, key, username, password string) (domain.Session, error)
	Register(ctx context.Context, key, username, email, password string) (domain.Session, error)
	Logout(ctx context.Context, key string)
	Refresh(ctx context.Context, key string) (domain.Session, error)
}

// SessionChecker reports the guard decision for a browser key.
type SessionChecker interface {
	Check(ctx context.Context, key string) guard.Decision
}

// AuthHandler handles login, registration, logout, refresh and the session
// probe.
type AuthHandler struct {
	accounts Accounts
	guard    SessionChecker
	cookie   middleware.SessionCookie
	logger   *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(accounts Accounts, g SessionChecker, cookie middleware.SessionCookie, log *slog.Logger) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AuthHandler{
		accounts: accounts,
		guard:    g,
		cookie:   cookie,
		logger:   log.With(slog.String("component", "auth_handler")),
	}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	key, _ := shared.GetBrowserKey(r.Context())
	sess, err := h.accounts.Login(r.Context(), key, req.Username, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to log in")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SessionResponse{
		State: string(guard.StateAuthenticated),
		User:  userResponse(sess),
	})
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	key, _ := shared.GetBrowserKey(r.Context())
	sess, err := h.accounts.Register(r.Context(), key, req.Username, req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to register")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, SessionResponse{
		State: string(guard.StateAuthenticated),
		User:  userResponse(sess),
	})
}

// Logout handles POST /api/auth/logout. It always succeeds.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if key, ok := shared.GetBrowserKey(r.Context()); ok {
		h.accounts.Logout(r.Context(), key)
	}
	h.cookie.Expire(w)
	logger.FromContextOrDefault(r.Context(), h.logger).Debug("logged out")
	w.WriteHeader(http.StatusNoContent)
}

// Refresh handles POST /api/auth/refresh. It is not behind the guard: an
// expired access token is exactly what it renews.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	key, _ := shared.GetBrowserKey(r.Context())
	sess, err := h.accounts.Refresh(r.Context(), key)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to refresh session")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SessionResponse{
		State: string(guard.StateAuthenticated),
		User:  userResponse(sess),
	})
}

// Session handles GET /api/session: the guard decision for this browser.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	key, _ := shared.GetBrowserKey(r.Context())
	d := h.guard.Check(r.Context(), key)

	resp := SessionResponse{State: string(d.State), Redirect: d.Redirect, Refreshable: d.Refreshable}
	if d.Authenticated() {
		resp.User = userResponse(d.Session)
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// decodeAndValidate decodes and validates a request body, writing a 400 on
// failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}
