package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/athena-learn/athena-web/internal/api/shared"
	"github.com/athena-learn/athena-web/internal/platform/logger"
	"github.com/athena-learn/athena-web/internal/service/guard"
)

// Guard is the access check behind protected routes.
type Guard interface {
	Check(ctx context.Context, key string) guard.Decision
}

// AuthMiddleware gates routes on a valid session.
type AuthMiddleware struct {
	guard Guard
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(g Guard) *AuthMiddleware {
	return &AuthMiddleware{guard: g}
}

// RequireSession runs the guard for the request's browser key. Visitors
// without a valid session get 401 with a redirect to the login view; the
// session of everyone else is placed in the request context.
func (m *AuthMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, _ := shared.GetBrowserKey(r.Context())

		decision := m.guard.Check(r.Context(), key)
		if !decision.Authenticated() {
			shared.RespondWithRedirect(w, r, http.StatusUnauthorized, string(decision.State), decision.Redirect)
			return
		}

		ctx := shared.WithSession(r.Context(), decision.Session)
		log := logger.FromContextOrDefault(ctx, slog.Default()).
			With(slog.Int64("user_id", decision.Session.UserID))
		next.ServeHTTP(w, r.WithContext(logger.WithLogger(ctx, log)))
	})
}
