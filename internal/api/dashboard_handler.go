package api

import (
	"context"
	"net/http"

	"github.com/athena-learn/athena-web/internal/api/shared"
	"github.com/athena-learn/athena-web/internal/service/dashboard"
)

// DashboardResolver resolves the dashboard for a browser key.
type DashboardResolver interface {
	Resolve(ctx context.Context, key string) (dashboard.Outcome, error)
}

// DashboardHandler serves the reconciled dashboard.
type DashboardHandler struct {
	resolver DashboardResolver
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(resolver DashboardResolver) *DashboardHandler {
	return &DashboardHandler{resolver: resolver}
}

// GetDashboard handles GET /api/dashboard.
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	key, _ := shared.GetBrowserKey(r.Context())

	out, err := h.resolver.Resolve(r.Context(), key)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load dashboard")
		return
	}
	writeOutcome(w, r, out)
}

// writeOutcome maps a resolve outcome onto the response: login redirects
// are 401, onboarding redirects 409, a ready dashboard 200.
func writeOutcome(w http.ResponseWriter, r *http.Request, out dashboard.Outcome) {
	switch out.State {
	case dashboard.StateRedirectLogin:
		shared.RespondWithRedirect(w, r, http.StatusUnauthorized, string(out.State), out.Redirect)
	case dashboard.StateRedirectOnboarding:
		shared.RespondWithRedirect(w, r, http.StatusConflict, string(out.State), out.Redirect)
	default:
		shared.RespondWithJSON(w, r, http.StatusOK, out)
	}
}
