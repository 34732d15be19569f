// Package guard decides whether a browser may see protected views.
//
// The guard reads the session area only; it never calls the backend. A
// missing or partial session, or an access token that is a JWT whose exp has
// already passed, sends the visitor to the login view. An expired access
// token with a usable refresh token keeps the session so it can be
// refreshed; once both are expired the session is cleared. Every component
// that receives a 401 from the backend calls ForceLogout.
package guard

import (
	"context"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/athena-learn/athena-web/internal/domain"
	"github.com/athena-learn/athena-web/internal/platform/logger"
	"github.com/athena-learn/athena-web/internal/session"
)

// State is the guard's position in its state machine.
type State string

// Guard states. Every check starts in StateChecking and ends in one of the
// other two.
const (
	StateChecking        State = "checking"
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticated   State = "authenticated"
)

// RedirectLogin is where unauthenticated visitors are sent.
const RedirectLogin = "/login"

// Sessions is the subset of the session service the guard needs.
type Sessions interface {
	Get(ctx context.Context, key string) (domain.Session, bool)
	Clear(ctx context.Context, key, reason string)
}

// Decision is the outcome of a check. Refreshable is set when access was
// denied only because the access token expired.
type Decision struct {
	State       State
	Redirect    string
	Session     domain.Session
	Refreshable bool
}

// Authenticated reports whether the decision grants access.
func (d Decision) Authenticated() bool {
	return d.State == StateAuthenticated
}

// Guard implements the access check.
type Guard struct {
	sessions  Sessions
	clockSkew time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// New creates a Guard.
func New(sessions Sessions, log *slog.Logger) *Guard {
	if log == nil {
		log = slog.Default()
	}
	return &Guard{
		sessions:  sessions,
		clockSkew: 30 * time.Second,
		now:       time.Now,
		logger:    log.With(slog.String("component", "auth_guard")),
	}
}

// Check resolves the guard for a browser key.
func (g *Guard) Check(ctx context.Context, key string) Decision {
	log := logger.FromContextOrDefault(ctx, g.logger)
	d := Decision{State: StateChecking}

	sess, ok := g.sessions.Get(ctx, key)
	if !ok {
		return d.deny()
	}

	if g.tokenExpired(sess.AccessToken) {
		if g.tokenExpired(sess.RefreshToken) {
			log.Info("session tokens expired; clearing session", slog.Int64("user_id", sess.UserID))
			g.sessions.Clear(ctx, key, session.ReasonExpired)
			return d.deny()
		}
		log.Debug("access token expired; session awaits refresh", slog.Int64("user_id", sess.UserID))
		d = d.deny()
		d.Refreshable = true
		return d
	}

	d.State = StateAuthenticated
	d.Session = sess
	return d
}

// ForceLogout clears the session after the backend rejected it.
func (g *Guard) ForceLogout(ctx context.Context, key string) {
	logger.FromContextOrDefault(ctx, g.logger).Info("backend rejected session; logging out")
	g.sessions.Clear(ctx, key, session.ReasonUnauthorized)
}

func (d Decision) deny() Decision {
	return Decision{State: StateUnauthenticated, Redirect: RedirectLogin}
}

// tokenExpired inspects a JWT's exp claim without verifying the signature;
// the backend remains the authority. Tokens that are not JWTs, or carry no
// exp, are never considered expired here.
func (g *Guard) tokenExpired(token string) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !g.now().Before(claims.ExpiresAt.Add(g.clockSkew))
}
