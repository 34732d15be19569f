package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/athena-learn/athena-web/internal/api/shared"
)

// SessionCookie issues and reads the opaque browser key. The cookie carries
// no credentials; tokens stay server side in the session area.
type SessionCookie struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// Handler ensures every request carries a browser key, minting a new one
// when the cookie is missing or malformed.
func (c SessionCookie) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := ""
		if ck, err := r.Cookie(c.Name); err == nil {
			if _, perr := uuid.Parse(ck.Value); perr == nil {
				key = ck.Value
			}
		}
		if key == "" {
			key = uuid.NewString()
			http.SetCookie(w, c.cookie(key, int(c.MaxAge.Seconds())))
		}
		next.ServeHTTP(w, r.WithContext(shared.WithBrowserKey(r.Context(), key)))
	})
}

// Expire deletes the cookie so the next request gets a fresh browser key.
func (c SessionCookie) Expire(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie("", -1))
}

func (c SessionCookie) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
