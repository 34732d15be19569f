package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/athena-learn/athena-web/internal/domain"
)

// HTTPError is a non-2xx response from the backend.
type HTTPError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "http error"
	}
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if msg == "" {
		msg = "http error"
	}
	return fmt.Sprintf("http error: status=%d message=%s", e.StatusCode, msg)
}

// RemoteMessage returns the backend's own wording for the failure.
func (e *HTTPError) RemoteMessage() string {
	return strings.TrimSpace(e.Message)
}

// Unwrap maps the status code onto the domain taxonomy so callers can use
// errors.Is(err, domain.ErrAuth) and friends.
func (e *HTTPError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		return domain.ErrAuth
	case e.StatusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case e.StatusCode >= 500:
		return domain.ErrServer
	default:
		return nil
	}
}

// parseHTTPError extracts the backend's message. Django views answer with
// {"error": "..."}, the auth endpoints with {"detail": "..."}.
func parseHTTPError(status int, raw []byte) error {
	body := strings.TrimSpace(string(raw))

	var env struct {
		Error   json.RawMessage `json:"error"`
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	msg := ""
	if err := json.Unmarshal(raw, &env); err == nil {
		for _, candidate := range []json.RawMessage{env.Error, env.Detail} {
			if s := messageFromRaw(candidate); s != "" {
				msg = s
				break
			}
		}
		if msg == "" {
			msg = strings.TrimSpace(env.Message)
		}
	}

	return &HTTPError{StatusCode: status, Message: msg, Body: body}
}

// messageFromRaw accepts a plain string or a list of strings.
func messageFromRaw(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.TrimSpace(strings.Join(list, " "))
	}
	return ""
}

// ErrResponseTooLarge is returned when a response body exceeds maxResponseBytes.
var ErrResponseTooLarge = errors.New("backend response too large")

// classify turns a transport or HTTP error into the domain taxonomy.
// Validation failures keep the backend's wording verbatim.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var herr *HTTPError
	if errors.As(err, &herr) {
		switch {
		case herr.StatusCode == http.StatusBadRequest:
			msg := herr.Message
			if msg == "" {
				msg = http.StatusText(herr.StatusCode)
			}
			return domain.NewValidationError("", msg)
		case herr.StatusCode == http.StatusUnauthorized,
			herr.StatusCode == http.StatusNotFound,
			herr.StatusCode >= 500:
			return herr
		default:
			// 403 and other 4xx are unexpected for this client.
			return fmt.Errorf("%w: %v", domain.ErrServer, herr)
		}
	}

	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, domain.ErrServer) || errors.Is(err, domain.ErrNetwork) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrNetwork, err)
}
