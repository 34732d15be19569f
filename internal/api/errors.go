package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/athena-learn/athena-web/internal/api/shared"
	"github.com/athena-learn/athena-web/internal/domain"
	"github.com/athena-learn/athena-web/internal/service/account"
	"github.com/athena-learn/athena-web/internal/service/dashboard"
	"github.com/athena-learn/athena-web/internal/service/guard"
	"github.com/athena-learn/athena-web/internal/service/onboarding"
	"github.com/athena-learn/athena-web/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types to clients.
func MapErrorToStatusCode(err error) int {
	var (
		verr    *domain.ValidationError
		partial *domain.PartialFailureError
	)
	switch {
	case err == nil:
		return http.StatusOK

	case errors.As(err, &verr):
		return http.StatusBadRequest

	case errors.Is(err, domain.ErrAuth),
		errors.Is(err, account.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, domain.ErrIngestionInFlight),
		errors.Is(err, onboarding.ErrSubmitInProgress),
		errors.Is(err, domain.ErrStale):
		return http.StatusConflict

	// Checked before the load errors it wraps.
	case errors.As(err, &partial):
		return http.StatusBadGateway

	case errors.Is(err, domain.ErrNetwork),
		errors.Is(err, domain.ErrServer):
		return http.StatusBadGateway

	case errors.Is(err, store.ErrUnavailable):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a user-facing message for err. Validation
// messages and the backend's own error wording are shown verbatim; everything
// else gets a fixed wording.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var (
		verr    *domain.ValidationError
		partial *domain.PartialFailureError
		loadErr *domain.LoadError
	)
	switch {
	case errors.As(err, &verr):
		return verr.Message

	case errors.Is(err, account.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, domain.ErrAuth):
		return "Authentication required"

	case errors.Is(err, domain.ErrIngestionInFlight):
		return "A course is already being added"

	case errors.Is(err, onboarding.ErrSubmitInProgress):
		return "Answers are already being submitted"

	case errors.Is(err, domain.ErrStale):
		return "Request was superseded by a newer one"

	case errors.As(err, &partial):
		if msg := domain.RemoteMessage(partial.Err); msg != "" {
			return "Course was added but the strategy could not be generated: " + msg
		}
		return "Course was added but the strategy could not be generated; try again later"

	case errors.As(err, &loadErr):
		if msg := domain.RemoteMessage(loadErr.Err); msg != "" {
			return msg
		}
		return fmt.Sprintf("Could not load %s; please retry", loadErr.Operation)

	case errors.Is(err, domain.ErrNetwork),
		errors.Is(err, domain.ErrServer):
		return "The learning service is unavailable; please retry"

	case errors.Is(err, store.ErrUnavailable):
		return "Session storage is unavailable"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the response for err. Authentication failures become
// a redirect to the login view; everything else an ErrorResponse. When
// defaultMsg is set it replaces the generic message for unmapped errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	if errors.Is(err, domain.ErrAuth) {
		shared.RespondWithRedirect(w, r, http.StatusUnauthorized,
			string(dashboard.StateRedirectLogin), guard.RedirectLogin)
		return
	}

	status := MapErrorToStatusCode(err)
	msg := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && defaultMsg != "" {
		msg = defaultMsg
	}

	var opts []shared.ResponseOption
	if errors.Is(err, account.ErrInvalidCredentials) {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, msg, err, opts...)
}

// SanitizeValidationError turns a validator error into a short message such
// as "Invalid Email: invalid email format".
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// "Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "url", "http_url":
		return "invalid URL"
	case "min":
		return "too short"
	case "max":
		return "too long"
	default:
		return "validation failed"
	}
}
