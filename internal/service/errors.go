package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/athena-learn/athena-web/internal/domain"
)

// ClassifyRemote maps a failed backend call onto the outcome callers handle.
//
// Error handling principles:
// 1. domain.ErrAuth is returned as the bare sentinel; the caller forces a logout
// 2. *domain.ValidationError passes through with the backend's wording
// 3. Cancellation passes through untouched
// 4. Everything else becomes a retryable *domain.LoadError for operation
func ClassifyRemote(operation string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, domain.ErrAuth) {
		return domain.ErrAuth
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr
	}

	if errors.Is(err, context.Canceled) {
		return err
	}

	var loadErr *domain.LoadError
	if errors.As(err, &loadErr) {
		return loadErr
	}

	if !domain.IsRetryable(err) {
		err = fmt.Errorf("%w: %w", domain.ErrServer, err)
	}
	return domain.NewLoadError(operation, err)
}
