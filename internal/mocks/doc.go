// Package mocks provides centralized fake implementations for testing.
//
// Fakes use function fields: set the field for the method under test and
// leave the rest nil. Unset methods return zero values. Every call is
// recorded, so tests can assert that a path made no backend call at all.
//
//	api := &mocks.MockBackend{
//	    GetProfileFn: func(ctx context.Context, token string, userID int64) (*domain.Profile, error) {
//	        return nil, domain.ErrNotFound
//	    },
//	}
//	...
//	assert.Equal(t, 1, api.CallCount("GetProfile"))
package mocks
