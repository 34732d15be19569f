package profile

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athena-learn/athena-web/internal/domain"
	"github.com/athena-learn/athena-web/internal/mocks"
)

func strPtr(s string) *string { return &s }

var sess = domain.Session{AccessToken: "tok", RefreshToken: "r", UserID: 7, DisplayName: "ada", Email: "a@example.com"}

func TestLoadProfile(t *testing.T) {
	tests := []struct {
		name            string
		profile         *domain.Profile
		err             error
		wantOnboarding  bool
		wantErrIs       error
		wantLoadError   bool
		wantProfileNull bool
	}{
		{
			name:    "onboarded profile",
			profile: &domain.Profile{UserID: 7, LearningStyle: strPtr("visual")},
		},
		{
			name:           "profile without learning style",
			profile:        &domain.Profile{UserID: 7},
			wantOnboarding: true,
		},
		{
			name:            "404 means onboarding",
			err:             domain.ErrNotFound,
			wantOnboarding:  true,
			wantProfileNull: true,
		},
		{
			name:      "401 is auth error",
			err:       fmt.Errorf("http 401: %w", domain.ErrAuth),
			wantErrIs: domain.ErrAuth,
		},
		{
			name:          "5xx is a load error",
			err:           fmt.Errorf("http 500: %w", domain.ErrServer),
			wantErrIs:     domain.ErrServer,
			wantLoadError: true,
		},
		{
			name:          "network failure is a load error",
			err:           fmt.Errorf("%w: timeout", domain.ErrNetwork),
			wantErrIs:     domain.ErrNetwork,
			wantLoadError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mocks.MockBackend{
				GetProfileFn: func(_ context.Context, token string, userID int64) (*domain.Profile, error) {
					assert.Equal(t, "tok", token)
					assert.Equal(t, int64(7), userID)
					return tt.profile, tt.err
				},
			}

			res, err := NewService(api, nil).LoadProfile(context.Background(), sess)
			assert.Equal(t, 1, api.CallCount("GetProfile"), "no automatic retry")

			if tt.wantErrIs != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErrIs)
				var loadErr *domain.LoadError
				assert.Equal(t, tt.wantLoadError, errors.As(err, &loadErr))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantOnboarding, res.NeedsOnboarding)
			if tt.wantProfileNull {
				assert.Nil(t, res.Profile)
			} else {
				assert.Equal(t, tt.profile, res.Profile)
			}
		})
	}
}
