package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadErrorUnwrap(t *testing.T) {
	t.Parallel()

	err := NewLoadError("profile", ErrNetwork)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.Contains(t, err.Error(), "load profile failed")
	assert.True(t, IsRetryable(err))
}

func TestPartialFailureError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("ingest: %w", &PartialFailureError{CourseID: 5, Err: ErrServer})

	var partial *PartialFailureError
	assert.True(t, errors.As(err, &partial))
	assert.Equal(t, int64(5), partial.CourseID)
	assert.ErrorIs(t, err, ErrServer)
}

func TestValidationErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "url: invalid", NewValidationError("url", "invalid").Error())
	assert.Equal(t, "Course already exists", NewValidationError("", "Course already exists").Error())
	assert.False(t, IsRetryable(NewValidationError("", "x")))
	assert.False(t, IsRetryable(ErrAuth))
}

func TestQuestionHelpers(t *testing.T) {
	t.Parallel()

	q := OnboardingQuestion{ID: "q1", Section: SectionMemory, Options: []Option{{Value: "a"}, {Value: "b"}}}
	assert.True(t, q.HasOption("b"))
	assert.False(t, q.HasOption("c"))
	assert.True(t, q.Section.Valid())
	assert.False(t, QuestionSection("other").Valid())
}

type remoteErr struct{ msg string }

func (e remoteErr) Error() string         { return "remote: " + e.msg }
func (e remoteErr) RemoteMessage() string { return e.msg }

func TestRemoteMessage(t *testing.T) {
	wrapped := NewLoadError("courses", fmt.Errorf("%w: %w", ErrServer, remoteErr{msg: "Stepik is down"}))
	assert.Equal(t, "Stepik is down", RemoteMessage(wrapped))
	assert.Equal(t, "Stepik is down", RemoteMessage(&PartialFailureError{CourseID: 1, Err: wrapped}))
	assert.Empty(t, RemoteMessage(NewLoadError("courses", ErrNetwork)))
	assert.Empty(t, RemoteMessage(nil))
}
