package api

import (
	"github.com/athena-learn/athena-web/internal/domain"
)

// RegisterRequest defines the payload for the registration endpoint.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=150"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,max=128"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the display identity of the signed-in user. Tokens never
// leave the server.
type UserResponse struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// SessionResponse reports the guard state for the browser.
// Refreshable tells the browser to call /api/auth/refresh before sending the
// user to the login view.
type SessionResponse struct {
	State       string        `json:"state"`
	Redirect    string        `json:"redirect,omitempty"`
	Refreshable bool          `json:"refreshable,omitempty"`
	User        *UserResponse `json:"user,omitempty"`
}

// IngestRequest defines the payload for adding a course.
type IngestRequest struct {
	StepikURL string `json:"stepik_url" validate:"required"`
}

// IngestResponse is returned after a course was added and a strategy
// generated. Warning is set when the dashboard could not be refreshed.
type IngestResponse struct {
	Course    domain.Course     `json:"course"`
	Strategy  domain.Strategy   `json:"strategy"`
	State     string            `json:"state,omitempty"`
	Dashboard *domain.Dashboard `json:"dashboard,omitempty"`
	Warning   string            `json:"warning,omitempty"`
}

// PartialFailureResponse reports a course that was registered without a
// strategy.
type PartialFailureResponse struct {
	Error    string `json:"error"`
	CourseID int64  `json:"course_id"`
	TraceID  string `json:"trace_id,omitempty"`
}

// CoursesResponse wraps the public course list.
type CoursesResponse struct {
	Courses []domain.Course `json:"courses"`
}

// QuestionsResponse wraps the onboarding questionnaire.
type QuestionsResponse struct {
	Questions []domain.OnboardingQuestion `json:"questions"`
}

// AnswersRequest carries the selected option per question id. Unanswered
// questions are simply left out.
type AnswersRequest struct {
	Answers map[string]string `json:"answers" validate:"required"`
}

func userResponse(s domain.Session) *UserResponse {
	return &UserResponse{UserID: s.UserID, Username: s.DisplayName, Email: s.Email}
}
