package backend

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/athena-learn/athena-web/internal/domain"
)

// API is the set of backend operations the services depend on.
type API interface {
	Register(ctx context.Context, username, email, password string) (AuthResult, error)
	Login(ctx context.Context, username, password string) (AuthResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, error)

	GetProfile(ctx context.Context, token string, userID int64) (*domain.Profile, error)
	GetRecommendations(ctx context.Context, token string, userID int64) (domain.RecommendationBundle, error)
	GetStrategies(ctx context.Context, token string, userID int64) ([]domain.Strategy, error)

	RegisterCourse(ctx context.Context, token, stepikURL string) (domain.Course, error)
	GenerateStrategy(ctx context.Context, token string, userID, courseID int64) (domain.Strategy, error)
	ListCourses(ctx context.Context) ([]domain.Course, error)

	OnboardingQuestions(ctx context.Context) ([]domain.OnboardingQuestion, error)
	SubmitAnswers(ctx context.Context, token string, answers domain.AnswerSet) (AnswersResult, error)
}

// AuthResult is the credential set returned by login and register.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	UserID       int64
	Username     string
	Email        string
}

// Session converts the result into a domain.Session. It fails with
// domain.ErrInvalidSession unless every field came back.
func (r AuthResult) Session() (domain.Session, error) {
	s := domain.Session{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		UserID:       r.UserID,
		DisplayName:  r.Username,
		Email:        r.Email,
	}
	if err := s.Validate(); err != nil {
		return domain.Session{}, err
	}
	return s, nil
}

// AnswersResult is the backend's reply to an answer submission.
type AnswersResult struct {
	Profile         *domain.Profile
	StrategySummary string
}

func decodeAuthResult(raw json.RawMessage) (AuthResult, error) {
	o, err := decodeObject(raw)
	if err != nil {
		return AuthResult{}, err
	}
	if o == nil {
		return AuthResult{}, fmt.Errorf("%w: empty auth response", domain.ErrServer)
	}
	return AuthResult{
		AccessToken:  o.str("access", "access_token", "accessToken"),
		RefreshToken: o.str("refresh", "refresh_token", "refreshToken"),
		UserID:       o.id("user_id", "userId", "userid", "id"),
		Username:     o.str("username", "user_name"),
		Email:        o.str("email"),
	}, nil
}
