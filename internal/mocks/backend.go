package mocks

import (
	"context"
	"sync"

	"github.com/athena-learn/athena-web/internal/domain"
	"github.com/athena-learn/athena-web/internal/platform/backend"
)

// MockBackend implements backend.API for testing.
type MockBackend struct {
	RegisterFn            func(ctx context.Context, username, email, password string) (backend.AuthResult, error)
	LoginFn               func(ctx context.Context, username, password string) (backend.AuthResult, error)
	RefreshTokenFn        func(ctx context.Context, refreshToken string) (string, error)
	GetProfileFn          func(ctx context.Context, token string, userID int64) (*domain.Profile, error)
	GetRecommendationsFn  func(ctx context.Context, token string, userID int64) (domain.RecommendationBundle, error)
	GetStrategiesFn       func(ctx context.Context, token string, userID int64) ([]domain.Strategy, error)
	RegisterCourseFn      func(ctx context.Context, token, stepikURL string) (domain.Course, error)
	GenerateStrategyFn    func(ctx context.Context, token string, userID, courseID int64) (domain.Strategy, error)
	ListCoursesFn         func(ctx context.Context) ([]domain.Course, error)
	OnboardingQuestionsFn func(ctx context.Context) ([]domain.OnboardingQuestion, error)
	SubmitAnswersFn       func(ctx context.Context, token string, answers domain.AnswerSet) (backend.AnswersResult, error)

	// mu protects the call log for concurrent callers
	mu    sync.Mutex
	calls []string
}

var _ backend.API = (*MockBackend)(nil)

func (m *MockBackend) record(method string) {
	m.mu.Lock()
	m.calls = append(m.calls, method)
	m.mu.Unlock()
}

// CallCount returns how many times method was called.
func (m *MockBackend) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == method {
			n++
		}
	}
	return n
}

// Calls returns the method names in call order.
func (m *MockBackend) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// Register implements backend.API
func (m *MockBackend) Register(ctx context.Context, username, email, password string) (backend.AuthResult, error) {
	m.record("Register")
	if m.RegisterFn != nil {
		return m.RegisterFn(ctx, username, email, password)
	}
	return backend.AuthResult{}, nil
}

// Login implements backend.API
func (m *MockBackend) Login(ctx context.Context, username, password string) (backend.AuthResult, error) {
	m.record("Login")
	if m.LoginFn != nil {
		return m.LoginFn(ctx, username, password)
	}
	return backend.AuthResult{}, nil
}

// RefreshToken implements backend.API
func (m *MockBackend) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	m.record("RefreshToken")
	if m.RefreshTokenFn != nil {
		return m.RefreshTokenFn(ctx, refreshToken)
	}
	return "", nil
}

// GetProfile implements backend.API
func (m *MockBackend) GetProfile(ctx context.Context, token string, userID int64) (*domain.Profile, error) {
	m.record("GetProfile")
	if m.GetProfileFn != nil {
		return m.GetProfileFn(ctx, token, userID)
	}
	return nil, domain.ErrNotFound
}

// GetRecommendations implements backend.API
func (m *MockBackend) GetRecommendations(ctx context.Context, token string, userID int64) (domain.RecommendationBundle, error) {
	m.record("GetRecommendations")
	if m.GetRecommendationsFn != nil {
		return m.GetRecommendationsFn(ctx, token, userID)
	}
	return domain.RecommendationBundle{}, nil
}

// GetStrategies implements backend.API
func (m *MockBackend) GetStrategies(ctx context.Context, token string, userID int64) ([]domain.Strategy, error) {
	m.record("GetStrategies")
	if m.GetStrategiesFn != nil {
		return m.GetStrategiesFn(ctx, token, userID)
	}
	return nil, nil
}

// RegisterCourse implements backend.API
func (m *MockBackend) RegisterCourse(ctx context.Context, token, stepikURL string) (domain.Course, error) {
	m.record("RegisterCourse")
	if m.RegisterCourseFn != nil {
		return m.RegisterCourseFn(ctx, token, stepikURL)
	}
	return domain.Course{}, nil
}

// GenerateStrategy implements backend.API
func (m *MockBackend) GenerateStrategy(ctx context.Context, token string, userID, courseID int64) (domain.Strategy, error) {
	m.record("GenerateStrategy")
	if m.GenerateStrategyFn != nil {
		return m.GenerateStrategyFn(ctx, token, userID, courseID)
	}
	return domain.Strategy{}, nil
}

// ListCourses implements backend.API
func (m *MockBackend) ListCourses(ctx context.Context) ([]domain.Course, error) {
	m.record("ListCourses")
	if m.ListCoursesFn != nil {
		return m.ListCoursesFn(ctx)
	}
	return nil, nil
}

// OnboardingQuestions implements backend.API
func (m *MockBackend) OnboardingQuestions(ctx context.Context) ([]domain.OnboardingQuestion, error) {
	m.record("OnboardingQuestions")
	if m.OnboardingQuestionsFn != nil {
		return m.OnboardingQuestionsFn(ctx)
	}
	return nil, nil
}

// SubmitAnswers implements backend.API
func (m *MockBackend) SubmitAnswers(ctx context.Context, token string, answers domain.AnswerSet) (backend.AnswersResult, error) {
	m.record("SubmitAnswers")
	if m.SubmitAnswersFn != nil {
		return m.SubmitAnswersFn(ctx, token, answers)
	}
	return backend.AnswersResult{}, nil
}
