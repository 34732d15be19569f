package api

import (
	"context"
	"net/http"

	"github.com/athena-learn/athena-web/internal/api/shared"
	"github.com/athena-learn/athena-web/internal/domain"
)

// Onboarding is the questionnaire flow.
type Onboarding interface {
	Start(ctx context.Context, key string) ([]domain.OnboardingQuestion, error)
	Submit(ctx context.Context, key string, answers domain.AnswerSet) (domain.OnboardingResult, error)
}

// OnboardingHandler serves the questionnaire.
type OnboardingHandler struct {
	flow Onboarding
}

// NewOnboardingHandler creates a new OnboardingHandler.
func NewOnboardingHandler(flow Onboarding) *OnboardingHandler {
	return &OnboardingHandler{flow: flow}
}

// GetQuestions handles GET /api/onboarding/questions.
func (h *OnboardingHandler) GetQuestions(w http.ResponseWriter, r *http.Request) {
	key, _ := shared.GetBrowserKey(r.Context())
	questions, err := h.flow.Start(r.Context(), key)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load questions")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, QuestionsResponse{Questions: questions})
}

// SubmitAnswers handles POST /api/onboarding/answers.
func (h *OnboardingHandler) SubmitAnswers(w http.ResponseWriter, r *http.Request) {
	var req AnswersRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	key, _ := shared.GetBrowserKey(r.Context())
	res, err := h.flow.Submit(r.Context(), key, domain.AnswerSet(req.Answers))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit answers")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, res)
}
