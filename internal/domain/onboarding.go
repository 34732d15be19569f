package domain

// QuestionSection groups onboarding questions by the trait they assess.
type QuestionSection string

// Known question sections.
const (
	SectionLearningStyle QuestionSection = "learning_style"
	SectionMemory        QuestionSection = "memory"
	SectionDiscipline    QuestionSection = "discipline"
)

// Valid reports whether s is a known section.
func (s QuestionSection) Valid() bool {
	switch s {
	case SectionLearningStyle, SectionMemory, SectionDiscipline:
		return true
	}
	return false
}

// Option is one selectable answer.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// OnboardingQuestion is one questionnaire item.
type OnboardingQuestion struct {
	ID      string          `json:"id"`
	Section QuestionSection `json:"section"`
	Text    string          `json:"text"`
	Options []Option        `json:"options"`
}

// HasOption reports whether value is one of the question's options.
func (q OnboardingQuestion) HasOption(value string) bool {
	for _, o := range q.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

// AnswerSet maps question id to the selected option value. Unanswered
// questions are omitted; partial sets are valid.
type AnswerSet map[string]string

// OnboardingResult is the outcome of submitting answers.
type OnboardingResult struct {
	Profile         *Profile `json:"profile,omitempty"`
	StrategySummary string   `json:"strategy_summary,omitempty"`
	// Next is the view to navigate to after submission.
	Next string `json:"next"`
}
