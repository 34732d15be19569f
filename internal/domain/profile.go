package domain

import "strings"

// Score bounds for memory and discipline assessments.
const (
	MinScore = 0
	MaxScore = 10
)

// Profile is the user's cognitive/learning-style assessment record.
// Every field except UserID may be absent.
type Profile struct {
	UserID            int64   `json:"user_id"`
	LearningStyle     *string `json:"learning_style"`
	MemoryScore       *int    `json:"memory_score"`
	DisciplineScore   *int    `json:"discipline_score"`
	RecommendedFormat *string `json:"recommended_format"`
	RecommendedPace   *string `json:"recommended_pace"`
	StrategySummary   *string `json:"strategy_summary"`
	Goals             *string `json:"goals"`
	Interests         *string `json:"interests"`
}

// NeedsOnboarding reports whether the profile counts as "not created":
// a record without a learning style gates navigation exactly like a missing one.
func (p *Profile) NeedsOnboarding() bool {
	return p == nil || p.LearningStyle == nil || strings.TrimSpace(*p.LearningStyle) == ""
}

// ClampScore keeps an assessment score inside [MinScore, MaxScore].
func ClampScore(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}
