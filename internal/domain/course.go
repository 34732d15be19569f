package domain

import "time"

// Course is an external course reference registered with the backend.
// It is immutable once created remotely.
type Course struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Level      string `json:"level"`
	Language   string `json:"language"`
	FormatType string `json:"format_type"`
	URL        string `json:"url"`
}

// Step is one position in a strategy's execution sequence.
type Step struct {
	Title                  string `json:"title"`
	Description            string `json:"description"`
	RecommendedTimeMinutes *int   `json:"recommended_time_minutes,omitempty"`
}

// Strategy is a generated per-course study plan. Generating twice for the
// same course yields two strategies; the backend does not deduplicate.
type Strategy struct {
	ID         int64     `json:"id"`
	Course     Course    `json:"course"`
	Summary    string    `json:"summary"`
	Pace       string    `json:"pace"`
	FormatTips []string  `json:"format_tips"`
	Steps      []Step    `json:"steps"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
