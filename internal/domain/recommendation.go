package domain

// RecommendationBundle is the combined payload of candidate courses and,
// depending on backend version, strategies.
type RecommendationBundle struct {
	ProfileSnapshot *Profile
	Courses         []Course
	Strategies      []Strategy
	// HasStrategies is true when the backend sent a strategies field at all,
	// even an empty one.
	HasStrategies bool
}

// Recommendations is the reconciled output of the aggregator: one ordered
// strategy list regardless of which endpoint produced it.
type Recommendations struct {
	ProfileSnapshot *Profile   `json:"profile_snapshot,omitempty"`
	Courses         []Course   `json:"courses"`
	Strategies      []Strategy `json:"strategies"`
}

// Active returns the primary strategy (element 0), or nil.
func (r Recommendations) Active() *Strategy {
	if len(r.Strategies) == 0 {
		return nil
	}
	s := r.Strategies[0]
	return &s
}

// Dashboard is the fully resolved view for an onboarded user.
type Dashboard struct {
	Profile        Profile           `json:"profile"`
	Courses        []Course          `json:"courses"`
	Strategies     []Strategy        `json:"strategies"`
	ActiveStrategy *Strategy         `json:"active_strategy"`
	Gamification   GamificationState `json:"gamification"`
	// Summary is the active strategy's summary, or the profile's strategy
	// summary when there is no active strategy.
	Summary string `json:"summary"`
}

// GamificationState is derived from the strategy list and never persisted.
type GamificationState struct {
	Level            int `json:"level"`
	XPCurrent        int `json:"xp_current"`
	XPNextLevel      int `json:"xp_next_level"`
	CompletedPercent int `json:"completed_percent"`
	TotalStrategies  int `json:"total_strategies"`
	TotalSteps       int `json:"total_steps"`
}
