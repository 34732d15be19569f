// Package gamification derives progress indicators from a user's strategies.
package gamification

import (
	"github.com/athena-learn/athena-web/internal/domain"
)

// Params holds the constants used to turn strategy counts into progress values.
type Params struct {
	StrategiesPerLevel int
	XPPerStrategy      int
	XPPerStep          int
	BaseXPNextLevel    int
	XPNextLevelStep    int
	BaseCompletion     int
	CompletionPerItem  int
	MaxCompletion      int
}

// NewDefaultParams returns the parameters used by the dashboard.
func NewDefaultParams() *Params {
	return &Params{
		StrategiesPerLevel: 2,
		XPPerStrategy:      120,
		XPPerStep:          10,
		BaseXPNextLevel:    500,
		XPNextLevelStep:    200,
		BaseCompletion:     40,
		CompletionPerItem:  10,
		MaxCompletion:      100,
	}
}

// Derive computes the gamification state for strategies with default parameters.
func Derive(strategies []domain.Strategy) domain.GamificationState {
	return DeriveWithParams(strategies, NewDefaultParams())
}

// DeriveWithParams is a pure function of the number of strategies and the
// total number of steps across them.
func DeriveWithParams(strategies []domain.Strategy, p *Params) domain.GamificationState {
	if p == nil {
		p = NewDefaultParams()
	}

	n := len(strategies)
	steps := 0
	for _, s := range strategies {
		steps += len(s.Steps)
	}

	perLevel := p.StrategiesPerLevel
	if perLevel <= 0 {
		perLevel = 1
	}
	level := 1 + n/perLevel

	completed := 0
	if n > 0 {
		completed = min(p.MaxCompletion, p.BaseCompletion+n*p.CompletionPerItem)
	}

	return domain.GamificationState{
		Level:            level,
		XPCurrent:        n*p.XPPerStrategy + steps*p.XPPerStep,
		XPNextLevel:      p.BaseXPNextLevel + level*p.XPNextLevelStep,
		CompletedPercent: completed,
		TotalStrategies:  n,
		TotalSteps:       steps,
	}
}
