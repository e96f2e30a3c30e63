// Package modifiers provides post-processing transforms for scored record pairs
package modifiers

import (
	"fmt"

	"github.com/Ramsey-B/clover/pkg/models"
)

// NullFieldPenalty lowers the score by Penalty for every field that had a
// blank value on either record
type NullFieldPenalty struct {
	Penalty float64
}

func (m NullFieldPenalty) Modify(result *models.MatchResult, _ *models.MatchingConfig) (*models.MatchResult, error) {
	if m.Penalty < 0 {
		return nil, fmt.Errorf("null field penalty must not be negative, got %v", m.Penalty)
	}
	nulls := len(result.MatchVector().NullFields())
	if nulls == 0 {
		return result, nil
	}
	return result.WithScore(result.Score() - m.Penalty*float64(nulls)), nil
}

// ScoreFloor raises score and inclusive score to at least Floor
type ScoreFloor struct {
	Floor float64
}

func (m ScoreFloor) Modify(result *models.MatchResult, _ *models.MatchingConfig) (*models.MatchResult, error) {
	out := result
	if out.Score() < m.Floor {
		out = out.WithScore(m.Floor)
	}
	if out.InclusiveScore() < m.Floor {
		out = out.WithInclusiveScore(m.Floor)
	}
	return out, nil
}
