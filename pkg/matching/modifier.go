package matching

import (
	"fmt"

	"github.com/Ramsey-B/clover/pkg/models"
)

// Modifier adjusts the derived scores of a result before it is finalized.
// It may change score, probabilities, certainty or status, never the
// records, config or vector the result refers to.
type Modifier interface {
	Modify(result *models.MatchResult, cfg *models.MatchingConfig) (*models.MatchResult, error)
}

// ModifierFunc adapts a function to the Modifier interface
type ModifierFunc func(result *models.MatchResult, cfg *models.MatchingConfig) (*models.MatchResult, error)

func (f ModifierFunc) Modify(result *models.MatchResult, cfg *models.MatchingConfig) (*models.MatchResult, error) {
	return f(result, cfg)
}

// ModifierError is returned when a modifier fails. Result holds the output of
// the last stage that succeeded.
type ModifierError struct {
	Index  int
	Result *models.MatchResult
	Err    error
}

func (e *ModifierError) Error() string {
	return fmt.Sprintf("modifier %d failed: %v", e.Index, e.Err)
}

func (e *ModifierError) Unwrap() error {
	return e.Err
}

// ModifierChain applies modifiers in registration order
type ModifierChain []Modifier

// Apply pipes result through every modifier. Each stage receives only the
// previous stage's output. A nil output leaves the result unchanged; the
// first error stops the chain.
func (c ModifierChain) Apply(result *models.MatchResult, cfg *models.MatchingConfig) (*models.MatchResult, error) {
	current := result
	for i, m := range c {
		next, err := m.Modify(current, cfg)
		if err != nil {
			return nil, &ModifierError{Index: i, Result: current, Err: err}
		}
		if next == nil {
			continue
		}
		current = next.Repin(result)
	}
	return current, nil
}
