package matching

import (
	"errors"

	"github.com/Ramsey-B/clover/pkg/models"
)

// FieldComparator scores one field with its configured algorithm and
// records the outcome on a match vector
type FieldComparator struct {
	scorer *Scorer
}

// NewFieldComparator creates a comparator backed by scorer
func NewFieldComparator(scorer *Scorer) *FieldComparator {
	if scorer == nil {
		scorer = NewScorer()
	}
	return &FieldComparator{scorer: scorer}
}

// Match compares value1 and value2 for field and writes (score, match) into v.
// A nil value is recorded as a non-match with score 0 without running any
// algorithm. An unknown algorithm leaves v untouched and returns a
// ConfigurationError.
func (c *FieldComparator) Match(v *models.MatchVector, field string, alg models.Algorithm, threshold float64, value1, value2 *string) (bool, error) {
	if value1 == nil || value2 == nil {
		v.SetMatch(field, 0, false)
		return false, nil
	}

	similarity, match, err := c.Similarity(alg, threshold, *value1, *value2)
	if err != nil {
		var ce *models.ConfigurationError
		if errors.As(err, &ce) {
			return false, ce.AddField(field).AddAlgorithm(alg)
		}
		return false, err
	}

	v.SetMatch(field, similarity, match)
	return match, nil
}

// Similarity runs alg over a and b. Exact matching scores 1 or 0 and its
// match flag is the equality itself; every other algorithm matches only when
// its similarity is strictly greater than threshold.
func (c *FieldComparator) Similarity(alg models.Algorithm, threshold float64, a, b string) (float64, bool, error) {
	var similarity float64
	switch alg {
	case models.AlgorithmExactMatch:
		if c.scorer.ExactMatch(a, b) {
			return 1, true, nil
		}
		return 0, false, nil
	case models.AlgorithmJaroWinkler:
		similarity = c.scorer.JaroWinkler(a, b)
	case models.AlgorithmLCS:
		similarity = c.scorer.LCS(a, b)
	case models.AlgorithmLevenshtein:
		similarity = c.scorer.Levenshtein(a, b)
	case models.AlgorithmDice:
		similarity = c.scorer.Dice(a, b)
	default:
		return 0, false, models.NewConfigurationError("unexpected algorithm")
	}
	return similarity, similarity > threshold, nil
}
