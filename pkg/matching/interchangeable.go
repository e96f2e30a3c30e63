package matching

import (
	"github.com/Ramsey-B/clover/pkg/models"
)

// InterchangeableResolver propagates agreement on a concatenated comparison
// field to the fields it is built from
type InterchangeableResolver struct {
	scorer *Scorer
}

// NewInterchangeableResolver creates a resolver backed by scorer
func NewInterchangeableResolver(scorer *Scorer) *InterchangeableResolver {
	if scorer == nil {
		scorer = NewScorer()
	}
	return &InterchangeableResolver{scorer: scorer}
}

// Resolve finds the first group whose comparison field is non-blank on either
// record and compares the two concatenated values with LCS similarity. Above
// cfg.InterchangeableThreshold every constituent field is overwritten with
// (similarity, true). Only that first group is ever evaluated, whether or
// not it crosses the threshold. It returns the evaluated group, or nil.
func (r *InterchangeableResolver) Resolve(cfg *models.MatchingConfig, rec1, rec2 models.Record, v *models.MatchVector) *models.InterchangeableGroup {
	for i := range cfg.InterchangeableGroups {
		group := &cfg.InterchangeableGroups[i]

		concat1, _ := rec1.GetDemographic(group.ComparisonField)
		concat2, _ := rec2.GetDemographic(group.ComparisonField)
		if models.IsBlank(concat1) && models.IsBlank(concat2) {
			continue
		}

		similarity := r.scorer.LCS(concat1, concat2)
		if similarity > cfg.InterchangeableThreshold {
			for _, field := range group.Fields {
				v.SetMatch(field, similarity, true)
			}
		}
		return group
	}
	return nil
}
