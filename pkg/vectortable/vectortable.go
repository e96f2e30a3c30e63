// Package vectortable scores match vectors with Fellegi-Sunter agreement and
// disagreement weights derived from each field's m and u probabilities
package vectortable

import (
	"math"

	"github.com/Ramsey-B/clover/pkg/models"
)

// probabilities are kept strictly inside (0,1) so weights stay finite
const epsilon = 1e-6

type fieldWeights struct {
	m, u         float64
	agreement    float64
	disagreement float64
}

// VectorTable is a scoring model for one matching configuration
type VectorTable struct {
	weights  map[string]fieldWeights
	fallback fieldWeights
}

// New builds the weight table for the included rows of cfg. Fields that are
// not configured rows (e.g. interchangeable constituents) use the default m/u.
func New(cfg *models.MatchingConfig) *VectorTable {
	vt := &VectorTable{
		weights:  make(map[string]fieldWeights),
		fallback: newFieldWeights(models.DefaultAgreement, models.DefaultNonAgreement),
	}
	for _, row := range cfg.IncludedRows() {
		vt.weights[row.Name] = newFieldWeights(row.Agreement, row.NonAgreement)
	}
	return vt
}

func newFieldWeights(m, u float64) fieldWeights {
	m = clamp(m)
	u = clamp(u)
	return fieldWeights{
		m:            m,
		u:            u,
		agreement:    math.Log2(m / u),
		disagreement: math.Log2((1 - m) / (1 - u)),
	}
}

func clamp(p float64) float64 {
	return math.Min(math.Max(p, epsilon), 1-epsilon)
}

func (vt *VectorTable) lookup(field string) fieldWeights {
	if w, ok := vt.weights[field]; ok {
		return w
	}
	return vt.fallback
}

// AgreementWeight returns log2(m/u) for field
func (vt *VectorTable) AgreementWeight(field string) float64 {
	return vt.lookup(field).agreement
}

// DisagreementWeight returns log2((1-m)/(1-u)) for field
func (vt *VectorTable) DisagreementWeight(field string) float64 {
	return vt.lookup(field).disagreement
}

// Score derives the scores for v.
//   - Score sums the weight of every field except those flagged as null.
//   - InclusiveScore sums every field, treating null fields as disagreements.
//   - True/false probabilities are the likelihood of the agreement pattern
//     among matches (m) and non-matches (u).
//   - Sensitivity is the product of m over agreeing fields, specificity is
//     1 minus the product of u over agreeing fields.
func (vt *VectorTable) Score(v *models.MatchVector) models.Scores {
	scores := models.Scores{
		TrueProbability:  1,
		FalseProbability: 1,
		ScoreVector:      make(map[string]float64, v.Len()),
	}
	sensitivity, falsePositive := 1.0, 1.0

	for _, field := range v.Fields() {
		w := vt.lookup(field)

		weight := w.disagreement
		if v.Matched(field) {
			weight = w.agreement
			scores.TrueProbability *= w.m
			scores.FalseProbability *= w.u
			sensitivity *= w.m
			falsePositive *= w.u
		} else {
			scores.TrueProbability *= 1 - w.m
			scores.FalseProbability *= 1 - w.u
		}

		scores.ScoreVector[field] = weight
		scores.InclusiveScore += weight
		if !v.HadNullValue(field) {
			scores.Score += weight
		}
	}

	scores.Sensitivity = sensitivity
	scores.Specificity = 1 - falsePositive
	return scores
}
