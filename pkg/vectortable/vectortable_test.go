package vectortable

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ramsey-B/clover/pkg/models"
)

func testConfig() *models.MatchingConfig {
	fn := models.NewMatchingConfigRow("fn", models.AlgorithmExactMatch, 0)
	ln := models.NewMatchingConfigRow("ln", models.AlgorithmJaroWinkler, 0.8)
	ln.Agreement = 0.95
	ln.NonAgreement = 0.05
	return models.NewMatchingConfig("test", fn, ln)
}

func TestVectorTable_Weights(t *testing.T) {
	vt := New(testConfig())

	assert.InDelta(t, math.Log2(0.9/0.1), vt.AgreementWeight("fn"), 1e-9)
	assert.InDelta(t, math.Log2(0.1/0.9), vt.DisagreementWeight("fn"), 1e-9)
	assert.InDelta(t, math.Log2(0.95/0.05), vt.AgreementWeight("ln"), 1e-9)

	t.Run("unknown fields use default probabilities", func(t *testing.T) {
		assert.Equal(t, vt.AgreementWeight("fn"), vt.AgreementWeight("middle"))
	})

	t.Run("extreme probabilities stay finite", func(t *testing.T) {
		row := models.NewMatchingConfigRow("id", models.AlgorithmExactMatch, 0)
		row.Agreement = 1
		row.NonAgreement = 0
		vt := New(models.NewMatchingConfig("edge", row))
		assert.False(t, math.IsInf(vt.AgreementWeight("id"), 0))
		assert.False(t, math.IsInf(vt.DisagreementWeight("id"), 0))
	})
}

func TestVectorTable_Score(t *testing.T) {
	vt := New(testConfig())

	t.Run("all fields agree", func(t *testing.T) {
		v := models.NewMatchVector()
		v.SetMatch("fn", 1, true)
		v.SetMatch("ln", 0.9, true)

		s := vt.Score(v)
		want := vt.AgreementWeight("fn") + vt.AgreementWeight("ln")
		assert.InDelta(t, want, s.Score, 1e-9)
		assert.InDelta(t, want, s.InclusiveScore, 1e-9)
		assert.InDelta(t, 0.9*0.95, s.TrueProbability, 1e-9)
		assert.InDelta(t, 0.1*0.05, s.FalseProbability, 1e-9)
		assert.InDelta(t, 0.9*0.95, s.Sensitivity, 1e-9)
		assert.InDelta(t, 1-0.1*0.05, s.Specificity, 1e-9)
		assert.Len(t, s.ScoreVector, 2)
	})

	t.Run("null fields are left out of the score only", func(t *testing.T) {
		v := models.NewNullDemographicsMatchVector()
		v.SetMatch("fn", 1, true)
		v.SetMatch("ln", 0, false)
		v.MarkNull("ln")

		s := vt.Score(v)
		assert.InDelta(t, vt.AgreementWeight("fn"), s.Score, 1e-9)
		assert.InDelta(t, vt.AgreementWeight("fn")+vt.DisagreementWeight("ln"), s.InclusiveScore, 1e-9)
		assert.InDelta(t, vt.DisagreementWeight("ln"), s.ScoreVector["ln"], 1e-9)
	})

	t.Run("empty vector scores zero", func(t *testing.T) {
		s := vt.Score(models.NewMatchVector())
		assert.Zero(t, s.Score)
		assert.Zero(t, s.InclusiveScore)
		assert.Equal(t, 1.0, s.TrueProbability)
		assert.Empty(t, s.ScoreVector)
	})
}
