package modifiers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/models"
)

func newResult(score, inclusive float64, nullFields ...string) *models.MatchResult {
	v := models.NewNullDemographicsMatchVector()
	for _, f := range nullFields {
		v.SetMatch(f, 0, false)
		v.MarkNull(f)
	}
	return models.NewMatchResult(models.Scores{Score: score, InclusiveScore: inclusive}, v, nil, nil, nil)
}

func TestNullFieldPenalty(t *testing.T) {
	t.Run("should subtract the penalty per null field", func(t *testing.T) {
		out, err := NullFieldPenalty{Penalty: 0.5}.Modify(newResult(4, 4, "dob", "ssn"), nil)
		require.NoError(t, err)
		assert.Equal(t, 3.0, out.Score())
		assert.Equal(t, 4.0, out.InclusiveScore())
	})

	t.Run("should leave results without null fields alone", func(t *testing.T) {
		in := newResult(4, 4)
		out, err := NullFieldPenalty{Penalty: 0.5}.Modify(in, nil)
		require.NoError(t, err)
		assert.Same(t, in, out)
	})

	t.Run("should reject a negative penalty", func(t *testing.T) {
		_, err := NullFieldPenalty{Penalty: -1}.Modify(newResult(4, 4), nil)
		assert.Error(t, err)
	})
}

func TestScoreFloor(t *testing.T) {
	out, err := ScoreFloor{Floor: -2}.Modify(newResult(-5, -1), nil)
	require.NoError(t, err)
	assert.Equal(t, -2.0, out.Score())
	assert.Equal(t, -1.0, out.InclusiveScore())

	in := newResult(1, 1)
	out, err = ScoreFloor{Floor: -2}.Modify(in, nil)
	require.NoError(t, err)
	assert.Same(t, in, out)
}
