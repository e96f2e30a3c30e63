package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScorer(t *testing.T) {
	s := NewScorer()

	t.Run("exact match is case sensitive", func(t *testing.T) {
		assert.True(t, s.ExactMatch("Smith", "Smith"))
		assert.False(t, s.ExactMatch("Smith", "smith"))
	})

	t.Run("jaro-winkler", func(t *testing.T) {
		assert.Equal(t, 1.0, s.JaroWinkler("MARTHA", "MARTHA"))
		assert.InDelta(t, 0.961, s.JaroWinkler("MARTHA", "MARHTA"), 0.001)
		assert.InDelta(t, 0.840, s.JaroWinkler("DWAYNE", "DUANE"), 0.001)
		assert.Equal(t, 0.0, s.JaroWinkler("", "abc"))
	})

	t.Run("longest common subsequence", func(t *testing.T) {
		assert.Equal(t, 9, s.LCSLength("John Smith", "Jon Smith"))
		assert.InDelta(t, 18.0/19.0, s.LCS("John Smith", "Jon Smith"), 1e-9)
		assert.Equal(t, 0.0, s.LCS("", "Smith"))
		assert.Equal(t, 1.0, s.LCS("", ""))
	})

	t.Run("levenshtein", func(t *testing.T) {
		assert.Equal(t, 3, s.LevenshteinDistance("kitten", "sitting"))
		assert.InDelta(t, 1.0-3.0/7.0, s.Levenshtein("kitten", "sitting"), 1e-9)
		assert.Equal(t, 1.0, s.Levenshtein("", ""))
		assert.Equal(t, 0.0, s.Levenshtein("abc", ""))
	})

	t.Run("dice", func(t *testing.T) {
		// night: ni ig gh ht / nacht: na ac ch ht -> one shared bigram
		assert.InDelta(t, 0.25, s.Dice("night", "nacht"), 1e-9)
		assert.Equal(t, 1.0, s.Dice("a", "a"))
		assert.Equal(t, 0.0, s.Dice("a", "b"))
	})

	t.Run("multibyte runes are compared as characters", func(t *testing.T) {
		assert.Equal(t, 1, s.LevenshteinDistance("José", "Jose"))
		assert.Equal(t, 3, s.LCSLength("José", "Jose"))
	})
}
