package matching

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/models"
)

func strPtr(s string) *string {
	return &s
}

func TestFieldComparator_Match(t *testing.T) {
	c := NewFieldComparator(nil)

	t.Run("should score identical exact values as a match", func(t *testing.T) {
		v := models.NewMatchVector()
		match, err := c.Match(v, "ln", models.AlgorithmExactMatch, 0.5, strPtr("Smith"), strPtr("Smith"))
		require.NoError(t, err)
		assert.True(t, match)
		assert.Equal(t, models.MatchOutcome{Score: 1, Match: true}, mustGet(t, v, "ln"))
	})

	t.Run("should ignore the threshold for exact matching", func(t *testing.T) {
		v := models.NewMatchVector()
		match, err := c.Match(v, "ln", models.AlgorithmExactMatch, 1, strPtr("Smith"), strPtr("Smith"))
		require.NoError(t, err)
		assert.True(t, match)
	})

	t.Run("should record absent values as non-match", func(t *testing.T) {
		v := models.NewMatchVector()
		v.SetMatch("ln", 1, true)
		match, err := c.Match(v, "ln", models.AlgorithmJaroWinkler, 0.5, nil, strPtr("Smith"))
		require.NoError(t, err)
		assert.False(t, match)
		assert.Equal(t, models.MatchOutcome{Score: 0, Match: false}, mustGet(t, v, "ln"))
	})

	t.Run("should not match a score equal to the threshold", func(t *testing.T) {
		// kitten/sitting levenshtein similarity is exactly 4/7
		threshold := 1.0 - 3.0/7.0
		v := models.NewMatchVector()
		match, err := c.Match(v, "fn", models.AlgorithmLevenshtein, threshold, strPtr("kitten"), strPtr("sitting"))
		require.NoError(t, err)
		assert.False(t, match)
		assert.InDelta(t, threshold, v.Score("fn"), 1e-12)

		match, err = c.Match(v, "fn", models.AlgorithmLevenshtein, threshold-0.01, strPtr("kitten"), strPtr("sitting"))
		require.NoError(t, err)
		assert.True(t, match)
	})

	t.Run("should dispatch each algorithm", func(t *testing.T) {
		for _, alg := range []models.Algorithm{
			models.AlgorithmJaroWinkler,
			models.AlgorithmLCS,
			models.AlgorithmLevenshtein,
			models.AlgorithmDice,
		} {
			v := models.NewMatchVector()
			match, err := c.Match(v, "fn", alg, 0.99, strPtr("JOHN"), strPtr("JOHN"))
			require.NoError(t, err, alg.String())
			assert.True(t, match, alg.String())
			assert.Equal(t, 1.0, v.Score("fn"), alg.String())
		}
	})

	t.Run("should fail on an unknown algorithm without writing", func(t *testing.T) {
		v := models.NewMatchVector()
		_, err := c.Match(v, "fn", models.Algorithm(42), 0.5, strPtr("a"), strPtr("a"))
		require.Error(t, err)
		assert.True(t, models.IsConfigurationError(err))
		assert.Equal(t, "invalid configuration: field 'fn' -> algorithm 'algorithm(42)': unexpected algorithm", err.Error())
		assert.Zero(t, v.Len())
	})
}

func mustGet(t *testing.T, v *models.MatchVector, field string) models.MatchOutcome {
	t.Helper()
	o, ok := v.Get(field)
	require.True(t, ok, "field %s missing", field)
	return o
}

func TestExpandCandidates(t *testing.T) {
	t.Run("should produce the cross product in row-major order", func(t *testing.T) {
		pairs := ExpandCandidates("123;456", "456;789", ";")
		assert.Equal(t, []CandidatePair{
			{"123", "456"},
			{"123", "789"},
			{"456", "456"},
			{"456", "789"},
		}, pairs)
	})

	t.Run("single values yield one pair", func(t *testing.T) {
		assert.Equal(t, []CandidatePair{{"123", "123"}}, ExpandCandidates("123", "123", ";"))
	})

	t.Run("trailing delimiters are ignored", func(t *testing.T) {
		assert.Equal(t, []CandidatePair{{"1", "3"}, {"2", "3"}}, ExpandCandidates("1;2;", "3", ";"))
	})

	t.Run("empty delimiter compares whole values", func(t *testing.T) {
		assert.Equal(t, []CandidatePair{{"1;2", "3"}}, ExpandCandidates("1;2", "3", ""))
	})

	t.Run("expansion is restartable", func(t *testing.T) {
		assert.Equal(t, ExpandCandidates("a|b", "c|d", "|"), ExpandCandidates("a|b", "c|d", "|"))
	})
}

func TestInterchangeableResolver(t *testing.T) {
	cfg := models.NewMatchingConfig("names",
		models.NewMatchingConfigRow("fn", models.AlgorithmExactMatch, 0),
		models.NewMatchingConfigRow("ln", models.AlgorithmExactMatch, 0),
	)
	cfg.InterchangeableGroups = []models.InterchangeableGroup{
		{ComparisonField: "full_name", Fields: []string{"fn", "ln"}},
		{ComparisonField: "alias", Fields: []string{"fn"}},
	}
	r := NewInterchangeableResolver(nil)

	t.Run("should overwrite constituents when the concatenation agrees", func(t *testing.T) {
		rec1 := models.NewDemographicRecord("1", map[string]string{"full_name": "John Smith"})
		rec2 := models.NewDemographicRecord("2", map[string]string{"full_name": "Jon Smith"})
		v := models.NewMatchVector()
		v.SetMatch("fn", 0, false)
		v.SetMatch("ln", 1, true)

		group := r.Resolve(cfg, rec1, rec2, v)
		require.NotNil(t, group)
		assert.Equal(t, "full_name", group.ComparisonField)

		want := NewScorer().LCS("John Smith", "Jon Smith")
		assert.Equal(t, models.MatchOutcome{Score: want, Match: true}, mustGet(t, v, "fn"))
		assert.Equal(t, models.MatchOutcome{Score: want, Match: true}, mustGet(t, v, "ln"))
	})

	t.Run("should stop at the first populated group even below the threshold", func(t *testing.T) {
		rec1 := models.NewDemographicRecord("1", map[string]string{"full_name": "John Smith", "alias": "JS"})
		rec2 := models.NewDemographicRecord("2", map[string]string{"full_name": "Mary Jones", "alias": "JS"})
		v := models.NewMatchVector()
		v.SetMatch("fn", 0, false)

		group := r.Resolve(cfg, rec1, rec2, v)
		require.NotNil(t, group)
		assert.Equal(t, "full_name", group.ComparisonField)
		assert.Equal(t, models.MatchOutcome{}, mustGet(t, v, "fn"))
	})

	t.Run("should skip groups empty on both records", func(t *testing.T) {
		rec1 := models.NewDemographicRecord("1", map[string]string{"alias": "JS"})
		rec2 := models.NewDemographicRecord("2", map[string]string{"alias": "JS", "full_name": ""})
		v := models.NewMatchVector()
		v.SetMatch("fn", 0, false)

		group := r.Resolve(cfg, rec1, rec2, v)
		require.NotNil(t, group)
		assert.Equal(t, "alias", group.ComparisonField)
		assert.Equal(t, models.MatchOutcome{Score: 1, Match: true}, mustGet(t, v, "fn"))
	})

	t.Run("should compare a one-sided value against empty", func(t *testing.T) {
		rec1 := models.NewDemographicRecord("1", map[string]string{"full_name": "John Smith"})
		rec2 := models.NewDemographicRecord("2", nil)
		v := models.NewMatchVector()
		v.SetMatch("fn", 0.2, false)

		group := r.Resolve(cfg, rec1, rec2, v)
		require.NotNil(t, group)
		assert.Equal(t, 0.2, v.Score("fn"))
	})

	t.Run("should do nothing without populated groups", func(t *testing.T) {
		v := models.NewMatchVector()
		assert.Nil(t, r.Resolve(cfg, models.NewDemographicRecord("1", nil), models.NewDemographicRecord("2", nil), v))
		assert.Zero(t, v.Len())
	})
}

func TestFrequencyTable(t *testing.T) {
	newVector := func(match bool) *models.MatchVector {
		v := models.NewMatchVector()
		v.SetMatch("fn", 1, true)
		v.SetMatch("ln", 0.5, match)
		return v
	}

	t.Run("should count vectors by content", func(t *testing.T) {
		ft := NewFrequencyTable()
		assert.Zero(t, ft.Get(newVector(true)))

		assert.Equal(t, int64(1), ft.Increment(newVector(true)))
		assert.Equal(t, int64(2), ft.Increment(newVector(true)))
		assert.Equal(t, int64(1), ft.Increment(newVector(false)))

		assert.Equal(t, int64(2), ft.Get(newVector(true)))
		assert.Equal(t, int64(1), ft.Get(newVector(false)))
		assert.Equal(t, 2, ft.Len())
		assert.Equal(t, int64(3), ft.Total())
	})

	t.Run("null flags do not split entries", func(t *testing.T) {
		ft := NewFrequencyTable()
		plain := newVector(true)
		nullAware := models.NewNullDemographicsMatchVector()
		nullAware.SetMatch("fn", 1, true)
		nullAware.SetMatch("ln", 0.5, true)
		nullAware.MarkNull("ln")

		ft.Increment(plain)
		ft.Increment(nullAware)
		assert.Equal(t, int64(2), ft.Get(plain))
	})

	t.Run("stored vectors are not affected by later writes", func(t *testing.T) {
		ft := NewFrequencyTable()
		v := newVector(true)
		ft.Increment(v)
		v.SetMatch("fn", 0, false)

		snap := ft.Snapshot()
		require.Len(t, snap, 1)
		assert.True(t, snap[0].Vector.Matched("fn"))
	})

	t.Run("snapshot is ordered by count", func(t *testing.T) {
		ft := NewFrequencyTable()
		ft.Increment(newVector(false))
		ft.Increment(newVector(true))
		ft.Increment(newVector(true))

		snap := ft.Snapshot()
		require.Len(t, snap, 2)
		assert.Equal(t, int64(2), snap[0].Count)
		assert.True(t, snap[0].Vector.Equal(newVector(true)))
	})

	t.Run("concurrent increments are not lost", func(t *testing.T) {
		const workers, perWorker = 16, 250
		ft := NewFrequencyTable()

		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < perWorker; j++ {
					ft.Increment(newVector(true))
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int64(workers*perWorker), ft.Get(newVector(true)))
	})
}

func TestModifierChain(t *testing.T) {
	rec1 := models.NewDemographicRecord("1", nil)
	rec2 := models.NewDemographicRecord("2", nil)
	v := models.NewMatchVector()
	base := models.NewMatchResult(models.Scores{Score: 1}, v, rec1, rec2, nil)

	t.Run("empty chain is identity", func(t *testing.T) {
		out, err := ModifierChain(nil).Apply(base, nil)
		require.NoError(t, err)
		assert.Same(t, base, out)
	})

	t.Run("each modifier sees the previous output", func(t *testing.T) {
		var seen []float64
		add := func(delta float64) Modifier {
			return ModifierFunc(func(r *models.MatchResult, _ *models.MatchingConfig) (*models.MatchResult, error) {
				seen = append(seen, r.Score())
				return r.WithScore(r.Score() + delta), nil
			})
		}

		out, err := ModifierChain{add(1), add(10), add(100)}.Apply(base, nil)
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 2, 12}, seen)
		assert.Equal(t, 112.0, out.Score())
		assert.Equal(t, 1.0, base.Score())
	})

	t.Run("modifiers cannot swap records or vector", func(t *testing.T) {
		swap := ModifierFunc(func(r *models.MatchResult, cfg *models.MatchingConfig) (*models.MatchResult, error) {
			return models.NewMatchResult(models.Scores{Score: 5}, models.NewMatchVector(), rec2, rec1, cfg), nil
		})

		out, err := ModifierChain{swap}.Apply(base, nil)
		require.NoError(t, err)
		assert.Equal(t, 5.0, out.Score())
		assert.Same(t, v, out.MatchVector())
		assert.Equal(t, rec1, out.Record1())
		assert.Equal(t, rec2, out.Record2())
	})

	t.Run("nil output keeps the current result", func(t *testing.T) {
		noop := ModifierFunc(func(*models.MatchResult, *models.MatchingConfig) (*models.MatchResult, error) {
			return nil, nil
		})
		out, err := ModifierChain{noop}.Apply(base, nil)
		require.NoError(t, err)
		assert.Same(t, base, out)
	})

	t.Run("an error aborts the chain and keeps the last good result", func(t *testing.T) {
		boom := errors.New("boom")
		calls := 0
		double := ModifierFunc(func(r *models.MatchResult, _ *models.MatchingConfig) (*models.MatchResult, error) {
			calls++
			return r.WithScore(r.Score() * 2), nil
		})
		fail := ModifierFunc(func(*models.MatchResult, *models.MatchingConfig) (*models.MatchResult, error) {
			return nil, boom
		})

		out, err := ModifierChain{double, fail, double}.Apply(base, nil)
		assert.Nil(t, out)
		require.ErrorIs(t, err, boom)

		var merr *ModifierError
		require.ErrorAs(t, err, &merr)
		assert.Equal(t, 1, merr.Index)
		assert.Equal(t, 2.0, merr.Result.Score())
		assert.Equal(t, 1, calls)
	})
}
