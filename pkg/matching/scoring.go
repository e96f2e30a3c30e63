package matching

// Scorer provides the string similarity algorithms used for field comparison.
// Every similarity is in [0,1]; all methods are safe for concurrent use.
type Scorer struct{}

// NewScorer creates a new Scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// ExactMatch reports case-sensitive string equality
func (s *Scorer) ExactMatch(a, b string) bool {
	return a == b
}

// JaroWinkler calculates the Jaro-Winkler similarity between two strings
func (s *Scorer) JaroWinkler(a, b string) float64 {
	if a == b {
		return 1.0
	}

	ra, rb := []rune(a), []rune(b)
	jaro := jaro(ra, rb)

	// common prefix boost, capped at 4 runes
	prefixLen := 0
	for i := 0; i < len(ra) && i < len(rb) && i < 4; i++ {
		if ra[i] != rb[i] {
			break
		}
		prefixLen++
	}

	return jaro + float64(prefixLen)*0.1*(1.0-jaro)
}

func jaro(a, b []rune) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	matchDist := max(len(a), len(b))/2 - 1
	if matchDist < 0 {
		matchDist = 0
	}

	aMatches := make([]bool, len(a))
	bMatches := make([]bool, len(b))
	matches := 0

	for i := range a {
		start := max(0, i-matchDist)
		end := min(len(b), i+matchDist+1)
		for j := start; j < end; j++ {
			if bMatches[j] || a[i] != b[j] {
				continue
			}
			aMatches[i] = true
			bMatches[j] = true
			matches++
			break
		}
	}

	if matches == 0 {
		return 0.0
	}

	transpositions := 0
	k := 0
	for i := range a {
		if !aMatches[i] {
			continue
		}
		for !bMatches[k] {
			k++
		}
		if a[i] != b[k] {
			transpositions++
		}
		k++
	}

	m := float64(matches)
	t := float64(transpositions) / 2
	return (m/float64(len(a)) + m/float64(len(b)) + (m-t)/m) / 3
}

// LCS returns the longest common subsequence similarity: twice the
// subsequence length over the combined length of both strings
func (s *Scorer) LCS(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	return 2 * float64(s.LCSLength(a, b)) / float64(total)
}

// LCSLength returns the length of the longest common subsequence
func (s *Scorer) LCSLength(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	prevRow := make([]int, len(rb)+1)
	row := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				row[j] = prevRow[j-1] + 1
			} else {
				row[j] = max(row[j-1], prevRow[j])
			}
		}
		row, prevRow = prevRow, row
	}
	return prevRow[len(rb)]
}

// Levenshtein returns 1 minus the edit distance normalized by the longer string
func (s *Scorer) Levenshtein(a, b string) float64 {
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(s.LevenshteinDistance(a, b))/float64(maxLen)
}

// LevenshteinDistance calculates the edit distance between two strings
func (s *Scorer) LevenshteinDistance(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	row := make([]int, len(rb)+1)
	prevRow := make([]int, len(rb)+1)
	for j := 0; j <= len(rb); j++ {
		prevRow[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		row[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			row[j] = min(row[j-1]+1, prevRow[j]+1, prevRow[j-1]+cost)
		}
		row, prevRow = prevRow, row
	}

	return prevRow[len(rb)]
}

// Dice returns the Sørensen–Dice coefficient over character bigrams
func (s *Scorer) Dice(a, b string) float64 {
	if a == b {
		return 1.0
	}
	ba, bb := bigrams(a), bigrams(b)
	if len(ba) == 0 || len(bb) == 0 {
		return 0.0
	}

	counts := make(map[[2]rune]int, len(ba))
	for _, g := range ba {
		counts[g]++
	}
	shared := 0
	for _, g := range bb {
		if counts[g] > 0 {
			counts[g]--
			shared++
		}
	}

	return 2 * float64(shared) / float64(len(ba)+len(bb))
}

func bigrams(s string) [][2]rune {
	r := []rune(s)
	if len(r) < 2 {
		return nil
	}
	grams := make([][2]rune, 0, len(r)-1)
	for i := 0; i < len(r)-1; i++ {
		grams = append(grams, [2]rune{r[i], r[i+1]})
	}
	return grams
}
