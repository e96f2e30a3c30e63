package matching

import "strings"

// CandidatePair is one combination of sub-values from a multi-valued field
type CandidatePair struct {
	Value1 string
	Value2 string
}

// ExpandCandidates returns every pairing of the delimited sub-values of
// value1 and value2 in row-major order: each token of value1 in turn, paired
// with each token of value2 in turn.
func ExpandCandidates(value1, value2, delimiter string) []CandidatePair {
	if delimiter == "" {
		return []CandidatePair{{Value1: value1, Value2: value2}}
	}

	left := splitValues(value1, delimiter)
	right := splitValues(value2, delimiter)

	pairs := make([]CandidatePair, 0, len(left)*len(right))
	for _, a := range left {
		for _, b := range right {
			pairs = append(pairs, CandidatePair{Value1: a, Value2: b})
		}
	}
	return pairs
}

// splitValues splits s on delimiter and drops trailing empty tokens, so
// "123;456;" yields the same sub-values as "123;456". A value without the
// delimiter is returned whole, even when empty.
func splitValues(s, delimiter string) []string {
	parts := strings.Split(s, delimiter)
	if len(parts) == 1 {
		return parts
	}
	end := len(parts)
	for end > 0 && parts[end-1] == "" {
		end--
	}
	return parts[:end]
}
