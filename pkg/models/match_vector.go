package models

import (
	"sort"

	"github.com/Ramsey-B/clover/pkg/fingerprint"
)

// MatchOutcome is the comparison outcome recorded for one field
type MatchOutcome struct {
	Score float64 `json:"score"`
	Match bool    `json:"match"`
}

// MatchVector records the per-field outcome of comparing two records.
// Writes to the same field overwrite earlier ones: base comparison, then
// multi-value candidates, then interchangeable resolution.
type MatchVector struct {
	outcomes   map[string]MatchOutcome
	nullAware  bool
	nullFields map[string]bool
}

// NewMatchVector creates a plain match vector
func NewMatchVector() *MatchVector {
	return &MatchVector{
		outcomes: make(map[string]MatchOutcome),
	}
}

// NewNullDemographicsMatchVector creates a vector that also tracks which
// fields had a blank value on either record
func NewNullDemographicsMatchVector() *MatchVector {
	return &MatchVector{
		outcomes:   make(map[string]MatchOutcome),
		nullAware:  true,
		nullFields: make(map[string]bool),
	}
}

// SetMatch records the outcome for a field, replacing any earlier outcome
func (v *MatchVector) SetMatch(field string, score float64, match bool) {
	v.outcomes[field] = MatchOutcome{Score: score, Match: match}
}

// Get returns the outcome recorded for a field
func (v *MatchVector) Get(field string) (MatchOutcome, bool) {
	o, ok := v.outcomes[field]
	return o, ok
}

// Matched reports whether field was recorded as a match
func (v *MatchVector) Matched(field string) bool {
	return v.outcomes[field].Match
}

// Score returns the similarity recorded for field (0 when absent)
func (v *MatchVector) Score(field string) float64 {
	return v.outcomes[field].Score
}

// Fields returns the recorded field names in sorted order
func (v *MatchVector) Fields() []string {
	fields := make([]string, 0, len(v.outcomes))
	for f := range v.outcomes {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

func (v *MatchVector) Len() int {
	return len(v.outcomes)
}

// NullAware reports whether this is the null-demographics variant
func (v *MatchVector) NullAware() bool {
	return v.nullAware
}

// MarkNull flags field as having had a blank input. No-op on plain vectors.
func (v *MatchVector) MarkNull(field string) {
	if !v.nullAware {
		return
	}
	v.nullFields[field] = true
}

// HadNullValue reports whether field was flagged by MarkNull
func (v *MatchVector) HadNullValue(field string) bool {
	return v.nullAware && v.nullFields[field]
}

// NullFields returns the flagged fields in sorted order
func (v *MatchVector) NullFields() []string {
	fields := make([]string, 0, len(v.nullFields))
	for f := range v.nullFields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Key returns a deterministic key over the recorded outcomes.
// Null flags are not part of the key.
func (v *MatchVector) Key() string {
	data := make(map[string]any, len(v.outcomes))
	for f, o := range v.outcomes {
		data[f] = []any{o.Score, o.Match}
	}
	return fingerprint.Generate(data)
}

// Equal reports whether both vectors hold the same outcomes for the same fields
func (v *MatchVector) Equal(other *MatchVector) bool {
	if v == nil || other == nil {
		return v == other
	}
	if len(v.outcomes) != len(other.outcomes) {
		return false
	}
	for f, o := range v.outcomes {
		if oo, ok := other.outcomes[f]; !ok || oo != o {
			return false
		}
	}
	return true
}

// Clone returns a deep copy
func (v *MatchVector) Clone() *MatchVector {
	c := &MatchVector{
		outcomes:  make(map[string]MatchOutcome, len(v.outcomes)),
		nullAware: v.nullAware,
	}
	for f, o := range v.outcomes {
		c.outcomes[f] = o
	}
	if v.nullAware {
		c.nullFields = make(map[string]bool, len(v.nullFields))
		for f := range v.nullFields {
			c.nullFields[f] = true
		}
	}
	return c
}

// Outcomes returns a copy of the recorded outcomes
func (v *MatchVector) Outcomes() map[string]MatchOutcome {
	out := make(map[string]MatchOutcome, len(v.outcomes))
	for f, o := range v.outcomes {
		out[f] = o
	}
	return out
}
