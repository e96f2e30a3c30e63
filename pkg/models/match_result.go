package models

// MatchStatus is the disposition of a scored pair
type MatchStatus string

const (
	MatchStatusUnknown  MatchStatus = "unknown"   // Not yet classified
	MatchStatusMatch    MatchStatus = "match"     // Classified as the same person
	MatchStatusNonMatch MatchStatus = "non_match" // Classified as different people
)

// Scores are the values a scoring model derives from a match vector
type Scores struct {
	Score            float64
	InclusiveScore   float64
	TrueProbability  float64
	FalseProbability float64
	Sensitivity      float64
	Specificity      float64
	ScoreVector      map[string]float64
}

// MatchResult is a snapshot of one scored record pair. Results are never
// mutated; the With* methods return modified copies.
type MatchResult struct {
	score            float64
	inclusiveScore   float64
	trueProbability  float64
	falseProbability float64
	sensitivity      float64
	specificity      float64
	scoreVector      map[string]float64
	vector           *MatchVector
	record1          Record
	record2          Record
	config           *MatchingConfig
	certainty        float64
	status           MatchStatus
}

// NewMatchResult creates a result from model scores for a vector and its record pair
func NewMatchResult(scores Scores, vector *MatchVector, rec1, rec2 Record, cfg *MatchingConfig) *MatchResult {
	sv := make(map[string]float64, len(scores.ScoreVector))
	for k, v := range scores.ScoreVector {
		sv[k] = v
	}
	return &MatchResult{
		score:            scores.Score,
		inclusiveScore:   scores.InclusiveScore,
		trueProbability:  scores.TrueProbability,
		falseProbability: scores.FalseProbability,
		sensitivity:      scores.Sensitivity,
		specificity:      scores.Specificity,
		scoreVector:      sv,
		vector:           vector,
		record1:          rec1,
		record2:          rec2,
		config:           cfg,
		status:           MatchStatusUnknown,
	}
}

func (r *MatchResult) Score() float64            { return r.score }
func (r *MatchResult) InclusiveScore() float64   { return r.inclusiveScore }
func (r *MatchResult) TrueProbability() float64  { return r.trueProbability }
func (r *MatchResult) FalseProbability() float64 { return r.falseProbability }
func (r *MatchResult) Sensitivity() float64      { return r.sensitivity }
func (r *MatchResult) Specificity() float64      { return r.specificity }
func (r *MatchResult) MatchVector() *MatchVector { return r.vector }
func (r *MatchResult) Record1() Record           { return r.record1 }
func (r *MatchResult) Record2() Record           { return r.record2 }
func (r *MatchResult) Config() *MatchingConfig   { return r.config }
func (r *MatchResult) Certainty() float64        { return r.certainty }
func (r *MatchResult) Status() MatchStatus       { return r.status }

// ScoreVector returns a copy of the per-field score contributions
func (r *MatchResult) ScoreVector() map[string]float64 {
	sv := make(map[string]float64, len(r.scoreVector))
	for k, v := range r.scoreVector {
		sv[k] = v
	}
	return sv
}

// Scores returns the derived scores held by the result
func (r *MatchResult) Scores() Scores {
	return Scores{
		Score:            r.score,
		InclusiveScore:   r.inclusiveScore,
		TrueProbability:  r.trueProbability,
		FalseProbability: r.falseProbability,
		Sensitivity:      r.sensitivity,
		Specificity:      r.specificity,
		ScoreVector:      r.ScoreVector(),
	}
}

func (r *MatchResult) clone() *MatchResult {
	c := *r
	return &c
}

func (r *MatchResult) WithScore(score float64) *MatchResult {
	c := r.clone()
	c.score = score
	return c
}

func (r *MatchResult) WithInclusiveScore(score float64) *MatchResult {
	c := r.clone()
	c.inclusiveScore = score
	return c
}

// WithProbabilities replaces the true/false probabilities
func (r *MatchResult) WithProbabilities(trueProbability, falseProbability float64) *MatchResult {
	c := r.clone()
	c.trueProbability = trueProbability
	c.falseProbability = falseProbability
	return c
}

func (r *MatchResult) WithCertainty(certainty float64) *MatchResult {
	c := r.clone()
	c.certainty = certainty
	return c
}

func (r *MatchResult) WithStatus(status MatchStatus) *MatchResult {
	c := r.clone()
	c.status = status
	return c
}

// Repin returns a copy of r that refers to the records, config and vector of
// src. Post-processing uses it so transforms cannot swap what a result refers to.
func (r *MatchResult) Repin(src *MatchResult) *MatchResult {
	c := r.clone()
	c.vector = src.vector
	c.record1 = src.record1
	c.record2 = src.record2
	c.config = src.config
	return c
}
