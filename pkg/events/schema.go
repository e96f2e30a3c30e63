package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/Ramsey-B/clover/pkg/batch"
	"github.com/Ramsey-B/clover/pkg/models"
)

// EventType defines the type of event
type EventType string

const (
	EventTypePairScored     EventType = "pair.scored"
	EventTypeBatchCompleted EventType = "batch.completed"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID       string    `json:"event_id"`
	EventType     EventType `json:"event_type"`
	SchemaVersion string    `json:"schema_version"`
	Config        string    `json:"config"`
	RunID         string    `json:"run_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// PairScoredEvent carries a provisional result for a downstream classifier
type PairScoredEvent struct {
	BaseEvent
	PairKey          string                         `json:"pair_key"`
	Score            float64                        `json:"score"`
	InclusiveScore   float64                        `json:"inclusive_score"`
	TrueProbability  float64                        `json:"true_probability"`
	FalseProbability float64                        `json:"false_probability"`
	Sensitivity      float64                        `json:"sensitivity"`
	Specificity      float64                        `json:"specificity"`
	Certainty        float64                        `json:"certainty"`
	Status           models.MatchStatus             `json:"status"`
	Vector           map[string]models.MatchOutcome `json:"vector"`
	NullFields       []string                       `json:"null_fields,omitempty"`
	ScoreVector      map[string]float64             `json:"score_vector"`
	VectorKey        string                         `json:"vector_key"`
}

// BatchCompletedEvent is emitted once a batch run has delivered all its pairs
type BatchCompletedEvent struct {
	BaseEvent
	Pairs      int   `json:"pairs"`
	Scored     int   `json:"scored"`
	DurationMS int64 `json:"duration_ms"`
}

// NewBaseEvent creates a base event with common fields
func NewBaseEvent(eventType EventType, config, runID string) BaseEvent {
	return BaseEvent{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		SchemaVersion: SchemaVersion,
		Config:        config,
		RunID:         runID,
		Timestamp:     time.Now().UTC(),
	}
}

// NewPairScoredEvent builds the event for one batch result
func NewPairScoredEvent(res batch.Result) *PairScoredEvent {
	m := res.Match
	v := m.MatchVector()

	config := ""
	if m.Config() != nil {
		config = m.Config().Name
	}

	return &PairScoredEvent{
		BaseEvent:        NewBaseEvent(EventTypePairScored, config, res.RunID),
		PairKey:          res.Pair.Key,
		Score:            m.Score(),
		InclusiveScore:   m.InclusiveScore(),
		TrueProbability:  m.TrueProbability(),
		FalseProbability: m.FalseProbability(),
		Sensitivity:      m.Sensitivity(),
		Specificity:      m.Specificity(),
		Certainty:        m.Certainty(),
		Status:           m.Status(),
		Vector:           v.Outcomes(),
		NullFields:       v.NullFields(),
		ScoreVector:      m.ScoreVector(),
		VectorKey:        v.Key(),
	}
}

// NewBatchCompletedEvent builds the event for a finished run
func NewBatchCompletedEvent(summary *batch.Summary) *BatchCompletedEvent {
	return &BatchCompletedEvent{
		BaseEvent:  NewBaseEvent(EventTypeBatchCompleted, summary.Config, summary.RunID),
		Pairs:      summary.Pairs,
		Scored:     summary.Scored,
		DurationMS: summary.Duration.Milliseconds(),
	}
}
