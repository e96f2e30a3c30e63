// Package events publishes scoring events for downstream classifiers
package events

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/internal/tracing"
	"github.com/Ramsey-B/clover/pkg/batch"
	"github.com/Ramsey-B/clover/pkg/kafka"
)

// SchemaVersion is the current event schema version
const SchemaVersion = kafka.SchemaVersion

// Publisher is implemented by *kafka.Producer
type Publisher interface {
	Publish(ctx context.Context, event *kafka.Event) error
}

// Emitter turns scoring results into events. It is a batch.Sink.
type Emitter struct {
	publisher Publisher
	logger    ectologger.Logger
}

var _ batch.Sink = (*Emitter)(nil)

// NewEmitter creates a new event emitter
func NewEmitter(publisher Publisher, logger ectologger.Logger) *Emitter {
	return &Emitter{
		publisher: publisher,
		logger:    logger,
	}
}

// Consume emits a pair.scored event for res
func (e *Emitter) Consume(ctx context.Context, res batch.Result) error {
	return e.EmitPairScored(ctx, res)
}

// EmitPairScored emits a pair.scored event keyed by the pair key
func (e *Emitter) EmitPairScored(ctx context.Context, res batch.Result) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitPairScored")
	defer span.End()

	event := NewPairScoredEvent(res)

	err := e.publisher.Publish(ctx, &kafka.Event{
		Key:       event.PairKey,
		EventType: string(event.EventType),
		Config:    event.Config,
		Payload:   event,
		Timestamp: event.Timestamp,
	})
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).WithField("pair_key", event.PairKey).Error("Failed to emit pair.scored event")
		return err
	}

	return nil
}

// EmitBatchCompleted emits a batch.completed event keyed by the run ID
func (e *Emitter) EmitBatchCompleted(ctx context.Context, summary *batch.Summary) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitBatchCompleted")
	defer span.End()

	event := NewBatchCompletedEvent(summary)

	err := e.publisher.Publish(ctx, &kafka.Event{
		Key:       summary.RunID,
		EventType: string(event.EventType),
		Config:    event.Config,
		Payload:   event,
		Timestamp: event.Timestamp,
	})
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).WithField("run_id", summary.RunID).Error("Failed to emit batch.completed event")
		return err
	}

	return nil
}
