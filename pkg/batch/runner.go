// Package batch scores many record pairs concurrently against one engine
package batch

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/Ramsey-B/clover/internal/tracing"
	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/models"
)

const DefaultWorkerCount = 4

// PairScorer is the part of matching.Engine the runner needs
type PairScorer interface {
	ScorePairContext(ctx context.Context, rec1, rec2 models.Record) (*models.MatchResult, error)
	Config() *models.MatchingConfig
}

// Pair is one comparison to run. Key identifies the pair downstream.
type Pair struct {
	Key     string
	Record1 models.Record
	Record2 models.Record
}

// Result is a scored pair as delivered to a Sink
type Result struct {
	RunID string
	Index int
	Pair  Pair
	Match *models.MatchResult
}

// Sink receives every scored pair. Consume is called from several
// goroutines at once.
type Sink interface {
	Consume(ctx context.Context, result Result) error
}

// SinkFunc adapts a function to a Sink
type SinkFunc func(ctx context.Context, result Result) error

func (f SinkFunc) Consume(ctx context.Context, result Result) error {
	return f(ctx, result)
}

// Summary describes a finished run
type Summary struct {
	RunID    string        `json:"run_id"`
	Config   string        `json:"config"`
	Pairs    int           `json:"pairs"`
	Scored   int           `json:"scored"`
	Duration time.Duration `json:"duration"`
}

type RunnerOption func(*Runner)

// WithWorkerCount bounds the number of pairs scored at once
func WithWorkerCount(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithMetrics records batch metrics on m
func WithMetrics(m *metrics.Metrics) RunnerOption {
	return func(r *Runner) {
		r.metrics = m
	}
}

// Runner fans pairs out to a bounded set of workers
type Runner struct {
	scorer  PairScorer
	sink    Sink
	logger  ectologger.Logger
	metrics *metrics.Metrics
	workers int
}

// NewRunner creates a runner. sink may be nil when results are not needed.
func NewRunner(scorer PairScorer, sink Sink, logger ectologger.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		scorer:  scorer,
		sink:    sink,
		logger:  logger,
		workers: DefaultWorkerCount,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run scores every pair and hands each result to the sink. It stops at the
// first scoring or sink error, or when ctx is cancelled; pairs already in
// flight finish but no new pair is started.
func (r *Runner) Run(ctx context.Context, pairs []Pair) (*Summary, error) {
	runID := uuid.New().String()
	configName := r.scorer.Config().Name

	ctx, span := tracing.StartSpan(ctx, "batch.Runner.Run",
		attribute.String("run_id", runID),
		attribute.String("config", configName),
		attribute.Int("pairs", len(pairs)),
	)
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"run_id": runID,
		"config": configName,
	})
	log.WithFields(map[string]any{
		"pairs":   len(pairs),
		"workers": r.workers,
	}).Info("Starting batch run")

	start := time.Now()
	var scored atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, pair := range pairs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			match, err := r.scorer.ScorePairContext(gctx, pair.Record1, pair.Record2)
			if err != nil {
				return fmt.Errorf("failed to score pair %d (%s): %w", i, pair.Key, err)
			}

			if r.sink != nil {
				res := Result{RunID: runID, Index: i, Pair: pair, Match: match}
				if err := r.sink.Consume(gctx, res); err != nil {
					r.metrics.IncrementError(configName, "sink")
					return fmt.Errorf("failed to deliver pair %d (%s): %w", i, pair.Key, err)
				}
			}

			scored.Add(1)
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	summary := &Summary{
		RunID:    runID,
		Config:   configName,
		Pairs:    len(pairs),
		Scored:   int(scored.Load()),
		Duration: time.Since(start),
	}
	r.metrics.ObserveBatch(summary.Duration)

	if err != nil {
		tracing.RecordError(ctx, err)
		log.WithError(err).WithField("scored", summary.Scored).Error("Batch run failed")
		return summary, err
	}

	log.WithFields(map[string]any{
		"scored":      summary.Scored,
		"duration_ms": summary.Duration.Milliseconds(),
	}).Info("Finished batch run")

	return summary, nil
}
