// Package matching implements pairwise demographic record scoring
package matching

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Gobusters/ectologger"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Ramsey-B/clover/internal/tracing"
	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/normalizers"
)

// ScoringModel converts a completed match vector into scores. It must be a
// pure function of the vector and safe for concurrent use.
type ScoringModel interface {
	Score(v *models.MatchVector) models.Scores
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithModifiers registers modifiers in order
func WithModifiers(modifiers ...Modifier) EngineOption {
	return func(e *Engine) {
		e.modifiers = append(e.modifiers, modifiers...)
	}
}

// WithFrequencyTable shares ft instead of creating a table for the engine
func WithFrequencyTable(ft *FrequencyTable) EngineOption {
	return func(e *Engine) {
		e.frequencies = ft
	}
}

// WithMetrics records scoring metrics on m
func WithMetrics(m *metrics.Metrics) EngineOption {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithScorer replaces the similarity scorer
func WithScorer(s *Scorer) EngineOption {
	return func(e *Engine) {
		e.comparator = NewFieldComparator(s)
		e.resolver = NewInterchangeableResolver(s)
	}
}

// Engine scores record pairs against one matching configuration. ScorePair is
// safe for concurrent use; the frequency table is the only shared state.
type Engine struct {
	logger      ectologger.Logger
	config      *models.MatchingConfig
	model       ScoringModel
	comparator  *FieldComparator
	resolver    *InterchangeableResolver
	frequencies *FrequencyTable
	metrics     *metrics.Metrics
	rows        []compiledRow

	mu        sync.RWMutex
	modifiers ModifierChain
}

type compiledRow struct {
	models.MatchingConfigRow
	multiValued bool
	normalize   normalizers.Chain
}

// NewEngine validates cfg and creates an engine with an empty frequency table
func NewEngine(cfg *models.MatchingConfig, model ScoringModel, logger ectologger.Logger, opts ...EngineOption) (*Engine, error) {
	if cfg == nil {
		return nil, models.NewConfigurationError("matching configuration is required")
	}
	if model == nil {
		return nil, models.NewConfigurationError("scoring model is required").AddConfig(cfg.Name)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	scorer := NewScorer()
	e := &Engine{
		logger:      logger,
		config:      cfg,
		model:       model,
		comparator:  NewFieldComparator(scorer),
		resolver:    NewInterchangeableResolver(scorer),
		frequencies: NewFrequencyTable(),
	}
	for _, opt := range opts {
		opt(e)
	}

	for _, row := range cfg.IncludedRows() {
		chain, err := normalizers.Compile(row.Normalizers...)
		if err != nil {
			return nil, models.NewConfigurationError(err.Error()).AddConfig(cfg.Name).AddField(row.Name)
		}
		e.rows = append(e.rows, compiledRow{
			MatchingConfigRow: row,
			multiValued:       cfg.IsMultiValued(row),
			normalize:         chain,
		})
	}

	return e, nil
}

// AddModifier appends m to the modifier chain
func (e *Engine) AddModifier(m Modifier) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.modifiers = append(e.modifiers, m)
}

// Config returns the matching configuration
func (e *Engine) Config() *models.MatchingConfig {
	return e.config
}

// ObservedVectors returns the frequency table of observed match vectors
func (e *Engine) ObservedVectors() *FrequencyTable {
	return e.frequencies
}

// ScorePair scores rec1 against rec2
func (e *Engine) ScorePair(rec1, rec2 models.Record) (*models.MatchResult, error) {
	return e.ScorePairContext(context.Background(), rec1, rec2)
}

// ScorePairContext scores rec1 against rec2, tracing the call on ctx.
// The returned result is provisional: certainty 1 and status unknown.
func (e *Engine) ScorePairContext(ctx context.Context, rec1, rec2 models.Record) (*models.MatchResult, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.Engine.ScorePair", attribute.String("config", e.config.Name))
	defer span.End()

	start := time.Now()

	var mv *models.MatchVector
	if rec1.HasNullValues() || rec2.HasNullValues() {
		mv = models.NewNullDemographicsMatchVector()
	} else {
		mv = models.NewMatchVector()
	}

	for _, row := range e.rows {
		if err := e.compareRow(mv, row, rec1, rec2); err != nil {
			e.fail(ctx, err, "configuration", row.Name)
			return nil, err
		}
	}

	e.resolver.Resolve(e.config, rec1, rec2, mv)

	result := models.NewMatchResult(e.model.Score(mv), mv, rec1, rec2, e.config)

	e.mu.RLock()
	chain := e.modifiers
	e.mu.RUnlock()

	result, err := chain.Apply(result, e.config)
	if err != nil {
		e.fail(ctx, err, "modifier", "")
		return nil, err
	}

	result = result.WithCertainty(1).WithStatus(models.MatchStatusUnknown)

	e.frequencies.Increment(result.MatchVector())

	e.metrics.ObservePair(e.config.Name, time.Since(start))
	e.metrics.SetDistinctVectors(e.config.Name, e.frequencies.Len())

	e.logger.WithContext(ctx).WithFields(map[string]any{
		"config":     e.config.Name,
		"fields":     mv.Len(),
		"null_aware": mv.NullAware(),
		"score":      result.Score(),
	}).Debug("Scored record pair")

	return result, nil
}

func (e *Engine) compareRow(mv *models.MatchVector, row compiledRow, rec1, rec2 models.Record) error {
	value1, _ := rec1.GetDemographic(row.Name)
	value2, _ := rec2.GetDemographic(row.Name)

	if row.multiValued {
		delimiter := e.config.MultiFieldDelimiter
		if !row.hasValue(value1, delimiter) || !row.hasValue(value2, delimiter) {
			mv.MarkNull(row.Name)
			_, err := e.comparator.Match(mv, row.Name, row.Algorithm, row.Threshold, nil, nil)
			return err
		}

		// first matching candidate wins; otherwise the last candidate's outcome stays.
		// blank sub-values never match.
		for _, candidate := range ExpandCandidates(value1, value2, delimiter) {
			match, err := e.comparator.Match(mv, row.Name, row.Algorithm, row.Threshold,
				row.normalized(candidate.Value1), row.normalized(candidate.Value2))
			if err != nil {
				return err
			}
			if match {
				break
			}
		}
		return nil
	}

	// values that are blank before or after normalization are a non-match
	p1, p2 := row.normalized(value1), row.normalized(value2)
	if p1 == nil || p2 == nil {
		mv.MarkNull(row.Name)
	}

	_, err := e.comparator.Match(mv, row.Name, row.Algorithm, row.Threshold, p1, p2)
	return err
}

// normalized returns the normalized value, or nil when it is blank before or
// after normalization
func (r compiledRow) normalized(value string) *string {
	if models.IsBlank(value) {
		return nil
	}
	v := r.normalize.Apply(value)
	if models.IsBlank(v) {
		return nil
	}
	return &v
}

// hasValue reports whether any sub-value of value survives normalization
func (r compiledRow) hasValue(value, delimiter string) bool {
	for _, token := range splitValues(value, delimiter) {
		if r.normalized(token) != nil {
			return true
		}
	}
	return false
}

func (e *Engine) fail(ctx context.Context, err error, reason, field string) {
	var ce *models.ConfigurationError
	if errors.As(err, &ce) && ce.Config == "" {
		ce.AddConfig(e.config.Name)
	}

	tracing.RecordError(ctx, err)
	e.metrics.IncrementError(e.config.Name, reason)

	fields := map[string]any{
		"config": e.config.Name,
		"reason": reason,
	}
	if field != "" {
		fields["field"] = field
	}
	e.logger.WithContext(ctx).WithError(err).WithFields(fields).Error("Failed to score record pair")
}
