// Package app wires configuration, logging, tracing, metrics and the scoring
// pipeline into a ready to use App
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/prometheus/client_golang/prometheus"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Ramsey-B/clover/config"
	"github.com/Ramsey-B/clover/internal/tracing"
	"github.com/Ramsey-B/clover/internal/tracing/exporters"
	"github.com/Ramsey-B/clover/pkg/batch"
	"github.com/Ramsey-B/clover/pkg/events"
	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/modifiers"
	"github.com/Ramsey-B/clover/pkg/vectortable"
)

// App is a scoring pipeline for one matching configuration
type App struct {
	Config   *config.Config
	Logger   ectologger.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Engine   *matching.Engine
	Runner   *batch.Runner
	Emitter  *events.Emitter

	producer       *kafka.Producer
	tracerProvider *sdktrace.TracerProvider
}

// Option customizes New
type Option func(*options)

type options struct {
	logger     ectologger.Logger
	sink       batch.Sink
	publisher  events.Publisher
	modifiers  []matching.Modifier
	noDefaults bool
}

// WithLogger uses logger instead of building a zap logger from config
func WithLogger(logger ectologger.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithSink sends batch results to sink. When Kafka is also enabled every
// result goes to both.
func WithSink(sink batch.Sink) Option {
	return func(o *options) {
		o.sink = sink
	}
}

// WithPublisher emits events through p instead of a Kafka producer
func WithPublisher(p events.Publisher) Option {
	return func(o *options) {
		o.publisher = p
	}
}

// WithModifiers registers extra modifiers after the configured ones
func WithModifiers(m ...matching.Modifier) Option {
	return func(o *options) {
		o.modifiers = append(o.modifiers, m...)
	}
}

// WithoutMatchingDefaults uses the matching config exactly as given, so zero
// values such as an interchangeable threshold of 0 are kept
func WithoutMatchingDefaults() Option {
	return func(o *options) {
		o.noDefaults = true
	}
}

// NewLogger builds the service logger from config
func NewLogger(cfg *config.Config) (ectologger.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if cfg.PrettyLogs {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	zapLogger, err := zapCfg.Build(zap.Fields(zap.String("app", cfg.AppName)))
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return zapadapter.NewZapEctoLogger(zapLogger, nil), nil
}

// New builds an App scoring against a copy of matchCfg. Matching settings left
// at their zero value on the copy are filled from cfg unless
// WithoutMatchingDefaults is given; matchCfg itself is never modified.
func New(cfg *config.Config, matchCfg *models.MatchingConfig, opts ...Option) (*App, error) {
	if matchCfg == nil {
		return nil, models.NewConfigurationError("matching configuration is required")
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	logger := o.logger
	if logger == nil {
		var err error
		if logger, err = NewLogger(cfg); err != nil {
			return nil, err
		}
	}

	matchCfg = matchCfg.Clone()
	if !o.noDefaults {
		applyMatchingDefaults(cfg, matchCfg)
	}

	a := &App{
		Config: cfg,
		Logger: logger,
	}

	if cfg.MetricsEnabled {
		a.Registry = prometheus.NewRegistry()
		a.Metrics = metrics.New(a.Registry)
	}

	mods := make([]matching.Modifier, 0, len(o.modifiers)+1)
	if cfg.NullFieldPenalty > 0 {
		mods = append(mods, modifiers.NullFieldPenalty{Penalty: cfg.NullFieldPenalty})
	}
	mods = append(mods, o.modifiers...)

	engine, err := matching.NewEngine(matchCfg, vectortable.New(matchCfg), logger,
		matching.WithMetrics(a.Metrics),
		matching.WithModifiers(mods...),
	)
	if err != nil {
		logger.WithError(err).Error("Failed to create scoring engine")
		return nil, err
	}
	a.Engine = engine

	if cfg.TracingEnabled {
		exporter, err := newSpanExporter(cfg, logger)
		if err != nil {
			logger.WithError(err).Error("Failed to create span exporter")
			return nil, err
		}
		a.tracerProvider = sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
		tracing.SetTracer(a.tracerProvider.Tracer(cfg.AppName))
	}

	publisher := o.publisher
	if publisher == nil && cfg.KafkaEnabled {
		a.producer = kafka.NewProducer(cfg.KafkaProducerConfig(), logger)
		publisher = a.producer
	}
	if publisher != nil {
		a.Emitter = events.NewEmitter(publisher, logger)
	}

	a.Runner = batch.NewRunner(engine, combineSinks(o.sink, a.Emitter), logger,
		batch.WithWorkerCount(cfg.BatchWorkerCount),
		batch.WithMetrics(a.Metrics),
	)

	logger.WithFields(map[string]any{
		"config":  matchCfg.Name,
		"rows":    len(matchCfg.IncludedRows()),
		"workers": cfg.BatchWorkerCount,
		"kafka":   a.Emitter != nil,
		"tracing": cfg.TracingEnabled,
	}).Info("Scoring pipeline ready")

	return a, nil
}

func newSpanExporter(cfg *config.Config, logger ectologger.Logger) (sdktrace.SpanExporter, error) {
	switch cfg.TracingExporter {
	case "", "console":
		return exporters.NewConsoleExporter(logger), nil
	case "otlp":
		return exporters.NewOTLPExporter(context.Background(), cfg.OTLPConfig())
	default:
		return nil, fmt.Errorf("unsupported tracing exporter %q", cfg.TracingExporter)
	}
}

func applyMatchingDefaults(cfg *config.Config, matchCfg *models.MatchingConfig) {
	if matchCfg.MultiFieldDelimiter == "" {
		matchCfg.MultiFieldDelimiter = cfg.MultiFieldDelimiter
	}
	if matchCfg.IdentifierPrefix == "" {
		matchCfg.IdentifierPrefix = cfg.IdentifierPrefix
	}
	if matchCfg.InterchangeableThreshold == 0 {
		matchCfg.InterchangeableThreshold = cfg.InterchangeableThreshold
	}
}

// combineSinks returns nil when neither sink is set
func combineSinks(sink batch.Sink, emitter *events.Emitter) batch.Sink {
	switch {
	case sink == nil && emitter == nil:
		return nil
	case emitter == nil:
		return sink
	case sink == nil:
		return emitter
	}
	return batch.SinkFunc(func(ctx context.Context, res batch.Result) error {
		if err := sink.Consume(ctx, res); err != nil {
			return err
		}
		return emitter.Consume(ctx, res)
	})
}

// Run scores pairs and, when events are enabled, announces the finished run
func (a *App) Run(ctx context.Context, pairs []batch.Pair) (*batch.Summary, error) {
	summary, err := a.Runner.Run(ctx, pairs)
	if err != nil {
		return summary, err
	}

	if a.Emitter != nil {
		if err := a.Emitter.EmitBatchCompleted(ctx, summary); err != nil {
			return summary, err
		}
	}

	return summary, nil
}

// Close flushes the producer and tracer
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close kafka producer: %w", err))
		}
	}
	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shut down tracer provider: %w", err))
		}
		tracing.SetTracer(nil)
	}
	return errors.Join(errs...)
}
