package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/tridxis/price-agent/internal/domain"
	"github.com/tridxis/price-agent/internal/metrics"
	"github.com/tridxis/price-agent/internal/provider"

	"github.com/abadojack/whatlanggo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// SentimentModel scores the overall sentiment of a text.
type SentimentModel interface {
	ClassifySentiment(ctx context.Context, text string) (provider.LabelScore, error)
}

// IntentModel ranks a text against a fixed candidate label set, descending
// by score.
type IntentModel interface {
	RankIntents(ctx context.Context, text string, candidates []string) ([]provider.LabelScore, error)
}

// EntityModel tags entity spans in a text.
type EntityModel interface {
	TagEntities(ctx context.Context, text string) ([]provider.TokenEntity, error)
}

// Recorder persists a finished analysis. Failures are logged, never
// surfaced to the caller.
type Recorder interface {
	Record(ctx context.Context, rec domain.AnalysisRecord) error
}

// Service drives the three capabilities sequentially and shapes their raw
// outputs into one consolidated result. The models are loaded once at
// startup and treated as read-only; the service itself keeps no state
// between requests.
type Service struct {
	tracer    trace.Tracer
	logger    *zap.Logger
	sentiment SentimentModel
	intent    IntentModel
	entities  EntityModel
	recorder  Recorder
	labels    []string
}

func NewService(
	tracer trace.Tracer,
	logger *zap.Logger,
	sentiment SentimentModel,
	intent IntentModel,
	entities EntityModel,
	recorder Recorder,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		tracer:    tracer,
		logger:    logger,
		sentiment: sentiment,
		intent:    intent,
		entities:  entities,
		recorder:  recorder,
		labels:    domain.IntentLabels,
	}
}

// Analyze runs text through sentiment, intent and entity classification and
// shapes the outputs. The first failing capability aborts the call.
func (s *Service) Analyze(ctx context.Context, text string) (domain.Analysis, error) {
	ctx, span := s.tracer.Start(ctx, "analysis.analyze")
	defer span.End()
	span.SetAttributes(attribute.Int("text.length", len(text)))

	if s.sentiment == nil || s.intent == nil || s.entities == nil {
		return domain.Analysis{}, fmt.Errorf("analysis service models are not initialized")
	}

	start := time.Now()
	rawSentiment, err := s.sentiment.ClassifySentiment(ctx, text)
	metrics.InferenceDuration.WithLabelValues("sentiment").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.InferenceFailures.WithLabelValues("sentiment").Inc()
		span.RecordError(err)
		return domain.Analysis{}, fmt.Errorf("sentiment: %w", err)
	}

	start = time.Now()
	rankedIntents, err := s.intent.RankIntents(ctx, text, s.labels)
	metrics.InferenceDuration.WithLabelValues("intent").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.InferenceFailures.WithLabelValues("intent").Inc()
		span.RecordError(err)
		return domain.Analysis{}, fmt.Errorf("intent: %w", err)
	}

	start = time.Now()
	rawEntities, err := s.entities.TagEntities(ctx, text)
	metrics.InferenceDuration.WithLabelValues("entities").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.InferenceFailures.WithLabelValues("entities").Inc()
		span.RecordError(err)
		return domain.Analysis{}, fmt.Errorf("entities: %w", err)
	}

	intent, err := ShapeIntent(rankedIntents)
	if err != nil {
		span.RecordError(err)
		return domain.Analysis{}, fmt.Errorf("intent: %w", err)
	}

	result := domain.Analysis{
		Intent:    intent,
		Sentiment: domain.Sentiment{Label: rawSentiment.Label, Score: rawSentiment.Score},
		Entities:  ShapeEntities(rawEntities),
	}

	metrics.IntentsDetected.WithLabelValues(result.Intent.Primary).Inc()

	lang := detectLanguage(text)
	span.SetAttributes(
		attribute.String("intent.primary", result.Intent.Primary),
		attribute.String("sentiment.label", result.Sentiment.Label),
		attribute.Int("entities.count", len(result.Entities)),
		attribute.String("text.language", lang),
	)

	if s.recorder != nil {
		rec := domain.AnalysisRecord{
			Text:      text,
			Language:  lang,
			Result:    result,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.recorder.Record(ctx, rec); err != nil {
			s.logger.Warn("failed to record analysis", zap.Error(err))
		}
	}

	s.logger.Info("text analyzed",
		zap.String("intent", result.Intent.Primary),
		zap.String("sentiment", result.Sentiment.Label),
		zap.Int("entities", len(result.Entities)),
		zap.String("language", lang),
	)

	return result, nil
}

// detectLanguage returns the ISO 639-1 code of the detected language, or
// empty when detection is unreliable.
func detectLanguage(text string) string {
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6391()
}
