package job

import (
	"context"
	"log"
	"time"

	"github.com/tridxis/price-agent/internal/domain"
	"github.com/tridxis/price-agent/internal/provider"

	"go.opentelemetry.io/otel/trace"
)

// warmupProbe is a tiny representative input. Serverless inference models
// unload when idle; probing all three keeps them resident so real requests
// skip the cold start.
const warmupProbe = "is BTC going up?"

const defaultWarmupIntervalSecs = 600

// Warmable issues one inference per capability.
type Warmable interface {
	ClassifySentiment(ctx context.Context, text string) (provider.LabelScore, error)
	RankIntents(ctx context.Context, text string, candidates []string) ([]provider.LabelScore, error)
	TagEntities(ctx context.Context, text string) ([]provider.TokenEntity, error)
}

// WarmupJob periodically probes the upstream models to keep them loaded.
type WarmupJob struct {
	tracer   trace.Tracer
	models   Warmable
	interval time.Duration
}

func NewWarmupJob(tracer trace.Tracer, models Warmable, intervalSecs int) *WarmupJob {
	if intervalSecs <= 0 {
		intervalSecs = defaultWarmupIntervalSecs
	}
	return &WarmupJob{
		tracer:   tracer,
		models:   models,
		interval: time.Duration(intervalSecs) * time.Second,
	}
}

// Start probes immediately, then on every tick. Blocks until ctx is cancelled.
func (j *WarmupJob) Start(ctx context.Context) {
	log.Println("Model warmup starting...")

	j.warmRun(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Model warmup stopped")
			return
		case <-ticker.C:
			j.warmRun(ctx)
		}
	}
}

func (j *WarmupJob) warmRun(ctx context.Context) {
	ctx, span := j.tracer.Start(ctx, "warmup.run")
	defer span.End()

	if _, err := j.models.ClassifySentiment(ctx, warmupProbe); err != nil {
		log.Printf("warmup sentiment error: %v", err)
	}
	if _, err := j.models.RankIntents(ctx, warmupProbe, domain.IntentLabels); err != nil {
		log.Printf("warmup intent error: %v", err)
	}
	if _, err := j.models.TagEntities(ctx, warmupProbe); err != nil {
		log.Printf("warmup entities error: %v", err)
	}
}
