package handler

import (
	"context"
	"time"

	"github.com/tridxis/price-agent/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// TextAnalyzer runs the full classification pipeline over one text.
type TextAnalyzer interface {
	Analyze(ctx context.Context, text string) (domain.Analysis, error)
}

// RecentFeed reads the analysis log.
type RecentFeed interface {
	Recent(ctx context.Context, limit int) ([]*domain.AnalysisRecord, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
}

// HealthInfo describes the configured backend, reported by /health.
type HealthInfo struct {
	IntentBackend  string
	SentimentModel string
	IntentModel    string
	NERModel       string
}

type Handler struct {
	tracer   trace.Tracer
	analyzer TextAnalyzer
	feed     RecentFeed
	info     HealthInfo
}

func New(tracer trace.Tracer, analyzer TextAnalyzer, feed RecentFeed, info HealthInfo) *Handler {
	return &Handler{
		tracer:   tracer,
		analyzer: analyzer,
		feed:     feed,
		info:     info,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.POST("/analyze", h.Analyze)
	r.GET("/analyses/recent", h.RecentAnalyses)
}
