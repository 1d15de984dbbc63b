package handler

import (
	"net/http"

	"github.com/tridxis/price-agent/internal/metrics"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// AnalyzeRequest is the /analyze request body. Text is a pointer so that an
// explicitly empty string is still analyzed; only an absent field is rejected.
type AnalyzeRequest struct {
	Text *string `json:"text" binding:"required"`
}

// Analyze godoc
// @Summary      Analyze a trading question
// @Description  Classifies financial sentiment, ranks trading intent and tags entities in one pass
// @Tags         analysis
// @Accept       json
// @Produce      json
// @Param        request  body  AnalyzeRequest  true  "Text to analyze"
// @Success      200  {object}  domain.Analysis
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /analyze [post]
func (h *Handler) Analyze(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.analyze")
	defer span.End()

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.AnalysesTotal.WithLabelValues("rejected").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "text field is required"})
		return
	}

	result, err := h.analyzer.Analyze(ctx, *req.Text)
	if err != nil {
		metrics.AnalysesTotal.WithLabelValues("failed").Inc()
		span.RecordError(err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	metrics.AnalysesTotal.WithLabelValues("ok").Inc()
	span.SetAttributes(attribute.String("intent.primary", result.Intent.Primary))

	c.JSON(http.StatusOK, result)
}
