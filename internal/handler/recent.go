package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// RecentAnalyses godoc
// @Summary      List recently analyzed texts
// @Description  Returns the newest analysis results from the feed, falling back to the durable log
// @Tags         analysis
// @Produce      json
// @Param        limit  query  int  false  "Number of records (default 20, max 100)"  default(20)
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /analyses/recent [get]
func (h *Handler) RecentAnalyses(c *gin.Context) {
	if h.feed == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "analysis log unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.recent-analyses")
	defer span.End()

	limit := 20
	if l := c.Query("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	span.SetAttributes(attribute.Int("limit", limit))

	records, err := h.feed.Recent(ctx, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":    len(records),
		"analyses": records,
	})
}
