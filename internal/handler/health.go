package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/tridxis/price-agent/internal/cache"
	"github.com/tridxis/price-agent/internal/db"

	"github.com/gin-gonic/gin"
)

const dependencyPingTimeout = 2 * time.Second

var (
	postgresStatusFunc = func(ctx context.Context) string {
		if db.Pool == nil {
			return "disabled"
		}
		pingCtx, cancel := context.WithTimeout(ctx, dependencyPingTimeout)
		defer cancel()
		if err := db.Pool.Ping(pingCtx); err != nil {
			return "unreachable"
		}
		return "ok"
	}
	redisStatusFunc = func(ctx context.Context) string {
		if cache.Client == nil {
			return "disabled"
		}
		pingCtx, cancel := context.WithTimeout(ctx, dependencyPingTimeout)
		defer cancel()
		if err := cache.Client.Ping(pingCtx).Err(); err != nil {
			return "unreachable"
		}
		return "ok"
	}
)

// Health godoc
// @Summary      Health check
// @Description  Returns service health, configured models and dependency status
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	resp := gin.H{
		"status":         "healthy",
		"intent_backend": h.info.IntentBackend,
		"models": gin.H{
			"sentiment": h.info.SentimentModel,
			"intent":    h.info.IntentModel,
			"ner":       h.info.NERModel,
		},
		"postgres": postgresStatusFunc(ctx),
		"redis":    redisStatusFunc(ctx),
	}

	if h.feed != nil {
		if count, err := h.feed.CountSince(ctx, time.Now().Add(-24*time.Hour)); err == nil {
			resp["analyses_24h"] = count
		}
	}

	c.JSON(http.StatusOK, resp)
}
