package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Root godoc
// @Summary      Service banner
// @Description  Lists the available endpoints
// @Tags         api
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       / [get]
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "price-agent",
		"endpoints": []string{
			"POST /analyze",
			"GET /analyses/recent",
			"GET /health",
			"GET /metrics",
			"GET /swagger/index.html",
		},
	})
}
