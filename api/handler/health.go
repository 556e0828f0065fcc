package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shelfscan/shelfscan/models"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// Health handles GET /api/v1/health. It sits outside auth so monitoring
// probes always work.
func Health(startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:  "healthy",
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: Version,
		})
	}
}
