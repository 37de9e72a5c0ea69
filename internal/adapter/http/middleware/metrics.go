package middleware

import (
	"strconv"
	"time"

	"tasksapi/internal/core/telemetry"

	"github.com/gin-gonic/gin"
)

// unmatchedRoute labels requests that hit no route so unknown paths do not
// grow the label set.
const unmatchedRoute = "unmatched"

func MetricsMiddleware(metrics *telemetry.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		metrics.IncrementActiveConnections(c.Request.Context())
		defer metrics.DecrementActiveConnections(c.Request.Context())

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = unmatchedRoute
		}

		metrics.RecordRequest(
			c.Request.Context(),
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
		)
	}
}
