package middleware

import (
	"net/http"
	"time"

	"tasksapi/pkg/config"
	ct "tasksapi/pkg/context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func LoggingMiddleware(logger *config.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		if raw != "" {
			path = path + "?" + raw
		}

		ctx := c.Request.Context()
		status := c.Writer.Status()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.String("request_id", ct.RequestID(ctx)),
		}

		if userID, ok := ct.UserID(ctx); ok {
			fields = append(fields, zap.Int("user_id", userID))
		}

		if status >= http.StatusInternalServerError {
			logger.ErrorWithTrace(ctx, "HTTP Request", fields...)
			return
		}

		logger.InfoWithTrace(ctx, "HTTP Request", fields...)
	}
}
