package handler

import (
	"context"
	"net/http"
	"time"

	. "tasksapi/internal/adapter/http/helper"
	"tasksapi/internal/core/model/response"
	"tasksapi/internal/core/port"

	"github.com/gin-gonic/gin"
)

const healthTimeout = 2 * time.Second

type HealthHandler struct {
	store port.HealthChecker
}

func NewHealthHandler(store port.HealthChecker) *HealthHandler {
	return &HealthHandler{store: store}
}

func (h *HealthHandler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := h.store.PingContext(ctx); err != nil {
		SendSuccess(c, http.StatusServiceUnavailable, response.HealthResponse{Status: "unavailable", Database: err.Error()})
		return
	}

	SendSuccess(c, http.StatusOK, response.HealthResponse{Status: "ok", Database: "ok"})
}
