package handler

import (
	"net/http"
	"strings"

	. "tasksapi/internal/adapter/http/helper"
	"tasksapi/internal/adapter/http/middleware"
	. "tasksapi/internal/adapter/http/validation"
	"tasksapi/internal/core/domain"
	"tasksapi/internal/core/model/request"
	"tasksapi/internal/core/model/response"
	"tasksapi/internal/core/port"
	"tasksapi/internal/core/util"
	"tasksapi/pkg/config"
	. "tasksapi/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type TaskHandler struct {
	svc      port.TaskService
	logger   *config.Logger
	pageSize int
}

func NewTaskHandler(svc port.TaskService, logger *config.Logger, pageSize int) *TaskHandler {
	if logger == nil {
		logger = config.NewNopLogger()
	}

	return &TaskHandler{
		svc:      svc,
		logger:   logger,
		pageSize: pageSize,
	}
}

// ListTasks returns the caller's tasks, optionally filtered by a
// case-insensitive search over title and description.
func (t *TaskHandler) ListTasks(c *gin.Context) {
	userID := c.GetInt(middleware.UserIDKey)

	filter := domain.TaskFilter{
		UserID:     userID,
		Search:     strings.TrimSpace(c.Query("search")),
		Pagination: PaginationFromQuery(c, t.pageSize),
	}

	ctx, span := CreateChildSpan(c.Request.Context(), "handler.task.ListTasks", []attribute.KeyValue{
		attribute.String("handler.operation", "ListTasks"),
		attribute.Int("user.id", userID),
		attribute.String("task.search", filter.Search),
		attribute.Int("task.page", filter.Page),
	})
	defer span.End()

	page, err := t.svc.List(ctx, filter)
	if err != nil {
		AddSpanError(span, err)
		SendServiceError(c, err)
		return
	}

	SendPage(c, page, response.NewTaskResponse)
}

func (t *TaskHandler) GetTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	task, err := t.svc.Get(c.Request.Context(), c.GetInt(middleware.UserIDKey), id)
	if err != nil {
		SendServiceError(c, err)
		return
	}

	SendSuccess(c, http.StatusOK, response.NewTaskResponse(task))
}

func (t *TaskHandler) CreateTask(c *gin.Context) {
	ctx := c.Request.Context()

	req, ok := bindTask(c)
	if !ok {
		return
	}

	task, err := t.svc.Create(ctx, req)
	if err != nil {
		t.logFailure(c, "Failed to create task", err)
		SendServiceError(c, err)
		return
	}

	SendSuccess(c, http.StatusCreated, response.NewTaskResponse(task))
}

// UpdateTask replaces every writable field of a task. Unknown or foreign
// ids answer 404 before the payload is looked at.
func (t *TaskHandler) UpdateTask(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.GetInt(middleware.UserIDKey)

	id, ok := pathID(c)
	if !ok {
		return
	}

	if _, err := t.svc.Get(ctx, userID, id); err != nil {
		SendServiceError(c, err)
		return
	}

	req, ok := bindTask(c)
	if !ok {
		return
	}

	task, err := t.svc.Update(ctx, userID, id, req)
	if err != nil {
		t.logFailure(c, "Failed to update task", err, zap.Int("task_id", id))
		SendServiceError(c, err)
		return
	}

	SendSuccess(c, http.StatusOK, response.NewTaskResponse(task))
}

func (t *TaskHandler) DeleteTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := t.svc.Delete(c.Request.Context(), c.GetInt(middleware.UserIDKey), id); err != nil {
		t.logFailure(c, "Failed to delete task", err, zap.Int("task_id", id))
		SendServiceError(c, err)
		return
	}

	SendNoContent(c)
}

// logFailure logs unexpected errors only; client errors are answered
// without noise.
func (t *TaskHandler) logFailure(c *gin.Context, msg string, err error, fields ...zap.Field) {
	if isClientError(err) {
		return
	}

	t.logger.ErrorWithTrace(c.Request.Context(), msg,
		append(fields, zap.Error(err), zap.Int("user_id", c.GetInt(middleware.UserIDKey)))...)
}

func bindTask(c *gin.Context) (request.TaskRequest, bool) {
	var req request.TaskRequest

	params, err := util.ParamsToMap(c)
	if err != nil {
		SendParseError(c, err)
		return req, false
	}

	if err := Bind(params, &req); err != nil {
		SendServiceError(c, err)
		return req, false
	}

	return req, true
}
