package handler

import (
	"net/http"

	. "tasksapi/internal/adapter/http/helper"
	. "tasksapi/internal/adapter/http/validation"
	"tasksapi/internal/core/model/request"
	"tasksapi/internal/core/model/response"
	"tasksapi/internal/core/port"
	"tasksapi/internal/core/util"
	"tasksapi/pkg/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	svc      port.UserService
	logger   *config.Logger
	pageSize int
}

func NewUserHandler(svc port.UserService, logger *config.Logger, pageSize int) *UserHandler {
	if logger == nil {
		logger = config.NewNopLogger()
	}

	return &UserHandler{
		svc:      svc,
		logger:   logger,
		pageSize: pageSize,
	}
}

func (u *UserHandler) ListUsers(c *gin.Context) {
	page, err := u.svc.List(c.Request.Context(), PaginationFromQuery(c, u.pageSize))
	if err != nil {
		SendServiceError(c, err)
		return
	}

	SendPage(c, page, response.NewUserResponse)
}

func (u *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user, err := u.svc.Get(c.Request.Context(), id)
	if err != nil {
		SendServiceError(c, err)
		return
	}

	SendSuccess(c, http.StatusOK, response.NewUserResponse(user))
}

func (u *UserHandler) CreateUser(c *gin.Context) {
	req, ok := bindUser(c)
	if !ok {
		return
	}

	user, err := u.svc.Create(c.Request.Context(), req)
	if err != nil {
		u.logFailure(c, "Failed to create user", err)
		SendServiceError(c, err)
		return
	}

	u.logger.InfoWithTrace(c.Request.Context(), "User created", zap.Int("user_id", user.ID))

	SendSuccess(c, http.StatusCreated, response.NewUserResponse(user))
}

func (u *UserHandler) UpdateUser(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := pathID(c)
	if !ok {
		return
	}

	if _, err := u.svc.Get(ctx, id); err != nil {
		SendServiceError(c, err)
		return
	}

	req, ok := bindUser(c)
	if !ok {
		return
	}

	user, err := u.svc.Update(ctx, id, req)
	if err != nil {
		u.logFailure(c, "Failed to update user", err, zap.Int("user_id", id))
		SendServiceError(c, err)
		return
	}

	SendSuccess(c, http.StatusOK, response.NewUserResponse(user))
}

// DeleteUser removes the user together with every task they own.
func (u *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := u.svc.Delete(c.Request.Context(), id); err != nil {
		u.logFailure(c, "Failed to delete user", err, zap.Int("user_id", id))
		SendServiceError(c, err)
		return
	}

	SendNoContent(c)
}

func (u *UserHandler) logFailure(c *gin.Context, msg string, err error, fields ...zap.Field) {
	if isClientError(err) {
		return
	}

	u.logger.ErrorWithTrace(c.Request.Context(), msg, append(fields, zap.Error(err))...)
}

func bindUser(c *gin.Context) (request.UserRequest, bool) {
	var req request.UserRequest

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
