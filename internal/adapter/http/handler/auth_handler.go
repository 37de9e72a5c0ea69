package handler

import (
	"log/slog"
	"net/http"

	. "tasksapi/internal/adapter/http/helper"
	. "tasksapi/internal/adapter/http/validation"
	"tasksapi/internal/core/model/request"
	"tasksapi/internal/core/model/response"
	"tasksapi/internal/core/port"
	"tasksapi/internal/core/util"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc port.AuthService
}

func NewAuthHandler(svc port.AuthService) *AuthHandler {
	return &AuthHandler{
		svc: svc,
	}
}

// ObtainToken exchanges a username and password for a signed token.
func (a *AuthHandler) ObtainToken(c *gin.Context) {
	ctx := c.Request.Context()

	params, err := util.ParamsToMap(c)
	if err != nil {
		SendParseError(c, err)
		return
	}

	var req request.LoginRequest
	if err := Bind(params, &req); err != nil {
		SendServiceError(c, err)
		return
	}

	user, err := a.svc.Authenticate(ctx, &req)
	if err != nil {
		SendServiceError(c, err)
		return
	}

	token, err := a.svc.IssueToken(user)
	if err != nil {
		slog.ErrorContext(ctx, "ObtainToken", "issue_token", err)
		SendInternalError(c)
		return
	}

	SendSuccess(c, http.StatusOK, response.TokenResponse{Token: token})
}
