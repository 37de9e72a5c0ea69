package helper

import (
	"errors"
	"log/slog"
	"net/http"

	"tasksapi/internal/core/domain"
	"tasksapi/internal/core/model/response"
	"tasksapi/pkg/auth"

	"github.com/gin-gonic/gin"
)

const (
	AuthenticateHeader = `JWT realm="api"`

	MessageNotFound           = "Not found."
	MessageInvalidPage        = "Invalid page."
	MessageNotAuthenticated   = "Authentication credentials were not provided."
	MessageInvalidToken       = "Invalid token."
	MessageInvalidCredentials = "Unable to log in with provided credentials."
	MessageServerError        = "A server error occurred."
	MessageThrottled          = "Request was throttled."
)

func SendSuccess(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, data)
}

func SendNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func SendDetail(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, response.DetailResponse{Detail: message})
}

func SendFieldErrors(c *gin.Context, errs domain.FieldErrors) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errs)
}

// SendParseError reports a payload that is not a JSON object or form.
func SendParseError(c *gin.Context, err error) {
	SendDetail(c, http.StatusBadRequest, "JSON parse error - "+err.Error())
}

func SendNotFoundError(c *gin.Context, message string) {
	SendDetail(c, http.StatusNotFound, message)
}

func SendUnauthorizedError(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", AuthenticateHeader)
	SendDetail(c, http.StatusUnauthorized, message)
}

func SendInternalError(c *gin.Context) {
	SendDetail(c, http.StatusInternalServerError, MessageServerError)
}

// SendServiceError writes the response matching an error returned by a
// service. Unknown errors become a 500 with a generic message.
func SendServiceError(c *gin.Context, err error) {
	if fe, ok := domain.IsFieldErrors(err); ok {
		SendFieldErrors(c, fe)
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		SendNotFoundError(c, MessageNotFound)
	case errors.Is(err, domain.ErrInvalidPage):
		SendNotFoundError(c, MessageInvalidPage)
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.AbortWithStatusJSON(http.StatusBadRequest, response.NonFieldErrorsResponse{
			NonFieldErrors: []string{MessageInvalidCredentials},
		})
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, auth.ErrMissingToken):
		SendUnauthorizedError(c, MessageNotAuthenticated)
	case errors.Is(err, domain.ErrInvalidToken), errors.Is(err, auth.ErrInvalidToken):
		SendUnauthorizedError(c, MessageInvalidToken)
	default:
		slog.ErrorContext(c.Request.Context(), "unhandled service error", "error", err, "path", c.FullPath())
		SendInternalError(c)
	}
}
