package handler

import (
	"errors"
	"strconv"

	. "tasksapi/internal/adapter/http/helper"
	"tasksapi/internal/core/domain"

	"github.com/gin-gonic/gin"
)

// pathID parses the :id route parameter. Anything but a positive integer
// answers 404, the same as an id that does not exist.
func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		SendNotFoundError(c, MessageNotFound)
		return 0, false
	}

	return id, true
}

func isClientError(err error) bool {
	if _, ok := domain.IsFieldErrors(err); ok {
		return true
	}

	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrInvalidPage) ||
		errors.Is(err, domain.ErrInvalidCredentials) ||
		errors.Is(err, domain.ErrInvalidToken)
}
