package middleware

import (
	"tasksapi/internal/adapter/http/helper"
	"tasksapi/internal/core/domain"
	"tasksapi/internal/core/port"
	"tasksapi/pkg/auth"
	ct "tasksapi/pkg/context"

	"github.com/gin-gonic/gin"
)

const (
	UserIDKey = "x-user-id"
	UserKey   = "x-user"
)

// JWTMiddleware rejects requests without a valid token before any handler
// reads the payload. The resolved user is stored under UserIDKey and UserKey
// and in the request Current.
func JWTMiddleware(svc port.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractToken(c.GetHeader("Authorization"))
		if err != nil {
			helper.SendServiceError(c, err)
			return
		}

		user, err := svc.ResolveToken(c.Request.Context(), token)
		if err != nil {
			helper.SendServiceError(c, err)
			return
		}

		c.Set(UserIDKey, user.ID)
		c.Set(UserKey, user)

		current := GetCurrent(c)
		current.Set(ct.UserIDKey, user.ID)
		current.Set(ct.UsernameKey, user.Username)

		if _, ok := ct.FromContext(c.Request.Context()); !ok {
			c.Request = c.Request.WithContext(ct.WithCurrent(c.Request.Context(), current))
		}

		c.Next()
	}
}

// CurrentUser returns the user stored by JWTMiddleware.
func CurrentUser(c *gin.Context) (domain.User, bool) {
	value, ok := c.Get(UserKey)
	if !ok {
		return domain.User{}, false
	}

	user, ok := value.(domain.User)
	return user, ok
}
