package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/docvault/docvault/internal/models"
	"github.com/docvault/docvault/internal/services"
	"github.com/docvault/docvault/internal/utils"
)

// CtxUser is the gin context key holding the resolved *models.User.
const CtxUser = "user"

type apiError struct {
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

// Authenticate extracts the bearer token, resolves it to a stored user and
// puts the user into the request context. Missing, malformed, expired or
// dangling tokens all abort with 401.
func Authenticate(auth services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abortUnauthorized(c, "missing bearer token")
			return
		}
		raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if raw == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		user, err := auth.ResolveToken(c.Request.Context(), raw)
		if err != nil {
			if utils.IsCode(err, utils.CodeUnauthorized) {
				abortUnauthorized(c, "invalid or expired token")
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, apiError{
				Code:    utils.CodeInternal,
				Message: "authentication failed",
			})
			return
		}

		c.Set(CtxUser, user)
		c.Next()
	}
}

// CurrentUser fetches the authenticated user placed by Authenticate.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(CtxUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{
		Code:    utils.CodeUnauthorized,
		Message: msg,
	})
}
