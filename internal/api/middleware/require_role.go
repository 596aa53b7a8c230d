package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docvault/docvault/internal/models"
	"github.com/docvault/docvault/internal/utils"
)

// RequireRole aborts with 403 unless the authenticated user's role is in
// the allowed set. Roles outside the closed enum never pass, whatever the
// allowed set says.
func RequireRole(allowed ...models.Role) gin.HandlerFunc {
	allow := map[models.Role]struct{}{}
	for _, a := range allowed {
		allow[a] = struct{}{}
	}

	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			abortUnauthorized(c, "missing bearer token")
			return
		}
		if !models.ValidRole(user.Role) {
			forbid(c)
			return
		}
		if _, ok := allow[user.Role]; !ok {
			forbid(c)
			return
		}
		c.Next()
	}
}

func RequireApplicant() gin.HandlerFunc { return RequireRole(models.RoleApplicant) }
func RequireRecruiter() gin.HandlerFunc { return RequireRole(models.RoleRecruiter) }

func forbid(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusForbidden, apiError{
		Code:    utils.CodeForbidden,
		Message: "forbidden",
	})
}
