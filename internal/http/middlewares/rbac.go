package middlewares

import (
	"net/http"
	"slices"

	"github.com/geocoder89/libraryhub/internal/domain/user"
	"github.com/geocoder89/libraryhub/internal/http/apierror"
	"github.com/gin-gonic/gin"
)

// RequireRoles admits the listed roles exactly. With no roles any
// authenticated caller passes.
func (m *AuthMiddleware) RequireRoles(roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)

		if !ok {
			m.prom.IncAuthFailure("unauthorized")
			apierror.Abort(c, http.StatusUnauthorized, apierror.Unauthorized, "Authentication required")
			return
		}

		if len(roles) > 0 && !slices.Contains(roles, user.Role(role)) {
			m.prom.IncAuthFailure("forbidden")
			apierror.Abort(c, http.StatusForbidden, apierror.Forbidden, "Insufficient role")
			return
		}
		c.Next()
	}
}
