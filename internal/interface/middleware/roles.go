package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sprintdesk/internal/domain/entity"
	"sprintdesk/pkg/response"
)

// RequireRoles is the authorization gate for mutating endpoints: no session
// yields 401, a session whose role is not in the allowed set yields 403.
// It must run after Auth.
func RequireRoles(roles ...entity.Role) gin.HandlerFunc {
	allowed := make(map[entity.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		role := entity.Role(c.GetString("userRole"))
		if role == "" {
			response.Error[any](c, http.StatusUnauthorized, "not authenticated", nil)
			c.Abort()
			return
		}
		if _, ok := allowed[role]; !ok {
			response.Error[any](c, http.StatusForbidden, "insufficient role", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
