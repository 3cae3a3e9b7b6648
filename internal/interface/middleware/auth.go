package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sprintdesk/internal/application"
	"sprintdesk/pkg/helpers"
	"sprintdesk/pkg/response"
)

// Auth resolves the session cookie to a server-side session and rejects the
// request unless the session is authenticated. It sets userID, userRole,
// userEmail, userName and sessionToken in the Gin context on success.
func Auth(sessions *application.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(helpers.SessionCookie)
		if err != nil || token == "" {
			response.Error[any](c, http.StatusUnauthorized, "not authenticated", nil)
			c.Abort()
			return
		}
		sess, err := sessions.Lookup(c.Request.Context(), token)
		if err != nil || !sess.Authenticated() {
			response.Error[any](c, http.StatusUnauthorized, "not authenticated", nil)
			c.Abort()
			return
		}

		c.Set("userID", sess.UserID)
		c.Set("userRole", string(sess.Role))
		c.Set("userEmail", sess.Email)
		c.Set("userName", sess.Username)
		c.Set("sessionToken", token)
		c.Next()
	}
}
