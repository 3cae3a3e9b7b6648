package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"sprintdesk/internal/domain/entity"
)

func rolesRouter(role string, allowed ...entity.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if role != "" {
			c.Set("userRole", role)
		}
		c.Next()
	})
	r.GET("/x", RequireRoles(allowed...), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRequireRoles(t *testing.T) {
	cases := []struct {
		name    string
		role    string
		allowed []entity.Role
		want    int
	}{
		{"no session", "", []entity.Role{entity.RoleAdmin}, http.StatusUnauthorized},
		{"role not allowed", "USER", []entity.Role{entity.RoleAdmin, entity.RoleScrumMaster}, http.StatusForbidden},
		{"admin allowed", "ADMIN", []entity.Role{entity.RoleAdmin}, http.StatusOK},
		{"scrum master allowed", "SCRUM_MASTER", []entity.Role{entity.RoleAdmin, entity.RoleScrumMaster}, http.StatusOK},
		{"admin not in user-only set", "ADMIN", []entity.Role{entity.RoleUser}, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			rolesRouter(tc.role, tc.allowed...).ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}
