package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"sprintdesk/internal/application"
	"sprintdesk/internal/container"
	"sprintdesk/internal/domain/entity"
	handlers "sprintdesk/internal/interface/http"
	"sprintdesk/internal/interface/middleware"
)

// ProjectModule wires project, team and work-item routes. Everything here
// requires an authenticated session; destructive operations additionally
// require elevated roles.

type ProjectModule struct {
	Projects  *handlers.ProjectHandler
	WorkItems *handlers.WorkItemHandler
	Sessions  *application.SessionService
}

func NewProjectModule(p *handlers.ProjectHandler, w *handlers.WorkItemHandler, sessions *application.SessionService) *ProjectModule {
	return &ProjectModule{Projects: p, WorkItems: w, Sessions: sessions}
}

func (m *ProjectModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Sessions))
	auth.Use(middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByUserID(), nil))

	elevated := middleware.RequireRoles(entity.RoleAdmin, entity.RoleScrumMaster)
	adminOnly := middleware.RequireRoles(entity.RoleAdmin)
	{
		auth.GET("/projects", m.Projects.List)
		auth.POST("/projects", elevated, m.Projects.Create)
		auth.GET("/projects/:id", m.Projects.Get)
		auth.PUT("/projects/:id", elevated, m.Projects.Update)
		auth.DELETE("/projects/:id", adminOnly, m.Projects.Delete)
		auth.POST("/projects/:id/key-reset", adminOnly, m.Projects.ResetKey)

		auth.POST("/projects/:id/teams", elevated, m.Projects.CreateTeam)
		auth.POST("/teams/:id/members", elevated, m.Projects.AddMember)

		auth.GET("/projects/:id/work-items", m.WorkItems.List)
		auth.POST("/projects/:id/work-items", m.WorkItems.Create)
		auth.PUT("/work-items/:id", m.WorkItems.Update)
		auth.DELETE("/work-items/:id", elevated, m.WorkItems.Delete)
		// Search work items via Elasticsearch
		auth.GET("/work-items/search", m.WorkItems.Search)
	}
}
