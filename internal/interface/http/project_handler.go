package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"sprintdesk/internal/application"
	"sprintdesk/internal/domain/entity"
	"sprintdesk/pkg/response"
	"sprintdesk/pkg/validation"
)

type ProjectHandler struct {
	Svc    *application.ProjectService
	Logger *logrus.Logger
}

func NewProjectHandler(svc *application.ProjectService, logger *logrus.Logger) *ProjectHandler {
	return &ProjectHandler{Svc: svc, Logger: logger}
}

func projectJSON(p *entity.Project) gin.H {
	return gin.H{
		"id":          p.ID,
		"name":        p.Name,
		"key":         p.Key,
		"description": p.Description,
		"owner_id":    p.OwnerID,
		"created_at":  p.CreatedAt,
		"updated_at":  p.UpdatedAt,
	}
}

func (h *ProjectHandler) fail(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, application.ErrProjectNotFound):
		response.Error[any](c, http.StatusNotFound, "project not found", nil)
	case errors.Is(err, application.ErrConflict):
		response.Error[any](c, http.StatusConflict, "duplicate name or key", nil)
	case errors.Is(err, application.ErrInvalidTeamRole):
		response.Error[any](c, http.StatusBadRequest, "invalid team role", nil)
	default:
		h.Logger.WithError(err).Error(action + " failed")
		response.Error[any](c, http.StatusInternalServerError, "something went wrong", nil)
	}
}

type projectRequest struct {
	Name        string `json:"name" binding:"required"`
	Key         string `json:"key" binding:"required,alphanum,min=2,max=10"`
	Description string `json:"description"`
}

// Create POST /projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Svc.CreateProject(c.Request.Context(), c.GetString("userID"), application.ProjectInput{
		Name: req.Name, Key: req.Key, Description: req.Description,
	})
	if err != nil {
		h.fail(c, err, "create project")
		return
	}
	response.Success(c, http.StatusCreated, projectJSON(p), "project created", nil)
}

// List GET /projects
func (h *ProjectHandler) List(c *gin.Context) {
	ps, err := h.Svc.ListProjects(c.Request.Context())
	if err != nil {
		h.fail(c, err, "list projects")
		return
	}
	out := make([]gin.H, 0, len(ps))
	for _, p := range ps {
		out = append(out, projectJSON(p))
	}
	response.Success(c, http.StatusOK, out, "projects", nil)
}

// Get GET /projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	p, err := h.Svc.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "get project")
		return
	}
	response.Success(c, http.StatusOK, projectJSON(p), "project", nil)
}

type projectUpdateRequest struct {
	Name        string `json:"name"`
	Key         string `json:"key" binding:"omitempty,alphanum,min=2,max=10"`
	Description string `json:"description"`
}

// Update PUT /projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	var req projectUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Svc.UpdateProject(c.Request.Context(), c.Param("id"), application.ProjectInput{
		Name: req.Name, Key: req.Key, Description: req.Description,
	})
	if err != nil {
		h.fail(c, err, "update project")
		return
	}
	response.Success(c, http.StatusOK, projectJSON(p), "project updated", nil)
}

// Delete DELETE /projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	if err := h.Svc.DeleteProject(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err, "delete project")
		return
	}
	response.Success[any](c, http.StatusOK, nil, "project deleted", nil)
}

type keyResetRequest struct {
	Key string `json:"key" binding:"required,alphanum,min=2,max=10"`
}

// ResetKey POST /projects/:id/key-reset
func (h *ProjectHandler) ResetKey(c *gin.Context) {
	var req keyResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Svc.ResetProjectKey(c.Request.Context(), c.Param("id"), req.Key)
	if err != nil {
		h.fail(c, err, "reset project key")
		return
	}
	response.Success(c, http.StatusOK, projectJSON(p), "project key reset", nil)
}

type teamRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateTeam POST /projects/:id/teams
func (h *ProjectHandler) CreateTeam(c *gin.Context) {
	var req teamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	t, err := h.Svc.CreateTeam(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		h.fail(c, err, "create team")
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"id":         t.ID,
		"project_id": t.ProjectID,
		"name":       t.Name,
		"created_at": t.CreatedAt,
	}, "team created", nil)
}

type addMemberRequest struct {
	UserID   string `json:"user_id" binding:"required,uuid"`
	TeamRole string `json:"team_role" binding:"required"`
}

// AddMember POST /teams/:id/members
func (h *ProjectHandler) AddMember(c *gin.Context) {
	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	m, err := h.Svc.AddTeamMember(c.Request.Context(), c.Param("id"), req.UserID, entity.TeamRole(req.TeamRole))
	if err != nil {
		h.fail(c, err, "add team member")
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"team_id":   m.TeamID,
		"user_id":   m.UserID,
		"team_role": m.Role,
	}, "member added", nil)
}
