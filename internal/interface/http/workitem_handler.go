package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"sprintdesk/internal/application"
	"sprintdesk/internal/domain/entity"
	"sprintdesk/pkg/response"
	"sprintdesk/pkg/validation"
)

type WorkItemHandler struct {
	Svc    *application.ProjectService
	Logger *logrus.Logger
}

func NewWorkItemHandler(svc *application.ProjectService, logger *logrus.Logger) *WorkItemHandler {
	return &WorkItemHandler{Svc: svc, Logger: logger}
}

func workItemJSON(w *entity.WorkItem) gin.H {
	return gin.H{
		"id":          w.ID,
		"project_id":  w.ProjectID,
		"type":        w.Type,
		"title":       w.Title,
		"description": w.Description,
		"status":      w.Status,
		"priority":    w.Priority,
		"assignee_id": w.AssigneeID,
		"reporter_id": w.ReporterID,
		"created_at":  w.CreatedAt,
		"updated_at":  w.UpdatedAt,
	}
}

func (h *WorkItemHandler) fail(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, application.ErrProjectNotFound):
		response.Error[any](c, http.StatusNotFound, "project not found", nil)
	case errors.Is(err, application.ErrWorkItemNotFound):
		response.Error[any](c, http.StatusNotFound, "work item not found", nil)
	case errors.Is(err, application.ErrInvalidItemType):
		response.Error[any](c, http.StatusBadRequest, "invalid work item type", nil)
	case errors.Is(err, application.ErrInvalidItemStatus):
		response.Error[any](c, http.StatusBadRequest, "invalid work item status", nil)
	case errors.Is(err, application.ErrElevatedItemType):
		response.Error[any](c, http.StatusForbidden, "this item type requires an elevated role", nil)
	default:
		h.Logger.WithError(err).Error(action + " failed")
		response.Error[any](c, http.StatusInternalServerError, "something went wrong", nil)
	}
}

type workItemRequest struct {
	Type        string  `json:"type" binding:"required"`
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    int     `json:"priority"`
	AssigneeID  *string `json:"assignee_id" binding:"omitempty,uuid"`
}

// Create POST /projects/:id/work-items
func (h *WorkItemHandler) Create(c *gin.Context) {
	var req workItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	w, err := h.Svc.CreateWorkItem(c.Request.Context(), c.Param("id"),
		c.GetString("userID"), entity.Role(c.GetString("userRole")),
		application.WorkItemInput{
			Type:        entity.WorkItemType(req.Type),
			Title:       req.Title,
			Description: req.Description,
			Status:      entity.WorkItemStatus(req.Status),
			Priority:    req.Priority,
			AssigneeID:  req.AssigneeID,
		})
	if err != nil {
		h.fail(c, err, "create work item")
		return
	}
	response.Success(c, http.StatusCreated, workItemJSON(w), "work item created", nil)
}

// List GET /projects/:id/work-items
func (h *WorkItemHandler) List(c *gin.Context) {
	items, err := h.Svc.ListWorkItems(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "list work items")
		return
	}
	out := make([]gin.H, 0, len(items))
	for _, w := range items {
		out = append(out, workItemJSON(w))
	}
	response.Success(c, http.StatusOK, out, "work items", nil)
}

type workItemUpdateRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    int     `json:"priority"`
	AssigneeID  *string `json:"assignee_id" binding:"omitempty,uuid"`
}

// Update PUT /work-items/:id
func (h *WorkItemHandler) Update(c *gin.Context) {
	var req workItemUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	w, err := h.Svc.UpdateWorkItem(c.Request.Context(), c.Param("id"), application.WorkItemInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      entity.WorkItemStatus(req.Status),
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		h.fail(c, err, "update work item")
		return
	}
	response.Success(c, http.StatusOK, workItemJSON(w), "work item updated", nil)
}

// Delete DELETE /work-items/:id
func (h *WorkItemHandler) Delete(c *gin.Context) {
	if err := h.Svc.DeleteWorkItem(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err, "delete work item")
		return
	}
	response.Success[any](c, http.StatusOK, nil, "work item deleted", nil)
}

// Search GET /work-items/search?q=...&size=...
func (h *WorkItemHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "q is required", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.SearchWorkItems(c.Request.Context(), q, size)
	if err != nil {
		h.Logger.WithError(err).Warn("work item search failed")
		response.Error[any](c, http.StatusInternalServerError, "search unavailable", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", nil)
}
