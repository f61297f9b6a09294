package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"project-hub/internal/middleware"
	"project-hub/internal/service"
)

// ProjectHandler handles project and label endpoints.
type ProjectHandler struct {
	projectService *service.ProjectService
	userService    *service.UserService
}

// NewProjectHandler creates a ProjectHandler.
func NewProjectHandler(projectService *service.ProjectService, userService *service.UserService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService, userService: userService}
}

// List handles GET /api/projects.
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projectService.List(c.Request.Context())
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	payloads := make([]ProjectPayload, 0, len(projects))
	for i := range projects {
		payloads = append(payloads, renderProject(&projects[i]))
	}
	SuccessResponse(c, http.StatusOK, gin.H{"projects": payloads})
}

// Get handles GET /api/projects/:uid.
func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.projectService.Get(c.Request.Context(), c.Param("uid"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"project": renderProject(project)})
}

// CreateProjectRequest is the project creation body.
type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Key         string `json:"key" binding:"required,min=2,max=10"`
	Description string `json:"description"`
	LeadID      string `json:"leadId"`
	Avatar      string `json:"avatar"`
}

// Create handles POST /api/projects.
func (h *ProjectHandler) Create(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid input")
		return
	}
	actor := middleware.CurrentUser(c)

	input := service.CreateProjectInput{
		Name:        req.Name,
		Key:         req.Key,
		Description: req.Description,
		Avatar:      req.Avatar,
	}
	if req.LeadID != "" {
		lead, err := h.userService.Get(c.Request.Context(), req.LeadID)
		if err != nil {
			HandleServiceError(c, err)
			return
		}
		input.LeadID = lead.ID
	}

	project, err := h.projectService.Create(c.Request.Context(), actor, input)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, gin.H{"project": renderProject(project)})
}

// UpdateProjectRequest is the project update body.
type UpdateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	LeadID      *string `json:"leadId"`
	Avatar      *string `json:"avatar"`
}

// Update handles PATCH /api/projects/:uid.
func (h *ProjectHandler) Update(c *gin.Context) {
	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid input")
		return
	}
	actor := middleware.CurrentUser(c)

	input := service.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Avatar:      req.Avatar,
	}
	if req.LeadID != nil {
		lead, err := h.userService.Get(c.Request.Context(), *req.LeadID)
		if err != nil {
			HandleServiceError(c, err)
			return
		}
		input.LeadID = &lead.ID
	}

	project, err := h.projectService.Update(c.Request.Context(), actor, c.Param("uid"), input)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"project": renderProject(project)})
}

// Delete handles DELETE /api/projects/:uid.
func (h *ProjectHandler) Delete(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if err := h.projectService.Delete(c.Request.Context(), actor, c.Param("uid")); err != nil {
		HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListLabels handles GET /api/labels?project=<uid>.
func (h *ProjectHandler) ListLabels(c *gin.Context) {
	labels, err := h.projectService.ListLabels(c.Request.Context(), c.Query("project"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	payloads := make([]LabelPayload, 0, len(labels))
	for i := range labels {
		payloads = append(payloads, renderLabel(&labels[i]))
	}
	SuccessResponse(c, http.StatusOK, gin.H{"labels": payloads})
}

// CreateLabelRequest is the label creation body.
type CreateLabelRequest struct {
	ProjectID string `json:"projectId" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Color     string `json:"color"`
}

// CreateLabel handles POST /api/labels.
func (h *ProjectHandler) CreateLabel(c *gin.Context) {
	var req CreateLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid input")
		return
	}
	actor := middleware.CurrentUser(c)
	label, err := h.projectService.CreateLabel(c.Request.Context(), actor, req.ProjectID, req.Name, req.Color)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, gin.H{"label": renderLabel(label)})
}
