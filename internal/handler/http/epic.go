package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"project-hub/internal/middleware"
	"project-hub/internal/service"
)

// EpicHandler handles epic endpoints.
type EpicHandler struct {
	epicService *service.EpicService
}

// NewEpicHandler creates an EpicHandler.
func NewEpicHandler(epicService *service.EpicService) *EpicHandler {
	return &EpicHandler{epicService: epicService}
}

// List handles GET /api/epics?project=<uid>.
func (h *EpicHandler) List(c *gin.Context) {
	epics, err := h.epicService.List(c.Request.Context(), c.Query("project"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	payloads := make([]EpicPayload, 0, len(epics))
	for i := range epics {
		payloads = append(payloads, renderEpic(&epics[i]))
	}
	SuccessResponse(c, http.StatusOK, gin.H{"epics": payloads})
}

// Get handles GET /api/epics/:uid.
func (h *EpicHandler) Get(c *gin.Context) {
	epic, err := h.epicService.Get(c.Request.Context(), c.Param("uid"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"epic": renderEpic(epic)})
}

// CreateEpicRequest is the epic creation body.
type CreateEpicRequest struct {
	ProjectID string `json:"projectId" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Summary   string `json:"summary"`
	Color     string `json:"color"`
}

// Create handles POST /api/epics.
func (h *EpicHandler) Create(c *gin.Context) {
	var req CreateEpicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid input")
		return
	}
	actor := middleware.CurrentUser(c)
	epic, err := h.epicService.Create(c.Request.Context(), actor, service.CreateEpicInput{
		ProjectUID: req.ProjectID,
		Name:       req.Name,
		Summary:    req.Summary,
		Color:      req.Color,
	})
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, gin.H{"epic": renderEpic(epic)})
}

// UpdateEpicRequest is the epic update body.
type UpdateEpicRequest struct {
	Name    *string `json:"name"`
	Summary *string `json:"summary"`
	Color   *string `json:"color"`
	Status  *string `json:"status"`
}

// Update handles PATCH /api/epics/:uid.
func (h *EpicHandler) Update(c *gin.Context) {
	var req UpdateEpicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid input")
		return
	}
	actor := middleware.CurrentUser(c)
	epic, err := h.epicService.Update(c.Request.Context(), actor, c.Param("uid"), service.UpdateEpicInput{
		Name:    req.Name,
		Summary: req.Summary,
		Color:   req.Color,
		Status:  req.Status,
	})
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"epic": renderEpic(epic)})
}

// Delete handles DELETE /api/epics/:uid.
func (h *EpicHandler) Delete(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if err := h.epicService.Delete(c.Request.Context(), actor, c.Param("uid")); err != nil {
		HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
