package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"project-hub/internal/middleware"
	"project-hub/internal/service"
)

// SprintHandler handles sprint endpoints.
type SprintHandler struct {
	sprintService *service.SprintService
}

// NewSprintHandler creates a SprintHandler.
func NewSprintHandler(sprintService *service.SprintService) *SprintHandler {
	return &SprintHandler{sprintService: sprintService}
}

// List handles GET /api/sprints?project=<uid>.
func (h *SprintHandler) List(c *gin.Context) {
	sprints, err := h.sprintService.List(c.Request.Context(), c.Query("project"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	payloads := make([]SprintPayload, 0, len(sprints))
	for i := range sprints {
		payloads = append(payloads, renderSprint(&sprints[i]))
	}
	SuccessResponse(c, http.StatusOK, gin.H{"sprints": payloads})
}

// Get handles GET /api/sprints/:uid.
func (h *SprintHandler) Get(c *gin.Context) {
	sprint, err := h.sprintService.Get(c.Request.Context(), c.Param("uid"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"sprint": renderSprint(sprint)})
}

// CreateSprintRequest is the sprint creation body. Dates use "2006-01-02".
type CreateSprintRequest struct {
	ProjectID string `json:"projectId" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Goal      string `json:"goal"`
	StartDate string `json:"startDate" binding:"required"`
	EndDate   string `json:"endDate" binding:"required"`
}

// Create handles POST /api/sprints.
func (h *SprintHandler) Create(c *gin.Context) {
	var req CreateSprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid input")
		return
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid startDate, expected YYYY-MM-DD")
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid endDate, expected YYYY-MM-DD")
		return
	}

	actor := middleware.CurrentUser(c)
	sprint, err := h.sprintService.Create(c.Request.Context(), actor, service.CreateSprintInput{
		ProjectUID: req.ProjectID,
		Name:       req.Name,
		Goal:       req.Goal,
		StartDate:  start,
		EndDate:    end,
	})
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, gin.H{"sprint": renderSprint(sprint)})
}

// UpdateSprintRequest is the sprint update body.
type UpdateSprintRequest struct {
	Name      *string `json:"name"`
	Goal      *string `json:"goal"`
	StartDate *string `json:"startDate"`
	EndDate   *string `json:"endDate"`
}

// Update handles PATCH /api/sprints/:uid.
func (h *SprintHandler) Update(c *gin.Context) {
	var req UpdateSprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid input")
		return
	}

	input := service.UpdateSprintInput{Name: req.Name, Goal: req.Goal}
	if req.StartDate != nil {
		start, err := time.Parse("2006-01-02", *req.StartDate)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "Invalid startDate, expected YYYY-MM-DD")
			return
		}
		input.StartDate = &start
	}
	if req.EndDate != nil {
		end, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "Invalid endDate, expected YYYY-MM-DD")
			return
		}
		input.EndDate = &end
	}

	actor := middleware.CurrentUser(c)
	sprint, err := h.sprintService.Update(c.Request.Context(), actor, c.Param("uid"), input)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"sprint": renderSprint(sprint)})
}

// Start handles POST /api/sprints/:uid/start.
func (h *SprintHandler) Start(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	sprint, err := h.sprintService.Start(c.Request.Context(), actor, c.Param("uid"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"sprint": renderSprint(sprint)})
}

// Complete handles POST /api/sprints/:uid/complete.
func (h *SprintHandler) Complete(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	sprint, err := h.sprintService.Complete(c.Request.Context(), actor, c.Param("uid"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"sprint": renderSprint(sprint)})
}

// Delete handles DELETE /api/sprints/:uid.
func (h *SprintHandler) Delete(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if err := h.sprintService.Delete(c.Request.Context(), actor, c.Param("uid")); err != nil {
		HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
