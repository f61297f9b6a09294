package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"project-hub/internal/service"
)

// ReportHandler handles read-only reporting endpoints.
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a ReportHandler.
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Dashboard handles GET /api/reports/projects/:uid/dashboard.
func (h *ReportHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.reportService.ProjectDashboard(c.Request.Context(), c.Param("uid"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"dashboard": dashboard})
}

// Burndown handles GET /api/reports/sprints/:uid/burndown.
func (h *ReportHandler) Burndown(c *gin.Context) {
	points, err := h.reportService.SprintBurndown(c.Request.Context(), c.Param("uid"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"burndown": points})
}

// Velocity handles GET /api/reports/projects/:uid/velocity.
func (h *ReportHandler) Velocity(c *gin.Context) {
	entries, err := h.reportService.ProjectVelocity(c.Request.Context(), c.Param("uid"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"velocity": entries})
}
