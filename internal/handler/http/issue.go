package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"project-hub/internal/middleware"
	"project-hub/internal/service"
)

// IssueHandler handles issue, comment and link endpoints.
type IssueHandler struct {
	issueService *service.IssueService
}

// NewIssueHandler creates an IssueHandler.
func NewIssueHandler(issueService *service.IssueService) *IssueHandler {
	return &IssueHandler{issueService: issueService}
}

// List handles GET /api/issues with optional filters.
func (h *IssueHandler) List(c *gin.Context) {
	issues, err := h.issueService.List(c.Request.Context(), service.ListFilter{
		ProjectUID:      c.Query("project"),
		SprintUID:       c.Query("sprint"),
		EpicUID:         c.Query("epic"),
		AssigneeUID:     c.Query("assignee"),
		IssueType:       c.Query("type"),
		Status:          c.Query("status"),
		Search:          c.Query("search"),
		IncludeSubtasks: c.Query("includeSubtasks") == "true",
	})
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	payloads := make([]IssuePayload, 0, len(issues))
	for i := range issues {
		payloads = append(payloads, renderIssue(&issues[i], false))
	}
	SuccessResponse(c, http.StatusOK, gin.H{"issues": payloads})
}

// Get handles GET /api/issues/:uid with the full detail graph.
func (h *IssueHandler) Get(c *gin.Context) {
	issue, err := h.issueService.Get(c.Request.Context(), c.Param("uid"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"issue": renderIssue(issue, true)})
}

// CreateIssueRequest is the issue creation body.
type CreateIssueRequest struct {
	ProjectID      string   `json:"projectId" binding:"required"`
	Title          string   `json:"title" binding:"required"`
	Description    string   `json:"description"`
	IssueType      string   `json:"issueType" binding:"omitempty,oneof=story bug task epic subtask spike"`
	Priority       string   `json:"priority" binding:"omitempty,oneof=highest high medium low lowest"`
	AssigneeID     string   `json:"assigneeId"`
	SprintID       string   `json:"sprintId"`
	EpicID         string   `json:"epicId"`
	ParentID       string   `json:"parentId"`
	DueDate        string   `json:"dueDate"`
	StoryPoints    *int     `json:"storyPoints"`
	EstimatedHours *float64 `json:"estimatedHours"`
	LabelIDs       []string `json:"labelIds"`
}

// Create handles POST /api/issues.
func (h *IssueHandler) Create(c *gin.Context) {
	var req CreateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid input")
		return
	}

	input := service.CreateIssueInput{
		ProjectUID:     req.ProjectID,
		Title:          req.Title,
		Description:    req.Description,
		IssueType:      req.IssueType,
		Priority:       req.Priority,
		AssigneeUID:    req.AssigneeID,
		SprintUID:      req.SprintID,
		EpicUID:        req.EpicID,
		ParentUID:      req.ParentID,
		StoryPoints:    req.StoryPoints,
		EstimatedHours: req.EstimatedHours,
		LabelUIDs:      req.LabelIDs,
	}
	if req.DueDate != "" {
		due, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "Invalid dueDate, expected YYYY-MM-DD")
			return
		}
		input.DueDate = &due
	}

	actor := middleware.CurrentUser(c)
	issue, err := h.issueService.Create(c.Request.Context(), actor, input)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, gin.H{"issue": renderIssue(issue, false)})
}

// UpdateIssueRequest is the issue update body. Omitted fields stay unchanged;
// empty-string references clear the association.
type UpdateIssueRequest struct {
	Title          *string   `json:"title"`
	Description    *string   `json:"description"`
	IssueType      *string   `json:"issueType" binding:"omitempty,oneof=story bug task epic subtask spike"`
	Status         *string   `json:"status"`
	Priority       *string   `json:"priority" binding:"omitempty,oneof=highest high medium low lowest"`
	AssigneeID     *string   `json:"assigneeId"`
	SprintID       *string   `json:"sprintId"`
	EpicID         *string   `json:"epicId"`
	DueDate        *string   `json:"dueDate"`
	StoryPoints    *int      `json:"storyPoints"`
	EstimatedHours *float64  `json:"estimatedHours"`
	LabelIDs       *[]string `json:"labelIds"`
}

// Update handles PATCH /api/issues/:uid.
func (h *IssueHandler) Update(c *gin.Context) {
	var req UpdateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid input")
		return
	}

	input := service.UpdateIssueInput{
		Title:       req.Title,
		Description: req.Description,
		IssueType:   req.IssueType,
		Status:      req.Status,
		Priority:    req.Priority,
		AssigneeUID: req.AssigneeID,
		SprintUID:   req.SprintID,
		EpicUID:     req.EpicID,
		LabelUIDs:   req.LabelIDs,
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			var cleared *time.Time
			input.DueDate = &cleared
		} else {
			due, err := time.Parse("2006-01-02", *req.DueDate)
			if err != nil {
				ErrorResponse(c, http.StatusBadRequest, "Invalid dueDate, expected YYYY-MM-DD")
				return
			}
			duePtr := &due
			input.DueDate = &duePtr
		}
	}
	if req.StoryPoints != nil {
		input.StoryPoints = &req.StoryPoints
	}
	if req.EstimatedHours != nil {
		input.EstimatedHours = &req.EstimatedHours
	}

	actor := middleware.CurrentUser(c)
	issue, err := h.issueService.Update(c.Request.Context(), actor, c.Param("uid"), input)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"issue": renderIssue(issue, true)})
}

// Delete handles DELETE /api/issues/:uid.
func (h *IssueHandler) Delete(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if err := h.issueService.Delete(c.Request.Context(), actor, c.Param("uid")); err != nil {
		HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CommentRequest is the comment creation/edit body.
type CommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// AddComment handles POST /api/issues/:uid/comments.
func (h *IssueHandler) AddComment(c *gin.Context) {
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: content required")
		return
	}
	actor := middleware.CurrentUser(c)
	comment, err := h.issueService.AddComment(c.Request.Context(), actor, c.Param("uid"), req.Content)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, gin.H{"comment": renderComment(comment)})
}

// EditComment handles PATCH /api/issues/:uid/comments/:commentUid.
func (h *IssueHandler) EditComment(c *gin.Context) {
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: content required")
		return
	}
	actor := middleware.CurrentUser(c)
	comment, err := h.issueService.EditComment(c.Request.Context(), actor, c.Param("uid"), c.Param("commentUid"), req.Content)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"comment": renderComment(comment)})
}

// MoveIssueRequest is the board move body.
type MoveIssueRequest struct {
	Status string `json:"status" binding:"required"`
}

// Move handles POST /api/issues/:uid/move.
func (h *IssueHandler) Move(c *gin.Context) {
	var req MoveIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: status required")
		return
	}
	actor := middleware.CurrentUser(c)
	issue, err := h.issueService.Move(c.Request.Context(), actor, c.Param("uid"), req.Status)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"issue": renderIssue(issue, false)})
}

// LogTimeRequest is the time-logging body.
type LogTimeRequest struct {
	Hours float64 `json:"hours" binding:"required,gt=0"`
}

// LogTime handles POST /api/issues/:uid/log-time.
func (h *IssueHandler) LogTime(c *gin.Context) {
	var req LogTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: positive hours required")
		return
	}
	actor := middleware.CurrentUser(c)
	issue, err := h.issueService.LogTime(c.Request.Context(), actor, c.Param("uid"), req.Hours)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"issue": renderIssue(issue, false)})
}

// Watch handles POST /api/issues/:uid/watch.
func (h *IssueHandler) Watch(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if err := h.issueService.Watch(c.Request.Context(), actor, c.Param("uid")); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"watching": true})
}

// Unwatch handles DELETE /api/issues/:uid/watch.
func (h *IssueHandler) Unwatch(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if err := h.issueService.Unwatch(c.Request.Context(), actor, c.Param("uid")); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"watching": false})
}

// LinkRequest is the issue link creation body.
type LinkRequest struct {
	TargetID string `json:"targetId" binding:"required"`
	LinkType string `json:"linkType" binding:"required"`
}

// AddLink handles POST /api/issues/:uid/links.
func (h *IssueHandler) AddLink(c *gin.Context) {
	var req LinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: targetId and linkType required")
		return
	}
	actor := middleware.CurrentUser(c)
	link, err := h.issueService.AddLink(c.Request.Context(), actor, c.Param("uid"), req.TargetID, req.LinkType)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	payload := IssueLinkPayload{ID: link.UID, LinkType: link.LinkType}
	if link.TargetIssue != nil {
		payload.TargetID = link.TargetIssue.UID
		payload.TargetKey = link.TargetIssue.Key
		payload.TargetTitle = link.TargetIssue.Title
	}
	SuccessResponse(c, http.StatusCreated, gin.H{"link": payload})
}

// RemoveLink handles DELETE /api/issues/:uid/links/:linkUid.
func (h *IssueHandler) RemoveLink(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if err := h.issueService.RemoveLink(c.Request.Context(), actor, c.Param("uid"), c.Param("linkUid")); err != nil {
		HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
