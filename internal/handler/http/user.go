package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"project-hub/internal/middleware"
	"project-hub/internal/service"
)

// UserHandler handles account listing and administration.
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// List handles GET /api/users.
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"users": renderUsers(users)})
}

// Get handles GET /api/users/:uid.
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.userService.Get(c.Request.Context(), c.Param("uid"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"user": renderUser(user)})
}

// CreateUserRequest is the admin account-creation body. A blank password
// falls back to a starter password the user changes after first login.
type CreateUserRequest struct {
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
	Role      string `json:"role" binding:"required,oneof=admin project_manager developer viewer"`
	Avatar    string `json:"avatar"`
	IsActive  *bool  `json:"isActive"`
}

// Create handles POST /api/users.
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid input")
		return
	}
	actor := middleware.CurrentUser(c)
	user, err := h.userService.Create(c.Request.Context(), actor, service.CreateUserInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
		Role:      req.Role,
		Avatar:    req.Avatar,
		IsActive:  req.IsActive,
	})
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusCreated, gin.H{"user": renderUser(user)})
}

// UpdateUserRequest is the account update body. Omitted fields stay unchanged.
type UpdateUserRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Avatar    *string `json:"avatar"`
	Role      *string `json:"role" binding:"omitempty,oneof=admin project_manager developer viewer"`
	IsActive  *bool   `json:"isActive"`
}

// Update handles PATCH /api/users/:uid.
func (h *UserHandler) Update(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid input")
		return
	}
	actor := middleware.CurrentUser(c)
	user, err := h.userService.Update(c.Request.Context(), actor, c.Param("uid"), service.UpdateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Avatar:    req.Avatar,
		Role:      req.Role,
		IsActive:  req.IsActive,
	})
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"user": renderUser(user)})
}

// Delete handles DELETE /api/users/:uid.
func (h *UserHandler) Delete(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	if err := h.userService.Delete(c.Request.Context(), actor, c.Param("uid")); err != nil {
		HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
