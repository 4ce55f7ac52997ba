package handlers

import (
	"net/http"

	"lexdesk-backend/service"

	"github.com/gin-gonic/gin"
)

// UserHandler handles HTTP requests for tenant user administration
type UserHandler struct {
	userService *service.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Me handles GET /api/users/me
func (h *UserHandler) Me(c *gin.Context) {
	respondData(c, http.StatusOK, currentUser(c))
}

// ListUsers handles GET /api/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	user := currentUser(c)
	users, err := h.userService.ListUsers(c.Request.Context(), user.TenantID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, users)
}

// InviteUserRequest represents the request body for inviting a colleague
type InviteUserRequest struct {
	Email string `json:"email" binding:"required"`
	Name  string `json:"name" binding:"required"`
	Role  string `json:"role" binding:"required"`
}

// InviteUser handles POST /api/users/invite
func (h *UserHandler) InviteUser(c *gin.Context) {
	var req InviteUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	user := currentUser(c)
	result, err := h.userService.InviteUser(c.Request.Context(), service.InviteUserRequest{
		TenantID: user.TenantID,
		Email:    req.Email,
		Name:     req.Name,
		Role:     req.Role,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusCreated, gin.H{
		"user":          result.User,
		"temp_password": result.TempPassword,
	})
}

// DeactivateUser handles POST /api/users/:id/deactivate
func (h *UserHandler) DeactivateUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user := currentUser(c)
	if err := h.userService.DeactivateUser(c.Request.Context(), user.TenantID, user.ID, id); err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"deactivated": true})
}
