package handlers

import (
	"net/http"

	"lexdesk-backend/models"
	"lexdesk-backend/service"

	"github.com/gin-gonic/gin"
)

// SettingsHandler handles HTTP requests for tenant configuration
type SettingsHandler struct {
	settingsService *service.SettingsService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// GetSettings handles GET /api/settings
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	user := currentUser(c)
	settings, err := h.settingsService.GetSettings(c.Request.Context(), user.TenantID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, settings)
}

// UpdatePrompts handles PUT /api/settings/prompts
func (h *SettingsHandler) UpdatePrompts(c *gin.Context) {
	var req models.AIPrompts
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	user := currentUser(c)
	if err := h.settingsService.UpdatePrompts(c.Request.Context(), user.TenantID, req); err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, req)
}

// UpdateOffice handles PUT /api/settings/office
func (h *SettingsHandler) UpdateOffice(c *gin.Context) {
	var req models.OfficeSettings
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	user := currentUser(c)
	if err := h.settingsService.UpdateOffice(c.Request.Context(), user.TenantID, req); err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, req)
}
