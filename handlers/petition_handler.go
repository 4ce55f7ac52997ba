package handlers

import (
	"net/http"

	"lexdesk-backend/models"
	"lexdesk-backend/service"

	"github.com/gin-gonic/gin"
)

// PetitionHandler handles HTTP requests for petitions
type PetitionHandler struct {
	petitionService *service.PetitionService
}

// NewPetitionHandler creates a new petition handler
func NewPetitionHandler(petitionService *service.PetitionService) *PetitionHandler {
	return &PetitionHandler{petitionService: petitionService}
}

// CreatePetitionRequest represents the request body for creating a petition
type CreatePetitionRequest struct {
	Title           string   `json:"title"`
	Area            string   `json:"area" binding:"required"`
	Type            string   `json:"type" binding:"required"`
	Facts           string   `json:"facts"`
	AttachmentPaths []string `json:"attachment_paths"`
}

// CreatePetition handles POST /api/petitions
func (h *PetitionHandler) CreatePetition(c *gin.Context) {
	var req CreatePetitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	user := currentUser(c)
	result, err := h.petitionService.CreatePetition(c.Request.Context(), service.CreatePetitionRequest{
		TenantID:        user.TenantID,
		UserID:          user.ID,
		Title:           req.Title,
		Area:            req.Area,
		Type:            req.Type,
		Facts:           req.Facts,
		AttachmentPaths: req.AttachmentPaths,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusCreated, result.Petition)
}

// GetPetition handles GET /api/petitions/:id
func (h *PetitionHandler) GetPetition(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user := currentUser(c)
	petition, err := h.petitionService.GetPetition(c.Request.Context(), user.TenantID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, petition)
}

// ListPetitions handles GET /api/petitions
func (h *PetitionHandler) ListPetitions(c *gin.Context) {
	user := currentUser(c)
	limit, offset := listParams(c)

	var status *models.PetitionStatus
	if v := c.Query("status"); v != "" {
		s := models.PetitionStatus(v)
		status = &s
	}

	petitions, err := h.petitionService.ListPetitions(c.Request.Context(), user.TenantID, status, limit, offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, petitions)
}

// UpdatePetitionRequest represents the request body for editing a draft
type UpdatePetitionRequest struct {
	Title           *string  `json:"title"`
	Facts           *string  `json:"facts"`
	AttachmentPaths []string `json:"attachment_paths"`
}

// UpdatePetition handles PUT /api/petitions/:id
func (h *PetitionHandler) UpdatePetition(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdatePetitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	user := currentUser(c)
	petition, err := h.petitionService.UpdateDraft(c.Request.Context(), service.UpdateDraftRequest{
		TenantID:        user.TenantID,
		ID:              id,
		Title:           req.Title,
		Facts:           req.Facts,
		AttachmentPaths: req.AttachmentPaths,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, petition)
}

// DeletePetition handles DELETE /api/petitions/:id
func (h *PetitionHandler) DeletePetition(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user := currentUser(c)
	if err := h.petitionService.DeletePetition(c.Request.Context(), user.TenantID, id); err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"deleted": true})
}

// Analyze handles POST /api/petitions/:id/analyze
func (h *PetitionHandler) Analyze(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user := currentUser(c)
	result, err := h.petitionService.Analyze(c.Request.Context(), user.TenantID, user.ID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, result.Analysis)
}

// StructureRequest represents the strategic answers for structuring
type StructureRequest struct {
	Answers models.StrategicAnswers `json:"answers" binding:"required"`
}

// BuildStructure handles POST /api/petitions/:id/structure
func (h *PetitionHandler) BuildStructure(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req StructureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	user := currentUser(c)
	result, err := h.petitionService.BuildStructure(c.Request.Context(), user.TenantID, id, req.Answers)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, result.Structure)
}

// Generate handles POST /api/petitions/:id/generate
func (h *PetitionHandler) Generate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user := currentUser(c)
	result, err := h.petitionService.Generate(c.Request.Context(), user.TenantID, user.ID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"content":   result.Content,
		"docx_path": result.DocxPath,
		"docx_url":  result.DocxURL,
	})
}
