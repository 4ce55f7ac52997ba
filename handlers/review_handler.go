package handlers

import (
	"net/http"

	"lexdesk-backend/models"
	"lexdesk-backend/service"

	"github.com/gin-gonic/gin"
)

// ReviewHandler handles HTTP requests for judge reviews
type ReviewHandler struct {
	reviewService *service.ReviewService
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// CreateReviewRequest represents the request body for creating a review
type CreateReviewRequest struct {
	Description      string   `json:"description" binding:"required"`
	PetitionContent  string   `json:"petition_content"`
	PetitionFilePath string   `json:"petition_file_path"`
	AttachmentPaths  []string `json:"attachment_paths"`
}

// CreateReview handles POST /api/reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	user := currentUser(c)
	result, err := h.reviewService.CreateReview(c.Request.Context(), service.CreateReviewRequest{
		TenantID:         user.TenantID,
		UserID:           user.ID,
		Description:      req.Description,
		PetitionContent:  req.PetitionContent,
		PetitionFilePath: req.PetitionFilePath,
		AttachmentPaths:  req.AttachmentPaths,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusCreated, result.Review)
}

// GetReview handles GET /api/reviews/:id
func (h *ReviewHandler) GetReview(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user := currentUser(c)
	review, err := h.reviewService.GetReview(c.Request.Context(), user.TenantID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, review)
}

// ListReviews handles GET /api/reviews
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	user := currentUser(c)
	limit, offset := listParams(c)

	reviews, err := h.reviewService.ListReviews(c.Request.Context(), user.TenantID, limit, offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, reviews)
}

// DeleteReview handles DELETE /api/reviews/:id
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user := currentUser(c)
	if err := h.reviewService.DeleteReview(c.Request.Context(), user.TenantID, id); err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"deleted": true})
}

// Analyze handles POST /api/reviews/:id/analyze
func (h *ReviewHandler) Analyze(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user := currentUser(c)
	result, err := h.reviewService.Analyze(c.Request.Context(), user.TenantID, user.ID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, result.Analysis)
}

// ReportRequest represents the strategic answers for the report stage
type ReportRequest struct {
	Answers models.StrategicAnswers `json:"answers" binding:"required"`
}

// GenerateReport handles POST /api/reviews/:id/report
func (h *ReviewHandler) GenerateReport(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	user := currentUser(c)
	result, err := h.reviewService.GenerateReport(c.Request.Context(), user.TenantID, id, req.Answers)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"report":    result.Report,
		"docx_path": result.DocxPath,
		"docx_url":  result.DocxURL,
	})
}
