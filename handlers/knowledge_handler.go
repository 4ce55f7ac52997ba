package handlers

import (
	"net/http"
	"strings"

	"lexdesk-backend/service"

	"github.com/gin-gonic/gin"
)

const maxKnowledgeFileSize = 20 * 1024 * 1024 // 20MB

// KnowledgeHandler handles HTTP requests for the knowledge base
type KnowledgeHandler struct {
	knowledgeService *service.KnowledgeService
}

// NewKnowledgeHandler creates a new knowledge handler
func NewKnowledgeHandler(knowledgeService *service.KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{knowledgeService: knowledgeService}
}

// UploadDocument handles POST /api/knowledge (multipart)
func (h *KnowledgeHandler) UploadDocument(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "MISSING_FILE", "Arquivo é obrigatório")
		return
	}
	if fileHeader.Size > maxKnowledgeFileSize {
		respondError(c, http.StatusBadRequest, "FILE_TOO_LARGE", "Arquivo excede o tamanho máximo de 20MB")
		return
	}

	category := c.PostForm("category")
	if category == "" {
		respondError(c, http.StatusBadRequest, "MISSING_CATEGORY", "Categoria é obrigatória")
		return
	}

	name := c.PostForm("name")
	if name == "" {
		name = fileHeader.Filename
	}

	var areas []string
	for _, a := range strings.Split(c.PostForm("areas"), ",") {
		if a = strings.TrimSpace(a); a != "" {
			areas = append(areas, a)
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_FILE", "Não foi possível ler o arquivo")
		return
	}
	defer file.Close()

	user := currentUser(c)
	result, err := h.knowledgeService.UploadDocument(c.Request.Context(), service.UploadDocumentRequest{
		TenantID: user.TenantID,
		UserID:   user.ID,
		Name:     name,
		Category: category,
		Areas:    areas,
		Size:     fileHeader.Size,
		Data:     file,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusCreated, result.Document)
}

// ListDocuments handles GET /api/knowledge
func (h *KnowledgeHandler) ListDocuments(c *gin.Context) {
	user := currentUser(c)
	documents, err := h.knowledgeService.ListDocuments(c.Request.Context(), user.TenantID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, documents)
}

// DeleteDocument handles DELETE /api/knowledge/:id
func (h *KnowledgeHandler) DeleteDocument(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user := currentUser(c)
	if err := h.knowledgeService.DeleteDocument(c.Request.Context(), user.TenantID, id); err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"deleted": true})
}
