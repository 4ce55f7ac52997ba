package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"lexdesk-backend/storage"

	"github.com/gin-gonic/gin"
)

const maxUploadSize = 25 * 1024 * 1024 // 25MB

// FileHandler handles HTTP requests for case attachments and downloads
type FileHandler struct {
	storage storage.Storage
}

// NewFileHandler creates a new file handler
func NewFileHandler(store storage.Storage) *FileHandler {
	return &FileHandler{storage: store}
}

// UploadFile handles POST /api/files/upload. The blob lands under the
// caller's tenant prefix; the returned path is what petition, review and
// chat requests reference.
func (h *FileHandler) UploadFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "MISSING_FILE", "Arquivo é obrigatório")
		return
	}
	if fileHeader.Size > maxUploadSize {
		respondError(c, http.StatusBadRequest, "FILE_TOO_LARGE", "Arquivo excede o tamanho máximo de 25MB")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_FILE", "Não foi possível ler o arquivo")
		return
	}
	defer file.Close()

	user := currentUser(c)
	fileName := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), fileHeader.Filename)
	path := storage.TenantPath(user.TenantID.String(), "uploads", fileName)
	contentType := storage.ContentTypeFor(fileHeader.Filename)

	if err := h.storage.Upload(c.Request.Context(), path, contentType, file); err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusCreated, gin.H{
		"path":      path,
		"name":      fileHeader.Filename,
		"size":      fileHeader.Size,
		"mime_type": contentType,
	})
}

// DownloadURL handles GET /api/files/download-url?path=...
// The prefix check keeps one tenant's paths unreadable by another, and the
// URL is signed fresh on every call.
func (h *FileHandler) DownloadURL(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		respondError(c, http.StatusBadRequest, "MISSING_PATH", "Parâmetro path é obrigatório")
		return
	}

	user := currentUser(c)
	if !storage.BelongsToTenant(path, user.TenantID.String()) {
		respondError(c, http.StatusForbidden, "PERMISSION_DENIED", "Acesso negado")
		return
	}

	url, err := h.storage.SignedURL(c.Request.Context(), path)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Arquivo não encontrado")
		return
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"url": url})
}
