package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"lexdesk-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// pathID parses the :id route parameter
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Identificador inválido")
		return uuid.Nil, false
	}
	return id, true
}

// listParams parses optional limit/offset query parameters
func listParams(c *gin.Context) (limit, offset int) {
	limit = 50
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}

// respondData writes the standard success envelope
func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// respondError writes the standard error envelope
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondServiceError maps service sentinels to HTTP status codes and stable
// error codes. Internal details never reach the client; they go to the log.
func respondServiceError(c *gin.Context, err error) {
	var rateErr *service.RateLimitedError
	if errors.As(err, &rateErr) {
		c.Header("Retry-After", rateErr.RetryAfterHeader())
		respondError(c, http.StatusTooManyRequests, "RESOURCE_EXHAUSTED",
			"Limite de uso atingido. Tente novamente mais tarde.")
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", "E-mail ou senha inválidos")
	case errors.Is(err, service.ErrUserInactive):
		respondError(c, http.StatusForbidden, "PERMISSION_DENIED", "Conta desativada")
	case errors.Is(err, service.ErrPermissionDenied):
		respondError(c, http.StatusForbidden, "PERMISSION_DENIED", "Acesso negado")
	case errors.Is(err, service.ErrNotFound):
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Registro não encontrado")
	case errors.Is(err, service.ErrInvalidArgument):
		log.Printf("Invalid argument: %v", err)
		respondError(c, http.StatusBadRequest, "INVALID_ARGUMENT",
			"Dados inválidos. Verifique os campos informados.")
	case errors.Is(err, service.ErrInvalidState):
		log.Printf("Invalid state: %v", err)
		respondError(c, http.StatusConflict, "INVALID_STATE",
			"Operação não permitida no estado atual do registro.")
	case errors.Is(err, service.ErrAnalysisFailed):
		log.Printf("Analysis failed: %v", err)
		respondError(c, http.StatusBadGateway, "ANALYSIS_FAILED",
			"Erro ao analisar o caso. Tente novamente.")
	case errors.Is(err, service.ErrStructuringFailed):
		log.Printf("Structuring failed: %v", err)
		respondError(c, http.StatusBadGateway, "STRUCTURE_FAILED",
			"Erro ao estruturar a petição. Tente novamente.")
	case errors.Is(err, service.ErrGenerationFailed):
		log.Printf("Generation failed: %v", err)
		respondError(c, http.StatusBadGateway, "GENERATION_FAILED",
			"Erro ao gerar o documento. Tente novamente.")
	case errors.Is(err, service.ErrRenderFailed):
		log.Printf("Render failed: %v", err)
		respondError(c, http.StatusInternalServerError, "RENDER_FAILED",
			"Erro ao montar o documento. Tente novamente.")
	default:
		log.Printf("Internal error: %v", err)
		respondError(c, http.StatusInternalServerError, "INTERNAL",
			"Erro interno. Tente novamente.")
	}
}
