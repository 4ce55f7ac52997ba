package handlers

import (
	"net/http"

	"lexdesk-backend/service"

	"github.com/gin-gonic/gin"
)

// ChatHandler handles HTTP requests for intake chat sessions
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// CreateSessionRequest represents the request body for opening a session
type CreateSessionRequest struct {
	ClientName string `json:"client_name" binding:"required"`
	Area       string `json:"area" binding:"required"`
}

// CreateSession handles POST /api/chat/sessions
func (h *ChatHandler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	user := currentUser(c)
	result, err := h.chatService.CreateSession(c.Request.Context(), service.CreateSessionRequest{
		TenantID:   user.TenantID,
		UserID:     user.ID,
		ClientName: req.ClientName,
		Area:       req.Area,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusCreated, result.Session)
}

// GetSession handles GET /api/chat/sessions/:id
func (h *ChatHandler) GetSession(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user := currentUser(c)
	session, err := h.chatService.GetSession(c.Request.Context(), user.TenantID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, session)
}

// ListSessions handles GET /api/chat/sessions
func (h *ChatHandler) ListSessions(c *gin.Context) {
	user := currentUser(c)
	limit, offset := listParams(c)

	sessions, err := h.chatService.ListSessions(c.Request.Context(), user.TenantID, limit, offset)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, sessions)
}

// ListMessages handles GET /api/chat/sessions/:id/messages
func (h *ChatHandler) ListMessages(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user := currentUser(c)
	messages, err := h.chatService.ListMessages(c.Request.Context(), user.TenantID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, messages)
}

// SendMessageRequest represents one chat turn from the lawyer
type SendMessageRequest struct {
	Message  string `json:"message" binding:"required"`
	FilePath string `json:"file_path"`
}

// SendMessage handles POST /api/chat/sessions/:id/messages
func (h *ChatHandler) SendMessage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	user := currentUser(c)
	result, err := h.chatService.SendMessage(c.Request.Context(), service.SendMessageRequest{
		TenantID:  user.TenantID,
		UserID:    user.ID,
		SessionID: id,
		Message:   req.Message,
		FilePath:  req.FilePath,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"response": result.Response})
}

// GenerateReport handles POST /api/chat/sessions/:id/report
func (h *ChatHandler) GenerateReport(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user := currentUser(c)
	result, err := h.chatService.GenerateReport(c.Request.Context(), user.TenantID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"report":      result.Report,
		"report_path": result.ReportPath,
		"report_url":  result.ReportURL,
	})
}

// CloseSession handles POST /api/chat/sessions/:id/close
func (h *ChatHandler) CloseSession(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user := currentUser(c)
	if err := h.chatService.CloseSession(c.Request.Context(), user.TenantID, id); err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"closed": true})
}

// DeleteSession handles DELETE /api/chat/sessions/:id
func (h *ChatHandler) DeleteSession(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	user := currentUser(c)
	if err := h.chatService.DeleteSession(c.Request.Context(), user.TenantID, id); err != nil {
		respondServiceError(c, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{"deleted": true})
}
