package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"lexdesk-backend/ai"
	"lexdesk-backend/models"
	"lexdesk-backend/storage"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	chatTurnTimeout   = 60 * time.Second
	chatReportTimeout = 120 * time.Second

	// Session list previews show a truncated last message
	lastMessagePreviewLen = 100
)

// ChatService orchestrates the AI intake chat: an open session of exchanged
// messages plus an on-demand structured report. Unlike the other pipelines a
// session has no stage sequence.
type ChatService struct {
	chats       ChatStore
	settings    SettingsStore
	limiter     Limiter
	knowledge   KnowledgeResolver
	attachments AttachmentPreparer
	generator   Generator
	renderer    DocumentRenderer
	storage     storage.Storage
}

// ChatServiceOption is a functional option for ChatService
type ChatServiceOption func(*ChatService)

// WithChatStore sets the chat repository
func WithChatStore(store ChatStore) ChatServiceOption {
	return func(s *ChatService) { s.chats = store }
}

// WithChatSettings sets the tenant settings store
func WithChatSettings(store SettingsStore) ChatServiceOption {
	return func(s *ChatService) { s.settings = store }
}

// WithChatLimiter sets the rate limiter
func WithChatLimiter(l Limiter) ChatServiceOption {
	return func(s *ChatService) { s.limiter = l }
}

// WithChatKnowledge sets the knowledge resolver
func WithChatKnowledge(k KnowledgeResolver) ChatServiceOption {
	return func(s *ChatService) { s.knowledge = k }
}

// WithChatAttachments sets the attachment preparer
func WithChatAttachments(a AttachmentPreparer) ChatServiceOption {
	return func(s *ChatService) { s.attachments = a }
}

// WithChatGenerator sets the generation stage
func WithChatGenerator(g Generator) ChatServiceOption {
	return func(s *ChatService) { s.generator = g }
}

// WithChatRenderer sets the document renderer
func WithChatRenderer(r DocumentRenderer) ChatServiceOption {
	return func(s *ChatService) { s.renderer = r }
}

// WithChatBlobStorage sets the blob storage backend
func WithChatBlobStorage(st storage.Storage) ChatServiceOption {
	return func(s *ChatService) { s.storage = st }
}

// NewChatService creates a new chat service
func NewChatService(opts ...ChatServiceOption) *ChatService {
	s := &ChatService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSessionRequest represents a request to open an intake session
type CreateSessionRequest struct {
	TenantID   uuid.UUID
	UserID     uuid.UUID
	ClientName string
	Area       string
}

// CreateSessionResult represents the result of opening a session
type CreateSessionResult struct {
	Session *models.ChatSession
}

// CreateSession opens a new intake chat session
func (s *ChatService) CreateSession(ctx context.Context, req CreateSessionRequest) (*CreateSessionResult, error) {
	if req.ClientName == "" || req.Area == "" {
		return nil, fmt.Errorf("%w: client name and area are required", ErrInvalidArgument)
	}

	session := &models.ChatSession{
		TenantID:   req.TenantID,
		UserID:     req.UserID,
		ClientName: req.ClientName,
		Area:       req.Area,
		Status:     models.ChatSessionActive,
	}

	if err := s.chats.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	return &CreateSessionResult{Session: session}, nil
}

// GetSession retrieves a session by ID
func (s *ChatService) GetSession(ctx context.Context, tenantID, id uuid.UUID) (*models.ChatSession, error) {
	session, err := s.chats.GetSession(ctx, tenantID, id)
	if err != nil {
		return nil, notFoundErr(err)
	}
	return session, nil
}

// ListSessions retrieves sessions of a tenant, most recently active first
func (s *ChatService) ListSessions(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.ChatSession, error) {
	return s.chats.ListSessions(ctx, tenantID, limit, offset)
}

// ListMessages retrieves the transcript of a session
func (s *ChatService) ListMessages(ctx context.Context, tenantID, sessionID uuid.UUID) ([]*models.ChatMessage, error) {
	if _, err := s.chats.GetSession(ctx, tenantID, sessionID); err != nil {
		return nil, notFoundErr(err)
	}
	return s.chats.ListMessages(ctx, tenantID, sessionID)
}

// CloseSession marks a session closed
func (s *ChatService) CloseSession(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.chats.GetSession(ctx, tenantID, id); err != nil {
		return notFoundErr(err)
	}
	return s.chats.UpdateSessionStatus(ctx, tenantID, id, models.ChatSessionClosed)
}

// DeleteSession removes a session and its transcript
func (s *ChatService) DeleteSession(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.chats.GetSession(ctx, tenantID, id); err != nil {
		return notFoundErr(err)
	}
	return s.chats.DeleteSession(ctx, tenantID, id)
}

// SendMessageRequest represents one user chat turn
type SendMessageRequest struct {
	TenantID  uuid.UUID
	UserID    uuid.UUID
	SessionID uuid.UUID
	Message   string
	FilePath  string
}

// SendMessageResult represents the assistant reply
type SendMessageResult struct {
	Response string
}

// SendMessage processes one chat turn: the attached file (if any) is
// digested, the assistant reply is generated against the session history,
// and both messages plus the session preview are persisted. Messages are
// only saved after a successful generation, so a failed turn leaves the
// transcript untouched.
func (s *ChatService) SendMessage(ctx context.Context, req SendMessageRequest) (*SendMessageResult, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInvalidArgument)
	}

	if err := s.limiter.Check(ctx, req.UserID, ActionChatMessage); err != nil {
		return nil, err
	}

	session, err := s.chats.GetSession(ctx, req.TenantID, req.SessionID)
	if err != nil {
		return nil, notFoundErr(err)
	}
	if session.Status != models.ChatSessionActive {
		return nil, fmt.Errorf("%w: session is closed", ErrInvalidState)
	}

	if req.FilePath != "" && !storage.BelongsToTenant(req.FilePath, req.TenantID.String()) {
		return nil, fmt.Errorf("%w: file path outside tenant scope", ErrPermissionDenied)
	}

	kbPaths, settings, err := s.loadContext(ctx, req.TenantID, session.Area)
	if err != nil {
		return nil, err
	}

	turnCtx, cancel := context.WithTimeout(ctx, chatTurnTimeout)
	defer cancel()

	fileContext := ""
	if req.FilePath != "" {
		fileContext, err = s.attachments.FileDigest(turnCtx, req.FilePath)
		if err != nil {
			log.Printf("Warning: failed to digest chat file %s: %v", req.FilePath, err)
			fileContext = ""
		}
	}

	kbContext := ""
	if len(kbPaths) > 0 {
		kbContext, err = s.attachments.KnowledgeDigest(turnCtx, kbPaths)
		if err != nil {
			log.Printf("Warning: failed to digest knowledge for chat: %v", err)
			kbContext = ""
		}
	}

	systemContext := fmt.Sprintf("CONTEXTO DO ATENDIMENTO:\nCliente: %s\nÁrea jurídica: %s\nData: %s",
		session.ClientName, session.Area, time.Now().Format("02/01/2006"))
	if kbContext != "" {
		systemContext += "\n\nBASE DE CONHECIMENTO DO ESCRITÓRIO:\n" + kbContext
	}

	messages, err := s.chats.ListMessages(ctx, req.TenantID, req.SessionID)
	if err != nil {
		return nil, err
	}
	history := make([]ai.Turn, 0, len(messages))
	for _, m := range messages {
		history = append(history, ai.Turn{Role: m.Role, Content: m.Content})
	}

	response, err := s.generator.GenerateChatResponse(turnCtx, GenerateChatResponseRequest{
		SystemContext: systemContext,
		History:       history,
		UserMessage:   req.Message,
		FileContext:   fileContext,
		CustomPrompt:  settings.Prompts.ChatPrompt,
	})
	if err != nil {
		return nil, err
	}

	// Persist user turn, assistant turn, then the session preview, in order
	userMsg := &models.ChatMessage{
		SessionID: req.SessionID,
		TenantID:  req.TenantID,
		Role:      models.ChatRoleUser,
		Content:   req.Message,
	}
	if req.FilePath != "" {
		userMsg.FilePath = &req.FilePath
	}
	if err := s.chats.CreateMessage(ctx, userMsg); err != nil {
		return nil, err
	}

	assistantMsg := &models.ChatMessage{
		SessionID: req.SessionID,
		TenantID:  req.TenantID,
		Role:      models.ChatRoleAssistant,
		Content:   response,
	}
	if err := s.chats.CreateMessage(ctx, assistantMsg); err != nil {
		return nil, err
	}

	preview := response
	if len(preview) > lastMessagePreviewLen {
		cut := lastMessagePreviewLen
		for cut > 0 && !utf8.RuneStart(preview[cut]) {
			cut--
		}
		preview = preview[:cut]
	}
	if err := s.chats.UpdateSessionSummary(ctx, req.TenantID, req.SessionID, preview, assistantMsg.CreatedAt); err != nil {
		log.Printf("Warning: failed to update session %s preview: %v", req.SessionID, err)
	}

	return &SendMessageResult{Response: response}, nil
}

// GenerateReportResult represents the generated intake report
type GenerateReportResult struct {
	Report     *models.ChatReport
	ReportPath string
	ReportURL  string
}

// GenerateReport condenses the session transcript into a structured intake
// report, renders it as a document and stores it on the session.
func (s *ChatService) GenerateReport(ctx context.Context, tenantID, sessionID uuid.UUID) (*GenerateReportResult, error) {
	session, err := s.chats.GetSession(ctx, tenantID, sessionID)
	if err != nil {
		return nil, notFoundErr(err)
	}

	messages, err := s.chats.ListMessages(ctx, tenantID, sessionID)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("%w: session has no messages", ErrInvalidArgument)
	}

	settings, err := s.settings.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	stageCtx, cancel := context.WithTimeout(ctx, chatReportTimeout)
	defer cancel()

	report, err := s.generator.GenerateChatReport(stageCtx, GenerateChatReportRequest{
		ClientName: session.ClientName,
		Area:       session.Area,
		Messages:   messages,
	})
	if err != nil {
		return nil, err
	}

	docxBytes, err := s.renderer.RenderPetition(
		reportText(report),
		"Relatório - "+session.ClientName,
		session.Area,
		"Relatório de Atendimento",
		&settings.Office,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	fileName := fmt.Sprintf("relatorio_atendimento_%s_%d.docx", sessionID, time.Now().UnixMilli())
	reportPath := storage.TenantPath(tenantID.String(), "chat-reports", fileName)

	if err := s.storage.Upload(stageCtx, reportPath, storage.ContentTypeFor(fileName), bytes.NewReader(docxBytes)); err != nil {
		return nil, err
	}

	reportURL, err := s.storage.SignedURL(stageCtx, reportPath)
	if err != nil {
		return nil, err
	}

	if err := s.chats.UpdateSessionReport(ctx, tenantID, sessionID, reportPath, reportURL); err != nil {
		return nil, err
	}

	return &GenerateReportResult{Report: report, ReportPath: reportPath, ReportURL: reportURL}, nil
}

// reportText lays the structured report out as sectioned text for the
// document renderer.
func reportText(report *models.ChatReport) string {
	var sb strings.Builder

	sb.WriteString("RELATÓRIO DE ATENDIMENTO\n\n")
	fmt.Fprintf(&sb, "Cliente: %s\nÁrea: %s\nData: %s\n\n", report.ClientName, report.Area, time.Now().Format("02/01/2006"))

	sb.WriteString("## RESUMO DO CASO\n")
	sb.WriteString(report.ResumoCaso + "\n\n")

	sb.WriteString("## ANÁLISE JURÍDICA PRELIMINAR\n")
	sb.WriteString(report.AnaliseJuridica + "\n\n")

	sb.WriteString("## TESES IDENTIFICADAS\n")
	for i, t := range report.Teses {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, t)
	}
	sb.WriteString("\n")

	if report.PropostaHonorarios != "" {
		sb.WriteString("## PROPOSTA DE HONORÁRIOS\n")
		sb.WriteString(report.PropostaHonorarios + "\n\n")
	}

	sb.WriteString("## PRÓXIMOS PASSOS\n")
	for i, p := range report.ProximosPassos {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, p)
	}

	return sb.String()
}

func (s *ChatService) loadContext(ctx context.Context, tenantID uuid.UUID, area string) ([]string, *models.TenantSettings, error) {
	var (
		kbPaths  []string
		settings *models.TenantSettings
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		kbPaths, err = s.knowledge.ResolvePaths(gctx, tenantID, area)
		return err
	})
	g.Go(func() error {
		var err error
		settings, err = s.settings.Get(gctx, tenantID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return kbPaths, settings, nil
}
