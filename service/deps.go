package service

import (
	"context"
	"time"

	"lexdesk-backend/ai"
	"lexdesk-backend/models"

	"github.com/google/uuid"
)

// Capability and collaborator interfaces consumed by the services. Concrete
// implementations come from the ai, repository and storage packages; tests
// substitute fakes.

// MultimodalClient is the structured-JSON multimodal capability
type MultimodalClient interface {
	GenerateJSON(ctx context.Context, parts []ai.Part) ([]byte, error)
	GenerateText(ctx context.Context, parts []ai.Part) (string, error)
	Transcribe(ctx context.Context, data []byte, mimeType string) (string, error)
}

// TextGenerator is the long-form text-generation capability
type TextGenerator interface {
	GenerateText(ctx context.Context, system string, turns []ai.Turn, maxTokens int) (string, error)
}

// PetitionStore persists petition pipeline records
type PetitionStore interface {
	Create(ctx context.Context, petition *models.Petition) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Petition, error)
	Update(ctx context.Context, petition *models.Petition) error
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status models.PetitionStatus) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID, status *models.PetitionStatus, limit, offset int) ([]*models.Petition, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// ReviewStore persists judge-review pipeline records
type ReviewStore interface {
	Create(ctx context.Context, review *models.JudgeReview) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.JudgeReview, error)
	Update(ctx context.Context, review *models.JudgeReview) error
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status models.ReviewStatus) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.JudgeReview, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// ChatStore persists chat sessions and messages
type ChatStore interface {
	CreateSession(ctx context.Context, session *models.ChatSession) error
	GetSession(ctx context.Context, tenantID, id uuid.UUID) (*models.ChatSession, error)
	ListSessions(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.ChatSession, error)
	UpdateSessionSummary(ctx context.Context, tenantID, id uuid.UUID, lastMessage string, at time.Time) error
	UpdateSessionReport(ctx context.Context, tenantID, id uuid.UUID, reportPath, reportURL string) error
	UpdateSessionStatus(ctx context.Context, tenantID, id uuid.UUID, status models.ChatSessionStatus) error
	CreateMessage(ctx context.Context, message *models.ChatMessage) error
	ListMessages(ctx context.Context, tenantID, sessionID uuid.UUID) ([]*models.ChatMessage, error)
	DeleteSession(ctx context.Context, tenantID, id uuid.UUID) error
}

// KnowledgeStore persists knowledge base document records
type KnowledgeStore interface {
	Create(ctx context.Context, doc *models.KnowledgeDocument) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.KnowledgeDocument, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]*models.KnowledgeDocument, error)
	ListByArea(ctx context.Context, tenantID uuid.UUID, area string, limit int) ([]*models.KnowledgeDocument, error)
	ListRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]*models.KnowledgeDocument, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// UserStore persists accounts and the user-to-tenant index
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ResolveTenant(ctx context.Context, uid uuid.UUID) (uuid.UUID, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*models.User, error)
	SetActive(ctx context.Context, tenantID, id uuid.UUID, active bool) error
}

// SettingsStore reads and writes tenant configuration
type SettingsStore interface {
	Get(ctx context.Context, tenantID uuid.UUID) (*models.TenantSettings, error)
	UpdatePrompts(ctx context.Context, tenantID uuid.UUID, prompts models.AIPrompts) error
	UpdateOffice(ctx context.Context, tenantID uuid.UUID, office models.OfficeSettings) error
}

// RateLimitStore is the sliding-window counter backend
type RateLimitStore interface {
	TryAcquire(ctx context.Context, userID uuid.UUID, action string, limit int, window time.Duration) (bool, time.Duration, error)
}

// Limiter checks per-user action quotas
type Limiter interface {
	Check(ctx context.Context, userID uuid.UUID, action string) error
}

// KnowledgeResolver selects knowledge-base documents for prompt grounding
type KnowledgeResolver interface {
	ResolvePaths(ctx context.Context, tenantID uuid.UUID, area string) ([]string, error)
}

// AttachmentPreparer converts stored attachments into prompt parts
type AttachmentPreparer interface {
	PrepareCaseFiles(ctx context.Context, paths []string) []ai.Part
	PrepareReviewFiles(ctx context.Context, paths []string) []ai.Part
	PrepareKnowledge(ctx context.Context, paths []string) []ai.Part
	FileDigest(ctx context.Context, path string) (string, error)
	KnowledgeDigest(ctx context.Context, paths []string) (string, error)
}

// Analyzer runs the analysis stages
type Analyzer interface {
	AnalyzeCase(ctx context.Context, req AnalyzeCaseRequest) (*models.InitialAnalysis, error)
	AnalyzeForReview(ctx context.Context, req AnalyzeReviewRequest) (*models.JudgeAnalysis, error)
}

// Structurer runs the petition structuring stage
type Structurer interface {
	BuildStructure(ctx context.Context, req BuildStructureRequest) (*models.PetitionStructure, error)
}

// Generator runs the long-form generation stages
type Generator interface {
	GeneratePetition(ctx context.Context, req GeneratePetitionRequest) (string, error)
	GenerateJudgeReport(ctx context.Context, req GenerateJudgeReportRequest) (*models.JudgeReport, error)
	GenerateChatResponse(ctx context.Context, req GenerateChatResponseRequest) (string, error)
	GenerateChatReport(ctx context.Context, req GenerateChatReportRequest) (*models.ChatReport, error)
}

// DocumentRenderer turns stage output into downloadable documents
type DocumentRenderer interface {
	RenderPetition(text, title, area, petitionType string, office *models.OfficeSettings) ([]byte, error)
	RenderJudgeReport(report *models.JudgeReport, office *models.OfficeSettings) ([]byte, error)
}
