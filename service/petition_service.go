package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"lexdesk-backend/models"
	"lexdesk-backend/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"
)

// Wall-clock budgets per stage kind
const (
	analysisTimeout   = 120 * time.Second
	structureTimeout  = 120 * time.Second
	generationTimeout = 300 * time.Second
)

// notFoundErr maps a missing database row to the shared sentinel
func notFoundErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// PetitionService orchestrates the petition pipeline. It is the only
// component that mutates persisted petition status: each stage runs its AI
// call first and persists output plus the new status only on success.
type PetitionService struct {
	petitions   PetitionStore
	settings    SettingsStore
	limiter     Limiter
	knowledge   KnowledgeResolver
	attachments AttachmentPreparer
	analyzer    Analyzer
	structurer  Structurer
	generator   Generator
	renderer    DocumentRenderer
	storage     storage.Storage
}

// PetitionServiceOption is a functional option for PetitionService
type PetitionServiceOption func(*PetitionService)

// WithPetitionStore sets the petition repository
func WithPetitionStore(store PetitionStore) PetitionServiceOption {
	return func(s *PetitionService) { s.petitions = store }
}

// WithPetitionSettings sets the tenant settings store
func WithPetitionSettings(store SettingsStore) PetitionServiceOption {
	return func(s *PetitionService) { s.settings = store }
}

// WithPetitionLimiter sets the rate limiter
func WithPetitionLimiter(l Limiter) PetitionServiceOption {
	return func(s *PetitionService) { s.limiter = l }
}

// WithPetitionKnowledge sets the knowledge resolver
func WithPetitionKnowledge(k KnowledgeResolver) PetitionServiceOption {
	return func(s *PetitionService) { s.knowledge = k }
}

// WithPetitionAttachments sets the attachment preparer
func WithPetitionAttachments(a AttachmentPreparer) PetitionServiceOption {
	return func(s *PetitionService) { s.attachments = a }
}

// WithPetitionAnalyzer sets the analysis stage
func WithPetitionAnalyzer(a Analyzer) PetitionServiceOption {
	return func(s *PetitionService) { s.analyzer = a }
}

// WithPetitionStructurer sets the structuring stage
func WithPetitionStructurer(st Structurer) PetitionServiceOption {
	return func(s *PetitionService) { s.structurer = st }
}

// WithPetitionGenerator sets the generation stage
func WithPetitionGenerator(g Generator) PetitionServiceOption {
	return func(s *PetitionService) { s.generator = g }
}

// WithPetitionRenderer sets the document renderer
func WithPetitionRenderer(r DocumentRenderer) PetitionServiceOption {
	return func(s *PetitionService) { s.renderer = r }
}

// WithPetitionBlobStorage sets the blob storage backend
func WithPetitionBlobStorage(st storage.Storage) PetitionServiceOption {
	return func(s *PetitionService) { s.storage = st }
}

// NewPetitionService creates a new petition service
func NewPetitionService(opts ...PetitionServiceOption) *PetitionService {
	s := &PetitionService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreatePetitionRequest represents a request to create a petition
type CreatePetitionRequest struct {
	TenantID        uuid.UUID
	UserID          uuid.UUID
	Title           string
	Area            string
	Type            string
	Facts           string
	AttachmentPaths []string
}

// CreatePetitionResult represents the result of creating a petition
type CreatePetitionResult struct {
	Petition *models.Petition
}

// CreatePetition creates a new petition in draft status
func (s *PetitionService) CreatePetition(ctx context.Context, req CreatePetitionRequest) (*CreatePetitionResult, error) {
	if req.Area == "" || req.Type == "" {
		return nil, fmt.Errorf("%w: area and type are required", ErrInvalidArgument)
	}

	for _, path := range req.AttachmentPaths {
		if !storage.BelongsToTenant(path, req.TenantID.String()) {
			return nil, fmt.Errorf("%w: attachment path outside tenant scope", ErrPermissionDenied)
		}
	}

	title := req.Title
	if title == "" {
		title = req.Type + " - " + req.Area
	}

	petition := &models.Petition{
		TenantID:         req.TenantID,
		UserID:           req.UserID,
		Title:            title,
		Area:             req.Area,
		Type:             req.Type,
		Status:           models.PetitionStatusDraft,
		Facts:            req.Facts,
		AttachmentPaths:  req.AttachmentPaths,
		StrategicAnswers: models.StrategicAnswers{},
	}

	if err := s.petitions.Create(ctx, petition); err != nil {
		return nil, err
	}

	return &CreatePetitionResult{Petition: petition}, nil
}

// GetPetition retrieves a petition by ID
func (s *PetitionService) GetPetition(ctx context.Context, tenantID, id uuid.UUID) (*models.Petition, error) {
	petition, err := s.petitions.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFoundErr(err)
	}
	return petition, nil
}

// ListPetitions retrieves petitions of a tenant, newest first
func (s *PetitionService) ListPetitions(ctx context.Context, tenantID uuid.UUID, status *models.PetitionStatus, limit, offset int) ([]*models.Petition, error) {
	return s.petitions.ListByTenant(ctx, tenantID, status, limit, offset)
}

// UpdateDraftRequest represents edits to a petition's inputs
type UpdateDraftRequest struct {
	TenantID        uuid.UUID
	ID              uuid.UUID
	Title           *string
	Facts           *string
	AttachmentPaths []string
}

// UpdateDraft edits a petition's inputs. Inputs are mutable until the
// petition completes; a later stage always re-reads the persisted record.
func (s *PetitionService) UpdateDraft(ctx context.Context, req UpdateDraftRequest) (*models.Petition, error) {
	petition, err := s.petitions.GetByID(ctx, req.TenantID, req.ID)
	if err != nil {
		return nil, notFoundErr(err)
	}

	if petition.Status == models.PetitionStatusCompleted {
		return nil, fmt.Errorf("%w: petition is completed", ErrInvalidState)
	}

	if req.Title != nil {
		petition.Title = *req.Title
	}
	if req.Facts != nil {
		petition.Facts = *req.Facts
	}
	if req.AttachmentPaths != nil {
		for _, path := range req.AttachmentPaths {
			if !storage.BelongsToTenant(path, req.TenantID.String()) {
				return nil, fmt.Errorf("%w: attachment path outside tenant scope", ErrPermissionDenied)
			}
		}
		petition.AttachmentPaths = req.AttachmentPaths
	}

	if err := s.petitions.Update(ctx, petition); err != nil {
		return nil, err
	}
	return petition, nil
}

// DeletePetition removes a petition record. Rendered artifacts stay in blob
// storage; their tenant-scoped paths become unreferenced.
func (s *PetitionService) DeletePetition(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.petitions.GetByID(ctx, tenantID, id); err != nil {
		return notFoundErr(err)
	}
	return s.petitions.Delete(ctx, tenantID, id)
}

// AnalyzeResult represents the outcome of the analysis stage
type AnalyzeResult struct {
	Analysis *models.InitialAnalysis
}

// Analyze runs the analysis stage: facts and attachments in, summary, theses
// and strategic questions out. On success the petition moves to questions
// status; on AI failure it is marked error and stays retryable.
func (s *PetitionService) Analyze(ctx context.Context, tenantID, userID, id uuid.UUID) (*AnalyzeResult, error) {
	if err := s.limiter.Check(ctx, userID, ActionPetitionAnalysis); err != nil {
		return nil, err
	}

	petition, err := s.petitions.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFoundErr(err)
	}

	if strings.TrimSpace(petition.Facts) == "" {
		return nil, fmt.Errorf("%w: facts are required before analysis", ErrInvalidArgument)
	}
	if !petition.Status.CanAdvanceTo(models.PetitionStatusQuestions) {
		return nil, fmt.Errorf("%w: cannot analyze petition in status %s", ErrInvalidState, petition.Status)
	}

	if err := s.petitions.UpdateStatus(ctx, tenantID, id, models.PetitionStatusAnalyzing); err != nil {
		return nil, err
	}

	kbPaths, settings, err := s.loadContext(ctx, tenantID, petition.Area)
	if err != nil {
		return nil, s.failStage(ctx, tenantID, id, err)
	}

	stageCtx, cancel := context.WithTimeout(ctx, analysisTimeout)
	defer cancel()

	analysis, err := s.analyzer.AnalyzeCase(stageCtx, AnalyzeCaseRequest{
		Facts:          petition.Facts,
		Area:           petition.Area,
		PetitionType:   petition.Type,
		KnowledgeParts: s.attachments.PrepareKnowledge(stageCtx, kbPaths),
		CaseParts:      s.attachments.PrepareCaseFiles(stageCtx, petition.AttachmentPaths),
		CustomPrompt:   settings.Prompts.PetitionPrompt,
	})
	if err != nil {
		return nil, s.failStage(ctx, tenantID, id, err)
	}

	petition.InitialAnalysis = analysis
	petition.Status = models.PetitionStatusQuestions
	if err := s.petitions.Update(ctx, petition); err != nil {
		return nil, err
	}

	return &AnalyzeResult{Analysis: analysis}, nil
}

// BuildStructureResult represents the outcome of the structuring stage
type BuildStructureResult struct {
	Structure *models.PetitionStructure
}

// BuildStructure runs the structuring stage with the lawyer's strategic
// answers. Answers are persisted together with the resulting outline.
func (s *PetitionService) BuildStructure(ctx context.Context, tenantID, id uuid.UUID, answers models.StrategicAnswers) (*BuildStructureResult, error) {
	petition, err := s.petitions.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFoundErr(err)
	}

	if petition.InitialAnalysis == nil {
		return nil, fmt.Errorf("%w: petition has no analysis yet", ErrInvalidState)
	}
	if len(answers) == 0 {
		return nil, fmt.Errorf("%w: strategic answers are required", ErrInvalidArgument)
	}
	if err := validateAnswers(petition.InitialAnalysis.Perguntas, answers); err != nil {
		return nil, err
	}
	if !petition.Status.CanAdvanceTo(models.PetitionStatusStructuring) {
		return nil, fmt.Errorf("%w: cannot structure petition in status %s", ErrInvalidState, petition.Status)
	}

	kbPaths, settings, err := s.loadContext(ctx, tenantID, petition.Area)
	if err != nil {
		return nil, s.failStage(ctx, tenantID, id, err)
	}

	stageCtx, cancel := context.WithTimeout(ctx, structureTimeout)
	defer cancel()

	structure, err := s.structurer.BuildStructure(stageCtx, BuildStructureRequest{
		Facts:          petition.Facts,
		Area:           petition.Area,
		PetitionType:   petition.Type,
		Analysis:       petition.InitialAnalysis,
		Answers:        answers,
		KnowledgeParts: s.attachments.PrepareKnowledge(stageCtx, kbPaths),
		CustomPrompt:   settings.Prompts.PetitionPrompt,
	})
	if err != nil {
		return nil, s.failStage(ctx, tenantID, id, err)
	}

	petition.Structure = structure
	petition.StrategicAnswers = answers
	petition.Status = models.PetitionStatusStructuring
	if err := s.petitions.Update(ctx, petition); err != nil {
		return nil, err
	}

	return &BuildStructureResult{Structure: structure}, nil
}

// GenerateResult represents the outcome of the generation stage
type GenerateResult struct {
	Content  string
	DocxPath string
	DocxURL  string
}

// Generate runs the final stage: petition text generation, document
// rendering and upload. Content, artifact reference and completed status are
// persisted in one write, so a completed petition always references its
// document. Calling Generate on an already completed petition returns the
// existing artifact.
func (s *PetitionService) Generate(ctx context.Context, tenantID, userID, id uuid.UUID) (*GenerateResult, error) {
	petition, err := s.petitions.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFoundErr(err)
	}

	if petition.Status == models.PetitionStatusCompleted {
		if petition.Content == nil || petition.DocxPath == nil || petition.DocxURL == nil {
			return nil, fmt.Errorf("%w: completed petition has no document", ErrInvalidState)
		}
		return &GenerateResult{Content: *petition.Content, DocxPath: *petition.DocxPath, DocxURL: *petition.DocxURL}, nil
	}

	if petition.Structure == nil {
		return nil, fmt.Errorf("%w: petition has no structure yet", ErrInvalidState)
	}
	if len(petition.StrategicAnswers) == 0 {
		return nil, fmt.Errorf("%w: strategic answers are required", ErrInvalidState)
	}

	if err := s.limiter.Check(ctx, userID, ActionPetitionGeneration); err != nil {
		return nil, err
	}

	if err := s.petitions.UpdateStatus(ctx, tenantID, id, models.PetitionStatusGenerating); err != nil {
		return nil, err
	}

	settings, err := s.settings.Get(ctx, tenantID)
	if err != nil {
		return nil, s.failStage(ctx, tenantID, id, err)
	}

	stageCtx, cancel := context.WithTimeout(ctx, generationTimeout)
	defer cancel()

	text, err := s.generator.GeneratePetition(stageCtx, GeneratePetitionRequest{
		Area:         petition.Area,
		PetitionType: petition.Type,
		Facts:        petition.Facts,
		Resumo:       petition.InitialAnalysis.Resumo,
		Teses:        petition.InitialAnalysis.Teses,
		Answers:      petition.StrategicAnswers,
		Structure:    petition.Structure,
		CustomPrompt: settings.Prompts.PetitionPrompt,
	})
	if err != nil {
		return nil, s.failStage(ctx, tenantID, id, err)
	}

	docxBytes, err := s.renderer.RenderPetition(text, petition.Title, petition.Area, petition.Type, &settings.Office)
	if err != nil {
		return nil, s.failStage(ctx, tenantID, id, fmt.Errorf("%w: %v", ErrRenderFailed, err))
	}

	fileName := fmt.Sprintf("peticao_%s_%d.docx", id, time.Now().UnixMilli())
	docxPath := storage.TenantPath(tenantID.String(), "petitions", fileName)

	if err := s.storage.Upload(stageCtx, docxPath, storage.ContentTypeFor(fileName), bytes.NewReader(docxBytes)); err != nil {
		return nil, s.failStage(ctx, tenantID, id, err)
	}

	docxURL, err := s.storage.SignedURL(stageCtx, docxPath)
	if err != nil {
		return nil, s.failStage(ctx, tenantID, id, err)
	}

	petition.Content = &text
	petition.DocxPath = &docxPath
	petition.DocxURL = &docxURL
	petition.Status = models.PetitionStatusCompleted
	if err := s.petitions.Update(ctx, petition); err != nil {
		return nil, err
	}

	return &GenerateResult{Content: text, DocxPath: docxPath, DocxURL: docxURL}, nil
}

// loadContext fetches knowledge paths and tenant settings concurrently; they
// are independent reads.
func (s *PetitionService) loadContext(ctx context.Context, tenantID uuid.UUID, area string) ([]string, *models.TenantSettings, error) {
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

// failStage marks the petition as errored and passes the stage error through.
// The record keeps its last-good stage data so the user can retry.
func (s *PetitionService) failStage(ctx context.Context, tenantID, id uuid.UUID, stageErr error) error {
	if err := s.petitions.UpdateStatus(ctx, tenantID, id, models.PetitionStatusError); err != nil {
		log.Printf("Warning: failed to mark petition %s as errored: %v", id, err)
	}
	return stageErr
}
