package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"lexdesk-backend/models"
	"lexdesk-backend/storage"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ReviewService orchestrates the judge-review pipeline: a petition plus case
// description goes in, an impartial critique report comes out. It mirrors the
// petition pipeline but has no structuring stage.
type ReviewService struct {
	reviews     ReviewStore
	settings    SettingsStore
	limiter     Limiter
	knowledge   KnowledgeResolver
	attachments AttachmentPreparer
	analyzer    Analyzer
	generator   Generator
	renderer    DocumentRenderer
	storage     storage.Storage
}

// ReviewServiceOption is a functional option for ReviewService
type ReviewServiceOption func(*ReviewService)

// WithReviewStore sets the review repository
func WithReviewStore(store ReviewStore) ReviewServiceOption {
	return func(s *ReviewService) { s.reviews = store }
}

// WithReviewSettings sets the tenant settings store
func WithReviewSettings(store SettingsStore) ReviewServiceOption {
	return func(s *ReviewService) { s.settings = store }
}

// WithReviewLimiter sets the rate limiter
func WithReviewLimiter(l Limiter) ReviewServiceOption {
	return func(s *ReviewService) { s.limiter = l }
}

// WithReviewKnowledge sets the knowledge resolver
func WithReviewKnowledge(k KnowledgeResolver) ReviewServiceOption {
	return func(s *ReviewService) { s.knowledge = k }
}

// WithReviewAttachments sets the attachment preparer
func WithReviewAttachments(a AttachmentPreparer) ReviewServiceOption {
	return func(s *ReviewService) { s.attachments = a }
}

// WithReviewAnalyzer sets the analysis stage
func WithReviewAnalyzer(a Analyzer) ReviewServiceOption {
	return func(s *ReviewService) { s.analyzer = a }
}

// WithReviewGenerator sets the report generation stage
func WithReviewGenerator(g Generator) ReviewServiceOption {
	return func(s *ReviewService) { s.generator = g }
}

// WithReviewRenderer sets the document renderer
func WithReviewRenderer(r DocumentRenderer) ReviewServiceOption {
	return func(s *ReviewService) { s.renderer = r }
}

// WithReviewBlobStorage sets the blob storage backend
func WithReviewBlobStorage(st storage.Storage) ReviewServiceOption {
	return func(s *ReviewService) { s.storage = st }
}

// NewReviewService creates a new review service
func NewReviewService(opts ...ReviewServiceOption) *ReviewService {
	s := &ReviewService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateReviewRequest represents a request to create a judge review. Exactly
// one of PetitionContent or PetitionFilePath must be set.
type CreateReviewRequest struct {
	TenantID         uuid.UUID
	UserID           uuid.UUID
	Description      string
	PetitionContent  string
	PetitionFilePath string
	AttachmentPaths  []string
}

// CreateReviewResult represents the result of creating a review
type CreateReviewResult struct {
	Review *models.JudgeReview
}

// CreateReview creates a new judge review in analyzing status
func (s *ReviewService) CreateReview(ctx context.Context, req CreateReviewRequest) (*CreateReviewResult, error) {
	if strings.TrimSpace(req.Description) == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalidArgument)
	}
	if req.PetitionContent == "" && req.PetitionFilePath == "" {
		return nil, fmt.Errorf("%w: petition text or file is required", ErrInvalidArgument)
	}

	allPaths := req.AttachmentPaths
	if req.PetitionFilePath != "" {
		allPaths = append(allPaths, req.PetitionFilePath)
	}
	for _, path := range allPaths {
		if !storage.BelongsToTenant(path, req.TenantID.String()) {
			return nil, fmt.Errorf("%w: attachment path outside tenant scope", ErrPermissionDenied)
		}
	}

	review := &models.JudgeReview{
		TenantID:         req.TenantID,
		UserID:           req.UserID,
		Status:           models.ReviewStatusAnalyzing,
		Description:      req.Description,
		AttachmentPaths:  req.AttachmentPaths,
		StrategicAnswers: models.StrategicAnswers{},
	}
	if req.PetitionContent != "" {
		review.PetitionContent = &req.PetitionContent
	}
	if req.PetitionFilePath != "" {
		review.PetitionFilePath = &req.PetitionFilePath
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}

	return &CreateReviewResult{Review: review}, nil
}

// GetReview retrieves a judge review by ID
func (s *ReviewService) GetReview(ctx context.Context, tenantID, id uuid.UUID) (*models.JudgeReview, error) {
	review, err := s.reviews.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFoundErr(err)
	}
	return review, nil
}

// ListReviews retrieves judge reviews of a tenant, newest first
func (s *ReviewService) ListReviews(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.JudgeReview, error) {
	return s.reviews.ListByTenant(ctx, tenantID, limit, offset)
}

// DeleteReview removes a review record
func (s *ReviewService) DeleteReview(ctx context.Context, tenantID, id uuid.UUID) error {
	if _, err := s.reviews.GetByID(ctx, tenantID, id); err != nil {
		return notFoundErr(err)
	}
	return s.reviews.Delete(ctx, tenantID, id)
}

// AnalyzeReviewResult represents the outcome of the review analysis stage
type AnalyzeReviewResult struct {
	Analysis *models.JudgeAnalysis
}

// Analyze runs the impartial first-pass analysis of the submitted petition.
// Review knowledge grounding is area-less: the most recent documents are
// used regardless of legal area.
func (s *ReviewService) Analyze(ctx context.Context, tenantID, userID, id uuid.UUID) (*AnalyzeReviewResult, error) {
	if err := s.limiter.Check(ctx, userID, ActionJudgeAnalysis); err != nil {
		return nil, err
	}

	review, err := s.reviews.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFoundErr(err)
	}

	if review.Status == models.ReviewStatusCompleted {
		return nil, fmt.Errorf("%w: review is completed", ErrInvalidState)
	}

	kbPaths, settings, err := s.loadContext(ctx, tenantID)
	if err != nil {
		return nil, s.failStage(ctx, tenantID, id, err)
	}

	stageCtx, cancel := context.WithTimeout(ctx, analysisTimeout)
	defer cancel()

	req := AnalyzeReviewRequest{
		Description:    review.Description,
		CaseParts:      s.attachments.PrepareReviewFiles(stageCtx, review.AttachmentPaths),
		KnowledgeParts: s.attachments.PrepareKnowledge(stageCtx, kbPaths),
		CustomPrompt:   settings.Prompts.JudgePrompt,
	}
	if review.PetitionContent != nil {
		req.PetitionContent = *review.PetitionContent
	}
	if review.PetitionFilePath != nil {
		req.PetitionParts = s.attachments.PrepareReviewFiles(stageCtx, []string{*review.PetitionFilePath})
	}

	analysis, err := s.analyzer.AnalyzeForReview(stageCtx, req)
	if err != nil {
		return nil, s.failStage(ctx, tenantID, id, err)
	}

	review.InitialAnalysis = analysis
	review.Status = models.ReviewStatusQuestions
	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, err
	}

	return &AnalyzeReviewResult{Analysis: analysis}, nil
}

// GenerateReviewResult represents the outcome of the report stage
type GenerateReviewResult struct {
	Report   *models.JudgeReport
	DocxPath string
	DocxURL  string
}

// GenerateReport runs the final stage: critique generation, rendering and
// upload. Report, artifact reference and completed status are persisted in
// one write. A completed review returns its existing artifact.
func (s *ReviewService) GenerateReport(ctx context.Context, tenantID, id uuid.UUID, answers models.StrategicAnswers) (*GenerateReviewResult, error) {
	review, err := s.reviews.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFoundErr(err)
	}

	if review.Status == models.ReviewStatusCompleted {
		if review.Report == nil || review.DocxPath == nil || review.DocxURL == nil {
			return nil, fmt.Errorf("%w: completed review has no document", ErrInvalidState)
		}
		return &GenerateReviewResult{Report: review.Report, DocxPath: *review.DocxPath, DocxURL: *review.DocxURL}, nil
	}

	if review.InitialAnalysis == nil {
		return nil, fmt.Errorf("%w: review has no analysis yet", ErrInvalidState)
	}
	if len(answers) == 0 {
		return nil, fmt.Errorf("%w: strategic answers are required", ErrInvalidArgument)
	}
	if err := validateAnswers(review.InitialAnalysis.Perguntas, answers); err != nil {
		return nil, err
	}

	if err := s.reviews.UpdateStatus(ctx, tenantID, id, models.ReviewStatusGenerating); err != nil {
		return nil, err
	}

	settings, err := s.settings.Get(ctx, tenantID)
	if err != nil {
		return nil, s.failStage(ctx, tenantID, id, err)
	}

	stageCtx, cancel := context.WithTimeout(ctx, generationTimeout)
	defer cancel()

	petitionContent := ""
	if review.PetitionContent != nil {
		petitionContent = *review.PetitionContent
	}

	report, err := s.generator.GenerateJudgeReport(stageCtx, GenerateJudgeReportRequest{
		PetitionContent: petitionContent,
		Description:     review.Description,
		Analysis:        review.InitialAnalysis,
		Answers:         answers,
		CustomPrompt:    settings.Prompts.JudgePrompt,
	})
	if err != nil {
		return nil, s.failStage(ctx, tenantID, id, err)
	}

	docxBytes, err := s.renderer.RenderJudgeReport(report, &settings.Office)
	if err != nil {
		return nil, s.failStage(ctx, tenantID, id, fmt.Errorf("%w: %v", ErrRenderFailed, err))
	}

	fileName := fmt.Sprintf("relatorio_%s_%d.docx", id, time.Now().UnixMilli())
	docxPath := storage.TenantPath(tenantID.String(), "judge-reports", fileName)

	if err := s.storage.Upload(stageCtx, docxPath, storage.ContentTypeFor(fileName), bytes.NewReader(docxBytes)); err != nil {
		return nil, s.failStage(ctx, tenantID, id, err)
	}

	docxURL, err := s.storage.SignedURL(stageCtx, docxPath)
	if err != nil {
		return nil, s.failStage(ctx, tenantID, id, err)
	}

	review.Report = report
	review.StrategicAnswers = answers
	review.DocxPath = &docxPath
	review.DocxURL = &docxURL
	review.Status = models.ReviewStatusCompleted
	if err := s.reviews.Update(ctx, review); err != nil {
		return nil, err
	}

	return &GenerateReviewResult{Report: report, DocxPath: docxPath, DocxURL: docxURL}, nil
}

func (s *ReviewService) loadContext(ctx context.Context, tenantID uuid.UUID) ([]string, *models.TenantSettings, error) {
	var (
		kbPaths  []string
		settings *models.TenantSettings
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		kbPaths, err = s.knowledge.ResolvePaths(gctx, tenantID, "")
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

func (s *ReviewService) failStage(ctx context.Context, tenantID, id uuid.UUID, stageErr error) error {
	if err := s.reviews.UpdateStatus(ctx, tenantID, id, models.ReviewStatusError); err != nil {
		log.Printf("Warning: failed to mark review %s as errored: %v", id, err)
	}
	return stageErr
}
