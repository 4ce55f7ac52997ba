package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"lexdesk-backend/models"
	"lexdesk-backend/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// maxKnowledgeDocs caps how many knowledge documents ground a single prompt
const maxKnowledgeDocs = 5

// KnowledgeService manages the tenant knowledge base and resolves which
// documents ground an AI call.
type KnowledgeService struct {
	repo    KnowledgeStore
	storage storage.Storage
}

// KnowledgeServiceOption is a functional option for KnowledgeService
type KnowledgeServiceOption func(*KnowledgeService)

// WithKnowledgeStore sets the knowledge repository
func WithKnowledgeStore(store KnowledgeStore) KnowledgeServiceOption {
	return func(s *KnowledgeService) {
		s.repo = store
	}
}

// WithKnowledgeStorage sets the blob storage backend
func WithKnowledgeStorage(st storage.Storage) KnowledgeServiceOption {
	return func(s *KnowledgeService) {
		s.storage = st
	}
}

// NewKnowledgeService creates a new knowledge service
func NewKnowledgeService(opts ...KnowledgeServiceOption) *KnowledgeService {
	s := &KnowledgeService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResolvePaths selects the storage paths of knowledge documents for an AI
// call. With an area it prefers area-tagged documents, then documents tagged
// "geral", then falls back to the most recent documents. Without an area it
// returns the most recent documents directly.
func (s *KnowledgeService) ResolvePaths(ctx context.Context, tenantID uuid.UUID, area string) ([]string, error) {
	if area != "" {
		docs, err := s.repo.ListByArea(ctx, tenantID, area, maxKnowledgeDocs)
		if err != nil {
			return nil, err
		}
		if len(docs) > 0 {
			return docPaths(docs), nil
		}

		docs, err = s.repo.ListByArea(ctx, tenantID, models.AreaGeral, maxKnowledgeDocs)
		if err != nil {
			return nil, err
		}
		if len(docs) > 0 {
			return docPaths(docs), nil
		}
	}

	docs, err := s.repo.ListRecent(ctx, tenantID, maxKnowledgeDocs)
	if err != nil {
		return nil, err
	}
	return docPaths(docs), nil
}

func docPaths(docs []*models.KnowledgeDocument) []string {
	paths := make([]string, 0, len(docs))
	for _, d := range docs {
		if d.StoragePath != "" {
			paths = append(paths, d.StoragePath)
		}
	}
	return paths
}

// UploadDocumentRequest represents an admin knowledge upload
type UploadDocumentRequest struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	Name     string
	Category string
	Areas    []string
	Size     int64
	Data     io.Reader
}

// UploadDocumentResult represents the result of a knowledge upload
type UploadDocumentResult struct {
	Document *models.KnowledgeDocument
}

// UploadDocument stores a knowledge document blob and its record
func (s *KnowledgeService) UploadDocument(ctx context.Context, req UploadDocumentRequest) (*UploadDocumentResult, error) {
	if req.Name == "" || req.Category == "" {
		return nil, fmt.Errorf("%w: name and category are required", ErrInvalidArgument)
	}
	if len(req.Areas) == 0 {
		req.Areas = []string{models.AreaGeral}
	}

	mimeType := storage.ContentTypeFor(req.Name)
	fileName := fmt.Sprintf("%d_%s", time.Now().UnixMilli(), req.Name)
	path := storage.TenantPath(req.TenantID.String(), "knowledge", fileName)

	if err := s.storage.Upload(ctx, path, mimeType, req.Data); err != nil {
		return nil, fmt.Errorf("failed to store knowledge document: %w", err)
	}

	doc := &models.KnowledgeDocument{
		TenantID:    req.TenantID,
		UserID:      req.UserID,
		Name:        req.Name,
		Category:    req.Category,
		Areas:       req.Areas,
		StoragePath: path,
		Size:        req.Size,
		MimeType:    mimeType,
	}

	if err := s.repo.Create(ctx, doc); err != nil {
		// Don't leave an orphan blob behind
		if delErr := s.storage.Delete(ctx, path); delErr != nil {
			log.Printf("Warning: failed to clean up blob %s: %v", path, delErr)
		}
		return nil, err
	}

	return &UploadDocumentResult{Document: doc}, nil
}

// ListDocuments returns all knowledge documents of a tenant
func (s *KnowledgeService) ListDocuments(ctx context.Context, tenantID uuid.UUID) ([]*models.KnowledgeDocument, error) {
	return s.repo.List(ctx, tenantID)
}

// DeleteDocument removes a knowledge document record and its blob
func (s *KnowledgeService) DeleteDocument(ctx context.Context, tenantID, id uuid.UUID) error {
	doc, err := s.repo.GetByID(ctx, tenantID, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, doc.StoragePath); err != nil {
		log.Printf("Warning: failed to delete blob %s: %v", doc.StoragePath, err)
	}

	return nil
}
