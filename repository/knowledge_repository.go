package repository

import (
	"context"

	"lexdesk-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// KnowledgeRepository handles database operations for knowledge documents
type KnowledgeRepository struct {
	db *pgxpool.Pool
}

// NewKnowledgeRepository creates a new knowledge repository
func NewKnowledgeRepository(db *pgxpool.Pool) *KnowledgeRepository {
	return &KnowledgeRepository{db: db}
}

// Create creates a new knowledge document record
func (r *KnowledgeRepository) Create(ctx context.Context, doc *models.KnowledgeDocument) error {
	query := `
		INSERT INTO knowledge_documents (
			tenant_id, user_id, name, category, areas,
			storage_path, size, mime_type
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := r.db.QueryRow(
		ctx, query,
		doc.TenantID,
		doc.UserID,
		doc.Name,
		doc.Category,
		doc.Areas,
		doc.StoragePath,
		doc.Size,
		doc.MimeType,
	).Scan(&doc.ID, &doc.CreatedAt)

	return err
}

const knowledgeColumns = `
	id, tenant_id, user_id, name, category, areas,
	storage_path, size, mime_type, created_at`

func scanKnowledge(row interface{ Scan(...interface{}) error }) (*models.KnowledgeDocument, error) {
	doc := &models.KnowledgeDocument{}
	err := row.Scan(
		&doc.ID,
		&doc.TenantID,
		&doc.UserID,
		&doc.Name,
		&doc.Category,
		&doc.Areas,
		&doc.StoragePath,
		&doc.Size,
		&doc.MimeType,
		&doc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// GetByID retrieves a knowledge document by ID within a tenant
func (r *KnowledgeRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.KnowledgeDocument, error) {
	query := `SELECT` + knowledgeColumns + `
		FROM knowledge_documents
		WHERE id = $1 AND tenant_id = $2`

	return scanKnowledge(r.db.QueryRow(ctx, query, id, tenantID))
}

// List retrieves all knowledge documents for a tenant, newest first
func (r *KnowledgeRepository) List(ctx context.Context, tenantID uuid.UUID) ([]*models.KnowledgeDocument, error) {
	query := `SELECT` + knowledgeColumns + `
		FROM knowledge_documents
		WHERE tenant_id = $1
		ORDER BY created_at DESC`

	return r.queryList(ctx, query, tenantID)
}

// ListByArea retrieves documents tagged with the given area, newest first,
// up to limit
func (r *KnowledgeRepository) ListByArea(ctx context.Context, tenantID uuid.UUID, area string, limit int) ([]*models.KnowledgeDocument, error) {
	query := `SELECT` + knowledgeColumns + `
		FROM knowledge_documents
		WHERE tenant_id = $1 AND $2 = ANY(areas)
		ORDER BY created_at DESC
		LIMIT $3`

	return r.queryList(ctx, query, tenantID, area, limit)
}

// ListRecent retrieves the most recently added documents regardless of area
func (r *KnowledgeRepository) ListRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]*models.KnowledgeDocument, error) {
	query := `SELECT` + knowledgeColumns + `
		FROM knowledge_documents
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	return r.queryList(ctx, query, tenantID, limit)
}

// Delete deletes a knowledge document record
func (r *KnowledgeRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM knowledge_documents WHERE id = $1 AND tenant_id = $2`
	_, err := r.db.Exec(ctx, query, id, tenantID)
	return err
}

func (r *KnowledgeRepository) queryList(ctx context.Context, query string, args ...interface{}) ([]*models.KnowledgeDocument, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.KnowledgeDocument
	for rows.Next() {
		doc, err := scanKnowledge(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}
