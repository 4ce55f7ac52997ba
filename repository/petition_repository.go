package repository

import (
	"context"
	"fmt"

	"lexdesk-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PetitionRepository handles database operations for petitions. Every query
// is tenant-scoped; a petition id from another tenant behaves as not found.
type PetitionRepository struct {
	db *pgxpool.Pool
}

// NewPetitionRepository creates a new petition repository
func NewPetitionRepository(db *pgxpool.Pool) *PetitionRepository {
	return &PetitionRepository{db: db}
}

// Create creates a new petition
func (r *PetitionRepository) Create(ctx context.Context, petition *models.Petition) error {
	query := `
		INSERT INTO petitions (
			tenant_id, user_id, title, area, type, status, facts,
			attachment_paths, initial_analysis, strategic_answers,
			structure, content, docx_path, docx_url
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		) RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		petition.TenantID,
		petition.UserID,
		petition.Title,
		petition.Area,
		petition.Type,
		petition.Status,
		petition.Facts,
		petition.AttachmentPaths,
		petition.InitialAnalysis,
		petition.StrategicAnswers,
		petition.Structure,
		petition.Content,
		petition.DocxPath,
		petition.DocxURL,
	).Scan(&petition.ID, &petition.CreatedAt, &petition.UpdatedAt)

	return err
}

const petitionColumns = `
	id, tenant_id, user_id, title, area, type, status, facts,
	attachment_paths, initial_analysis, strategic_answers,
	structure, content, docx_path, docx_url, created_at, updated_at`

func scanPetition(row interface{ Scan(...interface{}) error }) (*models.Petition, error) {
	petition := &models.Petition{}
	err := row.Scan(
		&petition.ID,
		&petition.TenantID,
		&petition.UserID,
		&petition.Title,
		&petition.Area,
		&petition.Type,
		&petition.Status,
		&petition.Facts,
		&petition.AttachmentPaths,
		&petition.InitialAnalysis,
		&petition.StrategicAnswers,
		&petition.Structure,
		&petition.Content,
		&petition.DocxPath,
		&petition.DocxURL,
		&petition.CreatedAt,
		&petition.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return petition, nil
}

// GetByID retrieves a petition by ID within a tenant
func (r *PetitionRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Petition, error) {
	query := `SELECT` + petitionColumns + `
		FROM petitions
		WHERE id = $1 AND tenant_id = $2`

	return scanPetition(r.db.QueryRow(ctx, query, id, tenantID))
}

// Update persists the full mutable state of a petition
func (r *PetitionRepository) Update(ctx context.Context, petition *models.Petition) error {
	query := `
		UPDATE petitions SET
			title = $3,
			area = $4,
			type = $5,
			status = $6,
			facts = $7,
			attachment_paths = $8,
			initial_analysis = $9,
			strategic_answers = $10,
			structure = $11,
			content = $12,
			docx_path = $13,
			docx_url = $14,
			updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2
		RETURNING updated_at`

	err := r.db.QueryRow(
		ctx, query,
		petition.ID,
		petition.TenantID,
		petition.Title,
		petition.Area,
		petition.Type,
		petition.Status,
		petition.Facts,
		petition.AttachmentPaths,
		petition.InitialAnalysis,
		petition.StrategicAnswers,
		petition.Structure,
		petition.Content,
		petition.DocxPath,
		petition.DocxURL,
	).Scan(&petition.UpdatedAt)

	return err
}

// UpdateStatus updates only the pipeline status
func (r *PetitionRepository) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status models.PetitionStatus) error {
	query := `
		UPDATE petitions SET
			status = $3,
			updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2`

	_, err := r.db.Exec(ctx, query, id, tenantID, status)
	return err
}

// ListByTenant retrieves petitions for a tenant, newest first
func (r *PetitionRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, status *models.PetitionStatus, limit, offset int) ([]*models.Petition, error) {
	query := `SELECT` + petitionColumns + `
		FROM petitions
		WHERE tenant_id = $1`

	args := []interface{}{tenantID}
	argIndex := 2

	if status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, *status)
		argIndex++
	}

	query += " ORDER BY created_at DESC"

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, limit)
		argIndex++
		if offset > 0 {
			query += fmt.Sprintf(" OFFSET $%d", argIndex)
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var petitions []*models.Petition
	for rows.Next() {
		petition, err := scanPetition(rows)
		if err != nil {
			return nil, err
		}
		petitions = append(petitions, petition)
	}

	return petitions, rows.Err()
}

// Delete deletes a petition
func (r *PetitionRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM petitions WHERE id = $1 AND tenant_id = $2`
	_, err := r.db.Exec(ctx, query, id, tenantID)
	return err
}
