package repository

import (
	"context"
	"fmt"

	"lexdesk-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReviewRepository handles database operations for judge reviews
type ReviewRepository struct {
	db *pgxpool.Pool
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create creates a new judge review
func (r *ReviewRepository) Create(ctx context.Context, review *models.JudgeReview) error {
	query := `
		INSERT INTO judge_reviews (
			tenant_id, user_id, status, description, petition_content,
			petition_file_path, attachment_paths, initial_analysis,
			strategic_answers, report, docx_path, docx_url
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		) RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		review.TenantID,
		review.UserID,
		review.Status,
		review.Description,
		review.PetitionContent,
		review.PetitionFilePath,
		review.AttachmentPaths,
		review.InitialAnalysis,
		review.StrategicAnswers,
		review.Report,
		review.DocxPath,
		review.DocxURL,
	).Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt)

	return err
}

const reviewColumns = `
	id, tenant_id, user_id, status, description, petition_content,
	petition_file_path, attachment_paths, initial_analysis,
	strategic_answers, report, docx_path, docx_url, created_at, updated_at`

func scanReview(row interface{ Scan(...interface{}) error }) (*models.JudgeReview, error) {
	review := &models.JudgeReview{}
	err := row.Scan(
		&review.ID,
		&review.TenantID,
		&review.UserID,
		&review.Status,
		&review.Description,
		&review.PetitionContent,
		&review.PetitionFilePath,
		&review.AttachmentPaths,
		&review.InitialAnalysis,
		&review.StrategicAnswers,
		&review.Report,
		&review.DocxPath,
		&review.DocxURL,
		&review.CreatedAt,
		&review.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return review, nil
}

// GetByID retrieves a judge review by ID within a tenant
func (r *ReviewRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.JudgeReview, error) {
	query := `SELECT` + reviewColumns + `
		FROM judge_reviews
		WHERE id = $1 AND tenant_id = $2`

	return scanReview(r.db.QueryRow(ctx, query, id, tenantID))
}

// Update persists the full mutable state of a judge review
func (r *ReviewRepository) Update(ctx context.Context, review *models.JudgeReview) error {
	query := `
		UPDATE judge_reviews SET
			status = $3,
			description = $4,
			petition_content = $5,
			petition_file_path = $6,
			attachment_paths = $7,
			initial_analysis = $8,
			strategic_answers = $9,
			report = $10,
			docx_path = $11,
			docx_url = $12,
			updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2
		RETURNING updated_at`

	err := r.db.QueryRow(
		ctx, query,
		review.ID,
		review.TenantID,
		review.Status,
		review.Description,
		review.PetitionContent,
		review.PetitionFilePath,
		review.AttachmentPaths,
		review.InitialAnalysis,
		review.StrategicAnswers,
		review.Report,
		review.DocxPath,
		review.DocxURL,
	).Scan(&review.UpdatedAt)

	return err
}

// UpdateStatus updates only the pipeline status
func (r *ReviewRepository) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status models.ReviewStatus) error {
	query := `
		UPDATE judge_reviews SET
			status = $3,
			updated_at = NOW()
		WHERE id = $1 AND tenant_id = $2`

	_, err := r.db.Exec(ctx, query, id, tenantID, status)
	return err
}

// ListByTenant retrieves judge reviews for a tenant, newest first
func (r *ReviewRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.JudgeReview, error) {
	query := `SELECT` + reviewColumns + `
		FROM judge_reviews
		WHERE tenant_id = $1
		ORDER BY created_at DESC`

	args := []interface{}{tenantID}
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, limit)
		if offset > 0 {
			query += fmt.Sprintf(" OFFSET $%d", len(args)+1)
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*models.JudgeReview
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}

	return reviews, rows.Err()
}

// Delete deletes a judge review
func (r *ReviewRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM judge_reviews WHERE id = $1 AND tenant_id = $2`
	_, err := r.db.Exec(ctx, query, id, tenantID)
	return err
}
