package repository

import (
	"context"
	"errors"

	"lexdesk-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SettingsRepository handles per-tenant configuration: prompt overrides and
// the office profile. A tenant with no row yet reads as empty settings.
type SettingsRepository struct {
	db *pgxpool.Pool
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get retrieves the settings of a tenant, defaulting to zero values when the
// tenant has never saved any.
func (r *SettingsRepository) Get(ctx context.Context, tenantID uuid.UUID) (*models.TenantSettings, error) {
	settings := &models.TenantSettings{}
	query := `
		SELECT prompts, office
		FROM tenant_settings
		WHERE tenant_id = $1`

	err := r.db.QueryRow(ctx, query, tenantID).Scan(&settings.Prompts, &settings.Office)
	if errors.Is(err, pgx.ErrNoRows) {
		return settings, nil
	}
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// UpdatePrompts upserts the prompt overrides of a tenant
func (r *SettingsRepository) UpdatePrompts(ctx context.Context, tenantID uuid.UUID, prompts models.AIPrompts) error {
	query := `
		INSERT INTO tenant_settings (tenant_id, prompts)
		VALUES ($1, $2)
		ON CONFLICT (tenant_id) DO UPDATE SET
			prompts = EXCLUDED.prompts,
			updated_at = NOW()`

	_, err := r.db.Exec(ctx, query, tenantID, prompts)
	return err
}

// UpdateOffice upserts the office profile of a tenant
func (r *SettingsRepository) UpdateOffice(ctx context.Context, tenantID uuid.UUID, office models.OfficeSettings) error {
	query := `
		INSERT INTO tenant_settings (tenant_id, office)
		VALUES ($1, $2)
		ON CONFLICT (tenant_id) DO UPDATE SET
			office = EXCLUDED.office,
			updated_at = NOW()`

	_, err := r.db.Exec(ctx, query, tenantID, office)
	return err
}
