package service

import (
	"context"
	"fmt"

	"lexdesk-backend/models"

	"github.com/google/uuid"
)

const maxPromptLength = 10000

// SettingsService manages tenant office details and custom AI instructions
type SettingsService struct {
	store SettingsStore
}

// SettingsServiceOption is a functional option for SettingsService
type SettingsServiceOption func(*SettingsService)

// WithSettingsStore sets the settings store
func WithSettingsStore(store SettingsStore) SettingsServiceOption {
	return func(s *SettingsService) { s.store = store }
}

// NewSettingsService creates a new settings service
func NewSettingsService(opts ...SettingsServiceOption) *SettingsService {
	s := &SettingsService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetSettings returns the tenant settings, zero-valued when never configured
func (s *SettingsService) GetSettings(ctx context.Context, tenantID uuid.UUID) (*models.TenantSettings, error) {
	return s.store.Get(ctx, tenantID)
}

// UpdatePrompts replaces the tenant's custom AI instructions
func (s *SettingsService) UpdatePrompts(ctx context.Context, tenantID uuid.UUID, prompts models.AIPrompts) error {
	for _, p := range []string{prompts.PetitionPrompt, prompts.JudgePrompt, prompts.ChatPrompt} {
		if len(p) > maxPromptLength {
			return fmt.Errorf("%w: custom prompt exceeds %d characters", ErrInvalidArgument, maxPromptLength)
		}
	}
	return s.store.UpdatePrompts(ctx, tenantID, prompts)
}

// UpdateOffice replaces the tenant's office letterhead details
func (s *SettingsService) UpdateOffice(ctx context.Context, tenantID uuid.UUID, office models.OfficeSettings) error {
	return s.store.UpdateOffice(ctx, tenantID, office)
}
