package service

import (
	"context"
	"strings"
	"testing"

	"lexdesk-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdatePromptsLengthLimit(t *testing.T) {
	store := &fakeSettingsStore{}
	svc := NewSettingsService(WithSettingsStore(store))
	tenantID := uuid.New()

	err := svc.UpdatePrompts(context.Background(), tenantID, models.AIPrompts{
		ChatPrompt: strings.Repeat("x", maxPromptLength+1),
	})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	prompts := models.AIPrompts{PetitionPrompt: "Cite sempre a jurisprudência do TJSP."}
	require.NoError(t, svc.UpdatePrompts(context.Background(), tenantID, prompts))
	assert.Equal(t, prompts, store.settings.Prompts)
}

func TestUpdateOffice(t *testing.T) {
	store := &fakeSettingsStore{}
	svc := NewSettingsService(WithSettingsStore(store))
	tenantID := uuid.New()

	office := models.OfficeSettings{Name: "Silva & Associados", OABNumber: "SP 123.456"}
	require.NoError(t, svc.UpdateOffice(context.Background(), tenantID, office))

	settings, err := svc.GetSettings(context.Background(), tenantID)
	require.NoError(t, err)
	assert.Equal(t, office, settings.Office)
}
