package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"lexdesk-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKnowledgeStore struct {
	docs      []*models.KnowledgeDocument
	createErr error
}

func (f *fakeKnowledgeStore) Create(ctx context.Context, doc *models.KnowledgeDocument) error {
	if f.createErr != nil {
		return f.createErr
	}
	doc.ID = uuid.New()
	clone := *doc
	f.docs = append(f.docs, &clone)
	return nil
}

func (f *fakeKnowledgeStore) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.KnowledgeDocument, error) {
	for _, d := range f.docs {
		if d.ID == id && d.TenantID == tenantID {
			clone := *d
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeKnowledgeStore) List(ctx context.Context, tenantID uuid.UUID) ([]*models.KnowledgeDocument, error) {
	var out []*models.KnowledgeDocument
	for _, d := range f.docs {
		if d.TenantID == tenantID {
			clone := *d
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeKnowledgeStore) ListByArea(ctx context.Context, tenantID uuid.UUID, area string, limit int) ([]*models.KnowledgeDocument, error) {
	var out []*models.KnowledgeDocument
	for _, d := range f.docs {
		if d.TenantID != tenantID || len(out) == limit {
			continue
		}
		for _, a := range d.Areas {
			if a == area {
				clone := *d
				out = append(out, &clone)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeKnowledgeStore) ListRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]*models.KnowledgeDocument, error) {
	var out []*models.KnowledgeDocument
	for _, d := range f.docs {
		if d.TenantID != tenantID || len(out) == limit {
			continue
		}
		clone := *d
		out = append(out, &clone)
	}
	return out, nil
}

func (f *fakeKnowledgeStore) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	for i, d := range f.docs {
		if d.ID == id && d.TenantID == tenantID {
			f.docs = append(f.docs[:i], f.docs[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func addDoc(store *fakeKnowledgeStore, tenantID uuid.UUID, name string, areas ...string) *models.KnowledgeDocument {
	doc := &models.KnowledgeDocument{
		ID:          uuid.New(),
		TenantID:    tenantID,
		Name:        name,
		Category:    models.KnowledgeCategoryModelos,
		Areas:       areas,
		StoragePath: "tenants/" + tenantID.String() + "/knowledge/" + name,
	}
	store.docs = append(store.docs, doc)
	return doc
}

func TestResolvePathsPrefersAreaTagged(t *testing.T) {
	store := &fakeKnowledgeStore{}
	tenantID := uuid.New()
	addDoc(store, tenantID, "modelo_trabalhista.pdf", "trabalhista")
	addDoc(store, tenantID, "modelo_geral.pdf", models.AreaGeral)

	svc := NewKnowledgeService(WithKnowledgeStore(store), WithKnowledgeStorage(newFakeBlobStorage()))

	paths, err := svc.ResolvePaths(context.Background(), tenantID, "trabalhista")
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Contains(t, paths[0], "modelo_trabalhista.pdf")
}

func TestResolvePathsFallsBackToGeral(t *testing.T) {
	store := &fakeKnowledgeStore{}
	tenantID := uuid.New()
	addDoc(store, tenantID, "modelo_geral.pdf", models.AreaGeral)

	svc := NewKnowledgeService(WithKnowledgeStore(store), WithKnowledgeStorage(newFakeBlobStorage()))

	paths, err := svc.ResolvePaths(context.Background(), tenantID, "tributario")
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Contains(t, paths[0], "modelo_geral.pdf")
}

func TestResolvePathsFallsBackToRecent(t *testing.T) {
	store := &fakeKnowledgeStore{}
	tenantID := uuid.New()
	addDoc(store, tenantID, "jurisprudencia.pdf", "civel")

	svc := NewKnowledgeService(WithKnowledgeStore(store), WithKnowledgeStorage(newFakeBlobStorage()))

	paths, err := svc.ResolvePaths(context.Background(), tenantID, "tributario")
	require.NoError(t, err)
	require.Len(t, paths, 1)

	// No area asks for the most recent documents directly
	paths, err = svc.ResolvePaths(context.Background(), tenantID, "")
	require.NoError(t, err)
	assert.Len(t, paths, 1)
}

func TestUploadDocument(t *testing.T) {
	store := &fakeKnowledgeStore{}
	blobs := newFakeBlobStorage()
	tenantID := uuid.New()
	svc := NewKnowledgeService(WithKnowledgeStore(store), WithKnowledgeStorage(blobs))

	result, err := svc.UploadDocument(context.Background(), UploadDocumentRequest{
		TenantID: tenantID,
		UserID:   uuid.New(),
		Name:     "modelo peticao.pdf",
		Category: models.KnowledgeCategoryModelos,
		Size:     4,
		Data:     strings.NewReader("%PDF"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{models.AreaGeral}, result.Document.Areas)
	assert.Equal(t, "application/pdf", result.Document.MimeType)
	assert.True(t, strings.HasPrefix(result.Document.StoragePath, "tenants/"+tenantID.String()+"/knowledge/"))
	assert.Contains(t, blobs.blobs, result.Document.StoragePath)

	_, err = svc.UploadDocument(context.Background(), UploadDocumentRequest{TenantID: tenantID, Name: "sem-categoria.pdf"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestUploadDocumentCleansUpBlobOnRecordFailure(t *testing.T) {
	store := &fakeKnowledgeStore{createErr: errors.New("db down")}
	blobs := newFakeBlobStorage()
	svc := NewKnowledgeService(WithKnowledgeStore(store), WithKnowledgeStorage(blobs))

	_, err := svc.UploadDocument(context.Background(), UploadDocumentRequest{
		TenantID: uuid.New(),
		Name:     "modelo.pdf",
		Category: models.KnowledgeCategoryModelos,
		Data:     strings.NewReader("%PDF"),
	})
	require.Error(t, err)
	assert.Empty(t, blobs.blobs)
}

func TestDeleteDocumentRemovesBlob(t *testing.T) {
	store := &fakeKnowledgeStore{}
	blobs := newFakeBlobStorage()
	tenantID := uuid.New()
	doc := addDoc(store, tenantID, "modelo.pdf", models.AreaGeral)
	blobs.blobs[doc.StoragePath] = []byte("%PDF")

	svc := NewKnowledgeService(WithKnowledgeStore(store), WithKnowledgeStorage(blobs))

	require.NoError(t, svc.DeleteDocument(context.Background(), tenantID, doc.ID))
	assert.Empty(t, blobs.blobs)
	assert.Empty(t, store.docs)

	err := svc.DeleteDocument(context.Background(), tenantID, doc.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
