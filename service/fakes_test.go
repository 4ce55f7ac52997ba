package service

import (
	"bytes"
	"context"
	"io"
	"time"

	"lexdesk-backend/ai"
	"lexdesk-backend/models"
	"lexdesk-backend/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// In-memory fakes for the collaborator interfaces in deps.go.

type fakePetitionStore struct {
	petitions map[uuid.UUID]*models.Petition
	updates   int
}

func newFakePetitionStore() *fakePetitionStore {
	return &fakePetitionStore{petitions: make(map[uuid.UUID]*models.Petition)}
}

func (f *fakePetitionStore) Create(ctx context.Context, p *models.Petition) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	clone := *p
	f.petitions[p.ID] = &clone
	return nil
}

func (f *fakePetitionStore) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Petition, error) {
	p, ok := f.petitions[id]
	if !ok || p.TenantID != tenantID {
		return nil, pgx.ErrNoRows
	}
	clone := *p
	return &clone, nil
}

func (f *fakePetitionStore) Update(ctx context.Context, p *models.Petition) error {
	if _, ok := f.petitions[p.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *p
	f.petitions[p.ID] = &clone
	f.updates++
	return nil
}

func (f *fakePetitionStore) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status models.PetitionStatus) error {
	p, ok := f.petitions[id]
	if !ok || p.TenantID != tenantID {
		return pgx.ErrNoRows
	}
	p.Status = status
	return nil
}

func (f *fakePetitionStore) ListByTenant(ctx context.Context, tenantID uuid.UUID, status *models.PetitionStatus, limit, offset int) ([]*models.Petition, error) {
	var out []*models.Petition
	for _, p := range f.petitions {
		if p.TenantID != tenantID {
			continue
		}
		if status != nil && p.Status != *status {
			continue
		}
		clone := *p
		out = append(out, &clone)
	}
	return out, nil
}

func (f *fakePetitionStore) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	delete(f.petitions, id)
	return nil
}

type fakeSettingsStore struct {
	settings models.TenantSettings
}

func (f *fakeSettingsStore) Get(ctx context.Context, tenantID uuid.UUID) (*models.TenantSettings, error) {
	clone := f.settings
	return &clone, nil
}

func (f *fakeSettingsStore) UpdatePrompts(ctx context.Context, tenantID uuid.UUID, prompts models.AIPrompts) error {
	f.settings.Prompts = prompts
	return nil
}

func (f *fakeSettingsStore) UpdateOffice(ctx context.Context, tenantID uuid.UUID, office models.OfficeSettings) error {
	f.settings.Office = office
	return nil
}

type fakeLimiter struct {
	err        error
	checks     []string
	principals []uuid.UUID
}

func (f *fakeLimiter) Check(ctx context.Context, userID uuid.UUID, action string) error {
	f.checks = append(f.checks, action)
	f.principals = append(f.principals, userID)
	return f.err
}

type fakeKnowledge struct {
	paths []string
}

func (f *fakeKnowledge) ResolvePaths(ctx context.Context, tenantID uuid.UUID, area string) ([]string, error) {
	return f.paths, nil
}

type fakeAttachments struct{}

func (fakeAttachments) PrepareCaseFiles(ctx context.Context, paths []string) []ai.Part   { return nil }
func (fakeAttachments) PrepareReviewFiles(ctx context.Context, paths []string) []ai.Part { return nil }
func (fakeAttachments) PrepareKnowledge(ctx context.Context, paths []string) []ai.Part   { return nil }
func (fakeAttachments) FileDigest(ctx context.Context, path string) (string, error) {
	return "", nil
}
func (fakeAttachments) KnowledgeDigest(ctx context.Context, paths []string) (string, error) {
	return "", nil
}

type fakeAnalyzer struct {
	analysis      *models.InitialAnalysis
	judgeAnalysis *models.JudgeAnalysis
	err           error
	calls         int
}

func (f *fakeAnalyzer) AnalyzeCase(ctx context.Context, req AnalyzeCaseRequest) (*models.InitialAnalysis, error) {
	f.calls++
	return f.analysis, f.err
}

func (f *fakeAnalyzer) AnalyzeForReview(ctx context.Context, req AnalyzeReviewRequest) (*models.JudgeAnalysis, error) {
	f.calls++
	return f.judgeAnalysis, f.err
}

type fakeStructurer struct {
	structure *models.PetitionStructure
	err       error
}

func (f *fakeStructurer) BuildStructure(ctx context.Context, req BuildStructureRequest) (*models.PetitionStructure, error) {
	return f.structure, f.err
}

type fakeGenerator struct {
	text       string
	report     *models.JudgeReport
	chatReport *models.ChatReport
	err        error
	calls      int
}

func (f *fakeGenerator) GeneratePetition(ctx context.Context, req GeneratePetitionRequest) (string, error) {
	f.calls++
	return f.text, f.err
}

func (f *fakeGenerator) GenerateJudgeReport(ctx context.Context, req GenerateJudgeReportRequest) (*models.JudgeReport, error) {
	f.calls++
	return f.report, f.err
}

func (f *fakeGenerator) GenerateChatResponse(ctx context.Context, req GenerateChatResponseRequest) (string, error) {
	f.calls++
	return f.text, f.err
}

func (f *fakeGenerator) GenerateChatReport(ctx context.Context, req GenerateChatReportRequest) (*models.ChatReport, error) {
	f.calls++
	return f.chatReport, f.err
}

type fakeRenderer struct {
	err error
}

func (f *fakeRenderer) RenderPetition(text, title, area, petitionType string, office *models.OfficeSettings) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("PK" + text), nil
}

func (f *fakeRenderer) RenderJudgeReport(report *models.JudgeReport, office *models.OfficeSettings) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("PKreport"), nil
}

type fakeBlobStorage struct {
	blobs map[string][]byte
}

func newFakeBlobStorage() *fakeBlobStorage {
	return &fakeBlobStorage{blobs: make(map[string][]byte)}
}

func (f *fakeBlobStorage) Upload(ctx context.Context, path string, contentType string, data io.Reader) error {
	content, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.blobs[path] = content
	return nil
}

func (f *fakeBlobStorage) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	content, ok := f.blobs[path]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

func (f *fakeBlobStorage) Delete(ctx context.Context, path string) error {
	delete(f.blobs, path)
	return nil
}

func (f *fakeBlobStorage) SignedURL(ctx context.Context, path string) (string, error) {
	return "https://files.example.com/" + path, nil
}

type fakeChatStore struct {
	sessions map[uuid.UUID]*models.ChatSession
	messages []*models.ChatMessage
}

func newFakeChatStore() *fakeChatStore {
	return &fakeChatStore{sessions: make(map[uuid.UUID]*models.ChatSession)}
}

func (f *fakeChatStore) CreateSession(ctx context.Context, session *models.ChatSession) error {
	session.ID = uuid.New()
	session.CreatedAt = time.Now()
	session.UpdatedAt = session.CreatedAt
	clone := *session
	f.sessions[session.ID] = &clone
	return nil
}

func (f *fakeChatStore) GetSession(ctx context.Context, tenantID, id uuid.UUID) (*models.ChatSession, error) {
	s, ok := f.sessions[id]
	if !ok || s.TenantID != tenantID {
		return nil, pgx.ErrNoRows
	}
	clone := *s
	return &clone, nil
}

func (f *fakeChatStore) ListSessions(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.ChatSession, error) {
	var out []*models.ChatSession
	for _, s := range f.sessions {
		if s.TenantID != tenantID {
			continue
		}
		clone := *s
		out = append(out, &clone)
	}
	return out, nil
}

func (f *fakeChatStore) UpdateSessionSummary(ctx context.Context, tenantID, id uuid.UUID, lastMessage string, at time.Time) error {
	s, ok := f.sessions[id]
	if !ok || s.TenantID != tenantID {
		return pgx.ErrNoRows
	}
	s.LastMessage = &lastMessage
	s.LastMessageAt = &at
	return nil
}

func (f *fakeChatStore) UpdateSessionReport(ctx context.Context, tenantID, id uuid.UUID, reportPath, reportURL string) error {
	s, ok := f.sessions[id]
	if !ok || s.TenantID != tenantID {
		return pgx.ErrNoRows
	}
	s.ReportPath = &reportPath
	s.ReportURL = &reportURL
	return nil
}

func (f *fakeChatStore) UpdateSessionStatus(ctx context.Context, tenantID, id uuid.UUID, status models.ChatSessionStatus) error {
	s, ok := f.sessions[id]
	if !ok || s.TenantID != tenantID {
		return pgx.ErrNoRows
	}
	s.Status = status
	return nil
}

func (f *fakeChatStore) CreateMessage(ctx context.Context, message *models.ChatMessage) error {
	message.ID = uuid.New()
	message.CreatedAt = time.Now()
	clone := *message
	f.messages = append(f.messages, &clone)
	return nil
}

func (f *fakeChatStore) ListMessages(ctx context.Context, tenantID, sessionID uuid.UUID) ([]*models.ChatMessage, error) {
	var out []*models.ChatMessage
	for _, m := range f.messages {
		if m.TenantID != tenantID || m.SessionID != sessionID {
			continue
		}
		clone := *m
		out = append(out, &clone)
	}
	return out, nil
}

func (f *fakeChatStore) DeleteSession(ctx context.Context, tenantID, id uuid.UUID) error {
	delete(f.sessions, id)
	kept := f.messages[:0]
	for _, m := range f.messages {
		if m.SessionID != id {
			kept = append(kept, m)
		}
	}
	f.messages = kept
	return nil
}

type fakeReviewStore struct {
	reviews map[uuid.UUID]*models.JudgeReview
	updates int
}

func newFakeReviewStore() *fakeReviewStore {
	return &fakeReviewStore{reviews: make(map[uuid.UUID]*models.JudgeReview)}
}

func (f *fakeReviewStore) Create(ctx context.Context, r *models.JudgeReview) error {
	r.ID = uuid.New()
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	clone := *r
	f.reviews[r.ID] = &clone
	return nil
}

func (f *fakeReviewStore) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.JudgeReview, error) {
	r, ok := f.reviews[id]
	if !ok || r.TenantID != tenantID {
		return nil, pgx.ErrNoRows
	}
	clone := *r
	return &clone, nil
}

func (f *fakeReviewStore) Update(ctx context.Context, r *models.JudgeReview) error {
	if _, ok := f.reviews[r.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *r
	f.reviews[r.ID] = &clone
	f.updates++
	return nil
}

func (f *fakeReviewStore) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status models.ReviewStatus) error {
	r, ok := f.reviews[id]
	if !ok || r.TenantID != tenantID {
		return pgx.ErrNoRows
	}
	r.Status = status
	return nil
}

func (f *fakeReviewStore) ListByTenant(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.JudgeReview, error) {
	var out []*models.JudgeReview
	for _, r := range f.reviews {
		if r.TenantID != tenantID {
			continue
		}
		clone := *r
		out = append(out, &clone)
	}
	return out, nil
}

func (f *fakeReviewStore) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	delete(f.reviews, id)
	return nil
}
