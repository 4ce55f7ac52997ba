package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"lexdesk-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reviewFixture struct {
	reviews   *fakeReviewStore
	settings  *fakeSettingsStore
	limiter   *fakeLimiter
	analyzer  *fakeAnalyzer
	generator *fakeGenerator
	storage   *fakeBlobStorage
	tenantID  uuid.UUID
	userID    uuid.UUID
	svc       *ReviewService
}

func newReviewFixture() *reviewFixture {
	f := &reviewFixture{
		reviews:  newFakeReviewStore(),
		settings: &fakeSettingsStore{},
		limiter:  &fakeLimiter{},
		analyzer: &fakeAnalyzer{
			judgeAnalysis: &models.JudgeAnalysis{
				ResumoPeticao:    "Ação de cobrança fundada em contrato de prestação de serviços.",
				ImpressaoInicial: "Petição bem fundamentada, mas com lacunas probatórias.",
				Perguntas: []models.StrategicQuestion{
					{ID: 1, Pergunta: "Há comprovante de entrega dos serviços?", Tipo: models.QuestionTypeText},
				},
			},
		},
		generator: &fakeGenerator{
			report: &models.JudgeReport{
				PontosFortes:               []string{"Contrato escrito anexado"},
				PontosFracos:               []string{"Ausência de notificação prévia"},
				LacunasProbatorias:         []string{"Comprovante de entrega"},
				Riscos:                     []string{"Improcedência parcial"},
				ProbabilidadeExito:         "alta",
				JustificativaProbabilidade: "Prova documental robusta.",
			},
		},
		storage:  newFakeBlobStorage(),
		tenantID: uuid.New(),
		userID:   uuid.New(),
	}
	f.svc = NewReviewService(
		WithReviewStore(f.reviews),
		WithReviewSettings(f.settings),
		WithReviewLimiter(f.limiter),
		WithReviewKnowledge(&fakeKnowledge{}),
		WithReviewAttachments(&fakeAttachments{}),
		WithReviewAnalyzer(f.analyzer),
		WithReviewGenerator(f.generator),
		WithReviewRenderer(&fakeRenderer{}),
		WithReviewBlobStorage(f.storage),
	)
	return f
}

func (f *reviewFixture) create(t *testing.T) *models.JudgeReview {
	t.Helper()
	result, err := f.svc.CreateReview(context.Background(), CreateReviewRequest{
		TenantID:        f.tenantID,
		UserID:          f.userID,
		Description:     "Cobrança de honorários contratuais não pagos.",
		PetitionContent: "EXCELENTÍSSIMO SENHOR DOUTOR JUIZ...",
	})
	require.NoError(t, err)
	return result.Review
}

func TestCreateReviewValidation(t *testing.T) {
	f := newReviewFixture()

	_, err := f.svc.CreateReview(context.Background(), CreateReviewRequest{
		TenantID:        f.tenantID,
		UserID:          f.userID,
		PetitionContent: "texto",
	})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = f.svc.CreateReview(context.Background(), CreateReviewRequest{
		TenantID:    f.tenantID,
		UserID:      f.userID,
		Description: "Caso sem petição",
	})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = f.svc.CreateReview(context.Background(), CreateReviewRequest{
		TenantID:         f.tenantID,
		UserID:           f.userID,
		Description:      "Petição de outro escritório",
		PetitionFilePath: "tenants/" + uuid.NewString() + "/uploads/peticao.pdf",
	})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestCreateReviewStartsAnalyzing(t *testing.T) {
	f := newReviewFixture()
	review := f.create(t)

	assert.Equal(t, models.ReviewStatusAnalyzing, review.Status)
	require.NotNil(t, review.PetitionContent)
	assert.Nil(t, review.PetitionFilePath)
}

func TestReviewAnalyzeAdvancesToQuestions(t *testing.T) {
	f := newReviewFixture()
	review := f.create(t)

	result, err := f.svc.Analyze(context.Background(), f.tenantID, f.userID, review.ID)
	require.NoError(t, err)
	assert.Equal(t, f.analyzer.judgeAnalysis, result.Analysis)
	assert.Equal(t, []string{ActionJudgeAnalysis}, f.limiter.checks)
	assert.Equal(t, []uuid.UUID{f.userID}, f.limiter.principals)

	stored, err := f.svc.GetReview(context.Background(), f.tenantID, review.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReviewStatusQuestions, stored.Status)
	require.NotNil(t, stored.InitialAnalysis)
	assert.Len(t, stored.InitialAnalysis.Perguntas, 1)
}

func TestReviewAnalyzeFailureMarksError(t *testing.T) {
	f := newReviewFixture()
	review := f.create(t)
	f.analyzer.err = errors.New("model unavailable")

	_, err := f.svc.Analyze(context.Background(), f.tenantID, f.userID, review.ID)
	require.Error(t, err)

	stored, err := f.svc.GetReview(context.Background(), f.tenantID, review.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReviewStatusError, stored.Status)

	// Errored reviews stay retryable
	f.analyzer.err = nil
	_, err = f.svc.Analyze(context.Background(), f.tenantID, f.userID, review.ID)
	require.NoError(t, err)
}

func TestReviewAnalyzeRateLimited(t *testing.T) {
	f := newReviewFixture()
	review := f.create(t)
	f.limiter.err = &RateLimitedError{Action: ActionJudgeAnalysis, Limit: 10}

	_, err := f.svc.Analyze(context.Background(), f.tenantID, f.userID, review.ID)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Zero(t, f.analyzer.calls)
}

func TestGenerateReportRequiresAnalysisAndAnswers(t *testing.T) {
	f := newReviewFixture()
	review := f.create(t)

	_, err := f.svc.GenerateReport(context.Background(), f.tenantID, review.ID, models.StrategicAnswers{"1": "sim"})
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = f.svc.Analyze(context.Background(), f.tenantID, f.userID, review.ID)
	require.NoError(t, err)

	_, err = f.svc.GenerateReport(context.Background(), f.tenantID, review.ID, models.StrategicAnswers{})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestGenerateReportPersistsArtifact(t *testing.T) {
	f := newReviewFixture()
	review := f.create(t)
	_, err := f.svc.Analyze(context.Background(), f.tenantID, f.userID, review.ID)
	require.NoError(t, err)

	answers := models.StrategicAnswers{"1": "Há comprovantes assinados"}
	result, err := f.svc.GenerateReport(context.Background(), f.tenantID, review.ID, answers)
	require.NoError(t, err)
	assert.Equal(t, f.generator.report, result.Report)
	assert.True(t, strings.HasPrefix(result.DocxPath, "tenants/"+f.tenantID.String()+"/judge-reports/"))
	assert.Contains(t, f.storage.blobs, result.DocxPath)

	stored, err := f.svc.GetReview(context.Background(), f.tenantID, review.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReviewStatusCompleted, stored.Status)
	assert.Equal(t, answers, stored.StrategicAnswers)
	require.NotNil(t, stored.DocxPath)
	assert.Equal(t, result.DocxPath, *stored.DocxPath)
}

func TestGenerateReportIdempotentWhenCompleted(t *testing.T) {
	f := newReviewFixture()
	review := f.create(t)
	_, err := f.svc.Analyze(context.Background(), f.tenantID, f.userID, review.ID)
	require.NoError(t, err)

	answers := models.StrategicAnswers{"1": "sim"}
	first, err := f.svc.GenerateReport(context.Background(), f.tenantID, review.ID, answers)
	require.NoError(t, err)

	callsBefore := f.generator.calls
	second, err := f.svc.GenerateReport(context.Background(), f.tenantID, review.ID, answers)
	require.NoError(t, err)
	assert.Equal(t, first.DocxPath, second.DocxPath)
	assert.Equal(t, callsBefore, f.generator.calls)
}

func TestGenerateReportFailureMarksError(t *testing.T) {
	f := newReviewFixture()
	review := f.create(t)
	_, err := f.svc.Analyze(context.Background(), f.tenantID, f.userID, review.ID)
	require.NoError(t, err)

	f.generator.err = errors.New("model unavailable")
	_, err = f.svc.GenerateReport(context.Background(), f.tenantID, review.ID, models.StrategicAnswers{"1": "sim"})
	require.Error(t, err)

	stored, err := f.svc.GetReview(context.Background(), f.tenantID, review.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReviewStatusError, stored.Status)
	assert.NotNil(t, stored.InitialAnalysis)
}

func TestReviewIsTenantScoped(t *testing.T) {
	f := newReviewFixture()
	review := f.create(t)

	_, err := f.svc.GetReview(context.Background(), uuid.New(), review.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = f.svc.DeleteReview(context.Background(), uuid.New(), review.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
