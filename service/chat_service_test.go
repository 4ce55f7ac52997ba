package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"lexdesk-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatFixture struct {
	chats     *fakeChatStore
	settings  *fakeSettingsStore
	limiter   *fakeLimiter
	generator *fakeGenerator
	storage   *fakeBlobStorage
	tenantID  uuid.UUID
	userID    uuid.UUID
	svc       *ChatService
}

func newChatFixture() *chatFixture {
	f := &chatFixture{
		chats:    newFakeChatStore(),
		settings: &fakeSettingsStore{},
		limiter:  &fakeLimiter{},
		generator: &fakeGenerator{
			text: "Entendi. Pode me contar desde quando o problema ocorre?",
			chatReport: &models.ChatReport{
				ClientName:      "Maria Souza",
				Area:            "trabalhista",
				ResumoCaso:      "Demissão sem pagamento de verbas rescisórias.",
				AnaliseJuridica: "Há indícios de violação da CLT.",
				Teses:           []string{"Verbas rescisórias devidas"},
				ProximosPassos:  []string{"Reunir holerites"},
			},
		},
		storage:  newFakeBlobStorage(),
		tenantID: uuid.New(),
		userID:   uuid.New(),
	}
	f.svc = NewChatService(
		WithChatStore(f.chats),
		WithChatSettings(f.settings),
		WithChatLimiter(f.limiter),
		WithChatKnowledge(&fakeKnowledge{}),
		WithChatAttachments(&fakeAttachments{}),
		WithChatGenerator(f.generator),
		WithChatRenderer(&fakeRenderer{}),
		WithChatBlobStorage(f.storage),
	)
	return f
}

func (f *chatFixture) createSession(t *testing.T) *models.ChatSession {
	t.Helper()
	result, err := f.svc.CreateSession(context.Background(), CreateSessionRequest{
		TenantID:   f.tenantID,
		UserID:     f.userID,
		ClientName: "Maria Souza",
		Area:       "trabalhista",
	})
	require.NoError(t, err)
	return result.Session
}

func TestCreateSessionValidation(t *testing.T) {
	f := newChatFixture()

	_, err := f.svc.CreateSession(context.Background(), CreateSessionRequest{
		TenantID: f.tenantID,
		UserID:   f.userID,
		Area:     "trabalhista",
	})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	session := f.createSession(t)
	assert.Equal(t, models.ChatSessionActive, session.Status)
	assert.NotEqual(t, uuid.Nil, session.ID)
}

func TestSendMessagePersistsTurnAndPreview(t *testing.T) {
	f := newChatFixture()
	session := f.createSession(t)

	result, err := f.svc.SendMessage(context.Background(), SendMessageRequest{
		TenantID:  f.tenantID,
		UserID:    f.userID,
		SessionID: session.ID,
		Message:   "Fui demitida e não recebi minhas verbas.",
	})
	require.NoError(t, err)
	assert.Equal(t, f.generator.text, result.Response)
	assert.Equal(t, []string{ActionChatMessage}, f.limiter.checks)
	assert.Equal(t, []uuid.UUID{f.userID}, f.limiter.principals)

	messages, err := f.svc.ListMessages(context.Background(), f.tenantID, session.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, models.ChatRoleUser, messages[0].Role)
	assert.Equal(t, "Fui demitida e não recebi minhas verbas.", messages[0].Content)
	assert.Equal(t, models.ChatRoleAssistant, messages[1].Role)
	assert.Equal(t, f.generator.text, messages[1].Content)

	stored, err := f.svc.GetSession(context.Background(), f.tenantID, session.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastMessage)
	assert.Equal(t, f.generator.text, *stored.LastMessage)
	assert.NotNil(t, stored.LastMessageAt)
}

func TestSendMessageTruncatesPreview(t *testing.T) {
	f := newChatFixture()
	f.generator.text = strings.Repeat("a", lastMessagePreviewLen+50)
	session := f.createSession(t)

	_, err := f.svc.SendMessage(context.Background(), SendMessageRequest{
		TenantID:  f.tenantID,
		UserID:    f.userID,
		SessionID: session.ID,
		Message:   "Olá",
	})
	require.NoError(t, err)

	stored, err := f.svc.GetSession(context.Background(), f.tenantID, session.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastMessage)
	assert.Len(t, *stored.LastMessage, lastMessagePreviewLen)
}

func TestSendMessagePreviewKeepsRunesWhole(t *testing.T) {
	f := newChatFixture()
	// "ção" straddles the byte cutoff; the preview must stay valid UTF-8.
	f.generator.text = strings.Repeat("a", lastMessagePreviewLen-1) + "ção e rescisão"
	session := f.createSession(t)

	_, err := f.svc.SendMessage(context.Background(), SendMessageRequest{
		TenantID:  f.tenantID,
		UserID:    f.userID,
		SessionID: session.ID,
		Message:   "Olá",
	})
	require.NoError(t, err)

	stored, err := f.svc.GetSession(context.Background(), f.tenantID, session.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastMessage)
	assert.True(t, utf8.ValidString(*stored.LastMessage))
	assert.LessOrEqual(t, len(*stored.LastMessage), lastMessagePreviewLen)
	assert.True(t, strings.HasPrefix(f.generator.text, *stored.LastMessage))
}

func TestSendMessageValidation(t *testing.T) {
	f := newChatFixture()
	session := f.createSession(t)

	_, err := f.svc.SendMessage(context.Background(), SendMessageRequest{
		TenantID:  f.tenantID,
		UserID:    f.userID,
		SessionID: session.ID,
		Message:   "   ",
	})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = f.svc.SendMessage(context.Background(), SendMessageRequest{
		TenantID:  f.tenantID,
		UserID:    f.userID,
		SessionID: session.ID,
		Message:   "Segue o contrato",
		FilePath:  "tenants/" + uuid.NewString() + "/uploads/contrato.pdf",
	})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestSendMessageClosedSession(t *testing.T) {
	f := newChatFixture()
	session := f.createSession(t)
	require.NoError(t, f.svc.CloseSession(context.Background(), f.tenantID, session.ID))

	_, err := f.svc.SendMessage(context.Background(), SendMessageRequest{
		TenantID:  f.tenantID,
		UserID:    f.userID,
		SessionID: session.ID,
		Message:   "Ainda está aí?",
	})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestSendMessageGenerationFailureLeavesTranscriptEmpty(t *testing.T) {
	f := newChatFixture()
	session := f.createSession(t)
	f.generator.err = errors.New("model unavailable")

	_, err := f.svc.SendMessage(context.Background(), SendMessageRequest{
		TenantID:  f.tenantID,
		UserID:    f.userID,
		SessionID: session.ID,
		Message:   "Fui demitida",
	})
	require.Error(t, err)

	messages, err := f.svc.ListMessages(context.Background(), f.tenantID, session.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)

	stored, err := f.svc.GetSession(context.Background(), f.tenantID, session.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.LastMessage)
}

func TestSendMessageRateLimited(t *testing.T) {
	f := newChatFixture()
	session := f.createSession(t)
	f.limiter.err = &RateLimitedError{Action: ActionChatMessage, Limit: 100}

	_, err := f.svc.SendMessage(context.Background(), SendMessageRequest{
		TenantID:  f.tenantID,
		UserID:    f.userID,
		SessionID: session.ID,
		Message:   "Olá",
	})
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Zero(t, f.generator.calls)
}

func TestChatSessionIsTenantScoped(t *testing.T) {
	f := newChatFixture()
	session := f.createSession(t)

	_, err := f.svc.GetSession(context.Background(), uuid.New(), session.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.ListMessages(context.Background(), uuid.New(), session.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGenerateChatReportRequiresMessages(t *testing.T) {
	f := newChatFixture()
	session := f.createSession(t)

	_, err := f.svc.GenerateReport(context.Background(), f.tenantID, session.ID)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestGenerateChatReportPersistsArtifact(t *testing.T) {
	f := newChatFixture()
	session := f.createSession(t)

	_, err := f.svc.SendMessage(context.Background(), SendMessageRequest{
		TenantID:  f.tenantID,
		UserID:    f.userID,
		SessionID: session.ID,
		Message:   "Fui demitida sem receber nada.",
	})
	require.NoError(t, err)

	result, err := f.svc.GenerateReport(context.Background(), f.tenantID, session.ID)
	require.NoError(t, err)
	assert.Equal(t, f.generator.chatReport, result.Report)
	assert.True(t, strings.HasPrefix(result.ReportPath, "tenants/"+f.tenantID.String()+"/chat-reports/"))
	assert.Contains(t, f.storage.blobs, result.ReportPath)

	stored, err := f.svc.GetSession(context.Background(), f.tenantID, session.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ReportPath)
	assert.Equal(t, result.ReportPath, *stored.ReportPath)
	require.NotNil(t, stored.ReportURL)
	assert.Equal(t, result.ReportURL, *stored.ReportURL)
}

func TestDeleteSessionRemovesTranscript(t *testing.T) {
	f := newChatFixture()
	session := f.createSession(t)

	_, err := f.svc.SendMessage(context.Background(), SendMessageRequest{
		TenantID:  f.tenantID,
		UserID:    f.userID,
		SessionID: session.ID,
		Message:   "Olá",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteSession(context.Background(), f.tenantID, session.ID))

	_, err = f.svc.GetSession(context.Background(), f.tenantID, session.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, f.chats.messages)
}

func TestReportText(t *testing.T) {
	text := reportText(&models.ChatReport{
		ClientName:         "Maria Souza",
		Area:               "trabalhista",
		ResumoCaso:         "Demissão sem verbas.",
		AnaliseJuridica:    "Violação da CLT.",
		Teses:              []string{"Verbas devidas", "Dano moral"},
		PropostaHonorarios: "30% sobre o proveito econômico",
		ProximosPassos:     []string{"Reunir holerites"},
	})

	assert.Contains(t, text, "## RESUMO DO CASO")
	assert.Contains(t, text, "1. Verbas devidas")
	assert.Contains(t, text, "2. Dano moral")
	assert.Contains(t, text, "## PROPOSTA DE HONORÁRIOS")
	assert.Contains(t, text, "## PRÓXIMOS PASSOS")

	noFee := reportText(&models.ChatReport{ClientName: "João", Area: "cível"})
	assert.NotContains(t, noFee, "PROPOSTA DE HONORÁRIOS")
}
