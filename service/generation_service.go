package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"lexdesk-backend/ai"
	"lexdesk-backend/models"
)

// Token budgets per generation kind
const (
	petitionMaxTokens    = 8192
	judgeReportMaxTokens = 6144
	chatMaxTokens        = 2048
)

// chatHistoryLimit bounds how many prior turns are replayed to the model
const chatHistoryLimit = 20

// GenerationService runs the long-form stages: petition text, judge report,
// chat responses and the intake report.
type GenerationService struct {
	textClient TextGenerator
	jsonClient MultimodalClient
}

// GenerationServiceOption is a functional option for GenerationService
type GenerationServiceOption func(*GenerationService)

// WithTextGenerator sets the long-form text capability
func WithTextGenerator(c TextGenerator) GenerationServiceOption {
	return func(s *GenerationService) {
		s.textClient = c
	}
}

// WithGenerationJSONClient sets the structured-JSON capability used for the
// chat intake report
func WithGenerationJSONClient(c MultimodalClient) GenerationServiceOption {
	return func(s *GenerationService) {
		s.jsonClient = c
	}
}

// NewGenerationService creates a new generation service
func NewGenerationService(opts ...GenerationServiceOption) *GenerationService {
	s := &GenerationService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GeneratePetitionRequest carries the inputs of the final petition writing
// stage
type GeneratePetitionRequest struct {
	Area         string
	PetitionType string
	Facts        string
	Resumo       string
	Teses        []string
	Answers      models.StrategicAnswers
	Structure    *models.PetitionStructure
	CustomPrompt string
}

// GeneratePetition writes the full petition text from the accumulated stage
// outputs. The output uses "## SECTION" markers consumed by the renderer.
func (s *GenerationService) GeneratePetition(ctx context.Context, req GeneratePetitionRequest) (string, error) {
	system := applyTenantPrompt(
		fmt.Sprintf(petitionGenerationPromptFmt, req.Area, req.Area, req.PetitionType),
		req.CustomPrompt,
	)

	topics, pedidos, partes := formatStructure(req.Structure)

	user := fmt.Sprintf(`Redija a petição completa com base nas informações abaixo:

ENDEREÇAMENTO: %s
PARTES: %s

FATOS DO CASO:
%s

RESUMO E TESES:
%s
Teses: %s

INFORMAÇÕES COMPLEMENTARES:
%s

ESTRUTURA DA PETIÇÃO:
%s

PEDIDOS:
%s

Redija a petição completa, detalhada e pronta para protocolo.`,
		req.Structure.Enderecamento,
		partes,
		req.Facts,
		req.Resumo,
		strings.Join(req.Teses, "; "),
		formatAnswers(req.Answers),
		topics,
		pedidos,
	)

	text, err := s.textClient.GenerateText(ctx, system, []ai.Turn{{Role: "user", Content: user}}, petitionMaxTokens)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty petition text", ErrGenerationFailed)
	}
	return text, nil
}

// GenerateJudgeReportRequest carries the inputs of the judge report stage
type GenerateJudgeReportRequest struct {
	PetitionContent string
	Description     string
	Analysis        *models.JudgeAnalysis
	Answers         models.StrategicAnswers
	CustomPrompt    string
}

// GenerateJudgeReport produces the structured critique. The model answers in
// prose around the JSON at times, so the first balanced JSON object is
// extracted before decoding.
func (s *GenerationService) GenerateJudgeReport(ctx context.Context, req GenerateJudgeReportRequest) (*models.JudgeReport, error) {
	system := applyTenantPrompt(judgeReportPrompt, req.CustomPrompt)

	user := fmt.Sprintf(`DESCRIÇÃO DO CASO: %s

RESUMO DA PETIÇÃO: %s
IMPRESSÃO INICIAL: %s

INFORMAÇÕES COMPLEMENTARES DO ADVOGADO:
%s

PETIÇÃO COMPLETA:
%s`,
		req.Description,
		req.Analysis.ResumoPeticao,
		req.Analysis.ImpressaoInicial,
		formatAnswers(req.Answers),
		req.PetitionContent,
	)

	text, err := s.textClient.GenerateText(ctx, system, []ai.Turn{{Role: "user", Content: user}}, judgeReportMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	raw, ok := extractJSONObject(text)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in report output", ErrGenerationFailed)
	}

	var report models.JudgeReport
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return nil, fmt.Errorf("%w: malformed report JSON: %v", ErrGenerationFailed, err)
	}
	if report.ProbabilidadeExito == "" {
		return nil, fmt.Errorf("%w: report missing success probability", ErrGenerationFailed)
	}

	return &report, nil
}

// GenerateChatResponseRequest carries one chat turn
type GenerateChatResponseRequest struct {
	SystemContext string
	History       []ai.Turn
	UserMessage   string
	FileContext   string
	CustomPrompt  string
}

// GenerateChatResponse produces the assistant reply for one chat turn,
// replaying at most the last chatHistoryLimit turns.
func (s *GenerationService) GenerateChatResponse(ctx context.Context, req GenerateChatResponseRequest) (string, error) {
	system := applyTenantPrompt(
		fmt.Sprintf(chatSystemPromptFmt, req.SystemContext),
		req.CustomPrompt,
	)

	history := req.History
	if len(history) > chatHistoryLimit {
		history = history[len(history)-chatHistoryLimit:]
	}

	content := req.UserMessage
	if req.FileContext != "" {
		content = req.UserMessage + "\n\n[Documento anexado]:\n" + req.FileContext
	}

	turns := make([]ai.Turn, 0, len(history)+1)
	turns = append(turns, history...)
	turns = append(turns, ai.Turn{Role: "user", Content: content})

	text, err := s.textClient.GenerateText(ctx, system, turns, chatMaxTokens)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	return text, nil
}

// GenerateChatReportRequest carries the inputs of the intake report
type GenerateChatReportRequest struct {
	ClientName string
	Area       string
	Messages   []*models.ChatMessage
}

// GenerateChatReport condenses a full session transcript into a structured
// intake report.
func (s *GenerationService) GenerateChatReport(ctx context.Context, req GenerateChatReportRequest) (*models.ChatReport, error) {
	lines := make([]string, 0, len(req.Messages))
	for _, m := range req.Messages {
		speaker := "IA"
		if m.Role == models.ChatRoleUser {
			speaker = "ADVOGADO"
		}
		lines = append(lines, speaker+": "+m.Content)
	}

	prompt := fmt.Sprintf(chatReportPromptFmt, req.ClientName, req.Area, strings.Join(lines, "\n"))

	raw, err := s.jsonClient.GenerateJSON(ctx, []ai.Part{ai.TextPart(prompt)})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	var report models.ChatReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("%w: malformed report JSON: %v", ErrGenerationFailed, err)
	}
	if report.ResumoCaso == "" {
		return nil, fmt.Errorf("%w: report missing case summary", ErrGenerationFailed)
	}

	return &report, nil
}

// extractJSONObject returns the first balanced top-level JSON object in text.
// Braces inside string literals do not count toward the balance.
func extractJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
