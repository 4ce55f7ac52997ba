package service

import (
	"context"
	"encoding/json"
	"fmt"

	"lexdesk-backend/ai"
	"lexdesk-backend/models"
)

// AnalysisService runs the JSON-constrained analysis stages against the
// multimodal capability and validates the decoded shapes before anything is
// persisted.
type AnalysisService struct {
	client MultimodalClient
}

// AnalysisServiceOption is a functional option for AnalysisService
type AnalysisServiceOption func(*AnalysisService)

// WithAnalysisClient sets the multimodal client
func WithAnalysisClient(c MultimodalClient) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.client = c
	}
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(opts ...AnalysisServiceOption) *AnalysisService {
	s := &AnalysisService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnalyzeCaseRequest carries the inputs of the petition analysis stage.
// KnowledgeParts precede CaseParts in the prompt so the model reads reference
// material before the case files.
type AnalyzeCaseRequest struct {
	Facts          string
	Area           string
	PetitionType   string
	KnowledgeParts []ai.Part
	CaseParts      []ai.Part
	CustomPrompt   string
}

// AnalyzeCase extracts a case summary, applicable theses and strategic
// questions from the facts and attachments.
func (s *AnalysisService) AnalyzeCase(ctx context.Context, req AnalyzeCaseRequest) (*models.InitialAnalysis, error) {
	system := applyTenantPrompt(
		fmt.Sprintf(petitionAnalysisPromptFmt, req.Area, req.PetitionType),
		req.CustomPrompt,
	)

	parts := make([]ai.Part, 0, len(req.KnowledgeParts)+len(req.CaseParts)+2)
	parts = append(parts, ai.TextPart(system))
	parts = append(parts, ai.TextPart("\n\nFATOS DO CASO:\n"+req.Facts))
	parts = append(parts, req.KnowledgeParts...)
	parts = append(parts, req.CaseParts...)

	raw, err := s.client.GenerateJSON(ctx, parts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	var analysis models.InitialAnalysis
	if err := json.Unmarshal(raw, &analysis); err != nil {
		return nil, fmt.Errorf("%w: malformed analysis JSON: %v", ErrAnalysisFailed, err)
	}

	if analysis.Resumo == "" {
		return nil, fmt.Errorf("%w: analysis returned empty summary", ErrAnalysisFailed)
	}
	if err := validateQuestions(analysis.Perguntas); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	return &analysis, nil
}

// AnalyzeReviewRequest carries the inputs of the judge-review analysis stage.
// PetitionParts holds the uploaded petition file when the petition was not
// pasted as text; KnowledgeParts come last, after the case material.
type AnalyzeReviewRequest struct {
	Description     string
	PetitionContent string
	PetitionParts   []ai.Part
	CaseParts       []ai.Part
	KnowledgeParts  []ai.Part
	CustomPrompt    string
}

// AnalyzeForReview produces the impartial first-pass critique of a petition
func (s *AnalysisService) AnalyzeForReview(ctx context.Context, req AnalyzeReviewRequest) (*models.JudgeAnalysis, error) {
	petitionSection := ""
	if req.PetitionContent != "" {
		petitionSection = "\nPETIÇÃO (texto):\n" + req.PetitionContent
	} else if len(req.PetitionParts) > 0 {
		petitionSection = "\n[A petição foi enviada como arquivo acima]"
	}

	system := applyTenantPrompt(
		fmt.Sprintf(judgeAnalysisPromptFmt, req.Description, petitionSection),
		req.CustomPrompt,
	)

	parts := make([]ai.Part, 0, len(req.PetitionParts)+len(req.CaseParts)+len(req.KnowledgeParts)+1)
	parts = append(parts, ai.TextPart(system))
	parts = append(parts, req.PetitionParts...)
	parts = append(parts, req.CaseParts...)
	parts = append(parts, req.KnowledgeParts...)

	raw, err := s.client.GenerateJSON(ctx, parts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	var analysis models.JudgeAnalysis
	if err := json.Unmarshal(raw, &analysis); err != nil {
		return nil, fmt.Errorf("%w: malformed analysis JSON: %v", ErrAnalysisFailed, err)
	}

	if analysis.ResumoPeticao == "" {
		return nil, fmt.Errorf("%w: analysis returned empty petition summary", ErrAnalysisFailed)
	}
	if err := validateQuestions(analysis.Perguntas); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	return &analysis, nil
}

// validateQuestions rejects analyses whose questions the UI could not render
func validateQuestions(questions []models.StrategicQuestion) error {
	if len(questions) == 0 {
		return fmt.Errorf("analysis returned no strategic questions")
	}
	for _, q := range questions {
		if q.Pergunta == "" {
			return fmt.Errorf("question %d has empty text", q.ID)
		}
		switch q.Tipo {
		case models.QuestionTypeText:
		case models.QuestionTypeRadio, models.QuestionTypeCheckbox:
			if len(q.Opcoes) == 0 {
				return fmt.Errorf("question %d of type %s has no options", q.ID, q.Tipo)
			}
		default:
			return fmt.Errorf("question %d has unknown type %q", q.ID, q.Tipo)
		}
	}
	return nil
}
