package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"lexdesk-backend/ai"
	"lexdesk-backend/models"
)

// StructureService runs the petition structuring stage: summary, theses and
// answered questions become a full petition outline.
type StructureService struct {
	client MultimodalClient
}

// StructureServiceOption is a functional option for StructureService
type StructureServiceOption func(*StructureService)

// WithStructureClient sets the multimodal client
func WithStructureClient(c MultimodalClient) StructureServiceOption {
	return func(s *StructureService) {
		s.client = c
	}
}

// NewStructureService creates a new structure service
func NewStructureService(opts ...StructureServiceOption) *StructureService {
	s := &StructureService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BuildStructureRequest carries the inputs of the structuring stage
type BuildStructureRequest struct {
	Facts          string
	Area           string
	PetitionType   string
	Analysis       *models.InitialAnalysis
	Answers        models.StrategicAnswers
	KnowledgeParts []ai.Part
	CustomPrompt   string
}

// BuildStructure generates the petition outline from the analysis and the
// lawyer's strategic answers.
func (s *StructureService) BuildStructure(ctx context.Context, req BuildStructureRequest) (*models.PetitionStructure, error) {
	custom := ""
	if req.CustomPrompt != "" {
		custom = "INSTRUÇÕES ADICIONAIS DO ESCRITÓRIO:\n" + req.CustomPrompt + "\n\n"
	}

	prompt := fmt.Sprintf(structurePromptFmt,
		req.PetitionType,
		req.Area,
		custom,
		req.Analysis.Resumo,
		strings.Join(req.Analysis.Teses, "; "),
		req.Facts,
		formatAnswers(req.Answers),
	)

	parts := make([]ai.Part, 0, len(req.KnowledgeParts)+1)
	parts = append(parts, ai.TextPart(prompt))
	parts = append(parts, req.KnowledgeParts...)

	raw, err := s.client.GenerateJSON(ctx, parts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStructuringFailed, err)
	}

	var structure models.PetitionStructure
	if err := json.Unmarshal(raw, &structure); err != nil {
		return nil, fmt.Errorf("%w: malformed structure JSON: %v", ErrStructuringFailed, err)
	}

	if len(structure.Topicos) == 0 {
		return nil, fmt.Errorf("%w: structure has no topics", ErrStructuringFailed)
	}
	if len(structure.Partes) == 0 {
		return nil, fmt.Errorf("%w: structure has no parties", ErrStructuringFailed)
	}

	return &structure, nil
}
