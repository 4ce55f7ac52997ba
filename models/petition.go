package models

import (
	"time"

	"github.com/google/uuid"
)

// PetitionStatus represents the pipeline status of a petition
type PetitionStatus string

const (
	PetitionStatusDraft       PetitionStatus = "draft"
	PetitionStatusAnalyzing   PetitionStatus = "analyzing"
	PetitionStatusQuestions   PetitionStatus = "questions"
	PetitionStatusStructuring PetitionStatus = "structuring"
	PetitionStatusGenerating  PetitionStatus = "generating"
	PetitionStatusCompleted   PetitionStatus = "completed"
	PetitionStatusError       PetitionStatus = "error"
)

// petitionStageOrder fixes the forward sequence of the petition pipeline.
// "error" is terminal and reachable from any non-terminal status.
var petitionStageOrder = map[PetitionStatus]int{
	PetitionStatusDraft:       0,
	PetitionStatusAnalyzing:   1,
	PetitionStatusQuestions:   2,
	PetitionStatusStructuring: 3,
	PetitionStatusGenerating:  4,
	PetitionStatusCompleted:   5,
}

// CanAdvanceTo reports whether next is a legal transition from s. Completed
// is terminal. An errored record can resume at any stage when the user
// retries; it never regresses to draft.
func (s PetitionStatus) CanAdvanceTo(next PetitionStatus) bool {
	if s == PetitionStatusCompleted {
		return false
	}
	if next == PetitionStatusError {
		return true
	}
	if s == PetitionStatusError {
		return next != PetitionStatusDraft
	}
	cur, ok := petitionStageOrder[s]
	if !ok {
		return false
	}
	nxt, ok := petitionStageOrder[next]
	if !ok {
		return false
	}
	return nxt > cur
}

// Petition represents one petition-generation pipeline record. All access is
// scoped by TenantID; no cross-tenant reference ever exists.
type Petition struct {
	ID       uuid.UUID      `json:"id"`
	TenantID uuid.UUID      `json:"tenant_id"`
	UserID   uuid.UUID      `json:"user_id"`
	Title    string         `json:"title"`
	Area     string         `json:"area"`
	Type     string         `json:"type"`
	Status   PetitionStatus `json:"status"`

	// Inputs
	Facts           string   `json:"facts"`
	AttachmentPaths []string `json:"attachment_paths"`

	// Stage outputs
	InitialAnalysis  *InitialAnalysis   `json:"initial_analysis,omitempty"`
	StrategicAnswers StrategicAnswers   `json:"strategic_answers,omitempty"`
	Structure        *PetitionStructure `json:"structure,omitempty"`
	Content          *string            `json:"content,omitempty"`
	DocxPath         *string            `json:"docx_path,omitempty"`
	DocxURL          *string            `json:"docx_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
