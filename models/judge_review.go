package models

import (
	"time"

	"github.com/google/uuid"
)

// ReviewStatus represents the pipeline status of a judge review
type ReviewStatus string

const (
	ReviewStatusAnalyzing  ReviewStatus = "analyzing"
	ReviewStatusQuestions  ReviewStatus = "questions"
	ReviewStatusGenerating ReviewStatus = "generating"
	ReviewStatusCompleted  ReviewStatus = "completed"
	ReviewStatusError      ReviewStatus = "error"
)

// JudgeReview represents one judge-review pipeline record: a petition plus a
// case description submitted for an impartial AI critique. The review pipeline
// has no structuring stage; it goes from questions straight to report
// generation.
type JudgeReview struct {
	ID       uuid.UUID    `json:"id"`
	TenantID uuid.UUID    `json:"tenant_id"`
	UserID   uuid.UUID    `json:"user_id"`
	Status   ReviewStatus `json:"status"`

	Description      string   `json:"description"`
	PetitionContent  *string  `json:"petition_content,omitempty"`
	PetitionFilePath *string  `json:"petition_file_path,omitempty"`
	AttachmentPaths  []string `json:"attachment_paths"`

	InitialAnalysis  *JudgeAnalysis   `json:"initial_analysis,omitempty"`
	StrategicAnswers StrategicAnswers `json:"strategic_answers,omitempty"`
	Report           *JudgeReport     `json:"report,omitempty"`
	DocxPath         *string          `json:"docx_path,omitempty"`
	DocxURL          *string          `json:"docx_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
