package service

import (
	"lexdesk-backend/docx"
	"lexdesk-backend/models"
)

// DocxRenderer renders stage output as Word documents
type DocxRenderer struct{}

// RenderPetition renders petition text as a formatted document
func (DocxRenderer) RenderPetition(text, title, area, petitionType string, office *models.OfficeSettings) ([]byte, error) {
	return docx.RenderPetition(text, title, area, petitionType, office)
}

// RenderJudgeReport renders a judge report as a formatted document
func (DocxRenderer) RenderJudgeReport(report *models.JudgeReport, office *models.OfficeSettings) ([]byte, error) {
	return docx.RenderJudgeReport(report, office)
}
