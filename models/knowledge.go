package models

import (
	"time"

	"github.com/google/uuid"
)

// AreaGeral is the sentinel area tag for knowledge documents that apply to
// every legal area.
const AreaGeral = "geral"

// Knowledge document categories
const (
	KnowledgeCategoryModelos        = "modelos"
	KnowledgeCategoryJurisprudencia = "jurisprudencia"
	KnowledgeCategoryHonorarios     = "honorarios"
	KnowledgeCategoryProcedimentos  = "procedimentos"
	KnowledgeCategoryOutro          = "outro"
)

// KnowledgeDocument is a tenant-curated reference document injected into AI
// prompts for house-style and precedent grounding. Created by admin upload,
// deleted by admin, immutable otherwise.
type KnowledgeDocument struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Areas       []string  `json:"areas"`
	StoragePath string    `json:"storage_path"`
	Size        int64     `json:"size"`
	MimeType    string    `json:"mime_type"`
	CreatedAt   time.Time `json:"created_at"`
}
