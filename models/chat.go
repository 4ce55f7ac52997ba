package models

import (
	"time"

	"github.com/google/uuid"
)

// ChatSessionStatus represents the lifecycle state of an intake chat session
type ChatSessionStatus string

const (
	ChatSessionActive ChatSessionStatus = "active"
	ChatSessionClosed ChatSessionStatus = "closed"
)

// Chat message roles
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatSession represents one AI-assisted client intake conversation. Unlike
// petitions and reviews it is not a multi-stage pipeline: the session stays
// open and a structured report can be generated on demand at any point.
type ChatSession struct {
	ID         uuid.UUID         `json:"id"`
	TenantID   uuid.UUID         `json:"tenant_id"`
	UserID     uuid.UUID         `json:"user_id"`
	ClientName string            `json:"client_name"`
	Area       string            `json:"area"`
	Status     ChatSessionStatus `json:"status"`

	LastMessage   *string    `json:"last_message,omitempty"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	ReportPath    *string    `json:"report_path,omitempty"`
	ReportURL     *string    `json:"report_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChatMessage represents one message in a chat session
type ChatMessage struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	FilePath  *string   `json:"file_path,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
