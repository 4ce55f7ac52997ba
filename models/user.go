package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles
const (
	RoleAdmin     = "admin"
	RoleLawyer    = "lawyer"
	RoleAssistant = "assistant"
)

// User represents a user entity belonging to exactly one tenant
type User struct {
	ID           uuid.UUID `json:"id"`
	TenantID     uuid.UUID `json:"tenant_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize password hash
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
