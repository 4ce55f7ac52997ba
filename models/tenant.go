package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Tenant represents one law office: the hard isolation boundary for all data
// and configuration.
type Tenant struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Plan      string    `json:"plan"` // "free", "pro", "enterprise"
	CreatedAt time.Time `json:"created_at"`
}

// OfficeSettings is the tenant office profile rendered into document headers.
type OfficeSettings struct {
	Name      string `json:"name,omitempty"`
	OABNumber string `json:"oab_number,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	Address   string `json:"address,omitempty"`
}

// Value implements driver.Valuer for JSONB
func (o OfficeSettings) Value() (driver.Value, error) {
	return json.Marshal(o)
}

// Scan implements sql.Scanner for JSONB
func (o *OfficeSettings) Scan(value interface{}) error {
	return scanJSON(value, o)
}

// AIPrompts holds per-tenant prompt overrides. Each override is appended to
// the corresponding base system prompt, never replacing it.
type AIPrompts struct {
	PetitionPrompt string `json:"petition_prompt,omitempty"`
	JudgePrompt    string `json:"judge_prompt,omitempty"`
	ChatPrompt     string `json:"chat_prompt,omitempty"`
}

// Value implements driver.Valuer for JSONB
func (p AIPrompts) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner for JSONB
func (p *AIPrompts) Scan(value interface{}) error {
	return scanJSON(value, p)
}

// TenantSettings bundles the configurable pieces of a tenant
type TenantSettings struct {
	Prompts AIPrompts      `json:"prompts"`
	Office  OfficeSettings `json:"office"`
}
