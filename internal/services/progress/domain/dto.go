package domain

import "devquest/internal/core/level"

// StatusQuery selects a user
type StatusQuery struct {
	UserID string `json:"user_id" validate:"required,min=1,max=200" example:"1234567"`
}

// EnrollInput creates a progression document for a user
type EnrollInput struct {
	UserID string `json:"user_id" validate:"required,min=1,max=200" example:"1234567"`
	Login  string `json:"login"   validate:"omitempty,max=100,printascii" example:"octocat"`
}

// EnrollOutput returns the stored document and whether this call created it
type EnrollOutput struct {
	Created bool      `json:"created"`
	State   UserState `json:"state"`
}

// HistoryQuery pages the newest ledger rows for a user
type HistoryQuery struct {
	UserID string `json:"user_id" validate:"required,min=1,max=200" example:"1234567"`
	Limit  int    `json:"limit"   validate:"omitempty,min=1,max=1000" example:"50"`
	Verify bool   `json:"verify"  example:"true"`
}

// HistoryPage lists ledger rows oldest to newest
type HistoryPage struct {
	UserID  string         `json:"user_id"`
	Entries []HistoryEntry `json:"entries"`
	Ledger  *Ledger        `json:"ledger,omitempty"`
}

// StatusView is the read model behind the progress endpoint
type StatusView struct {
	UserID       string           `json:"user_id"`
	Login        string           `json:"login,omitempty"`
	Progress     level.Progress   `json:"progress"`
	Counters     map[string]int64 `json:"counters"`
	Achievements []Achievement    `json:"achievements"`
	UpdatedAt    string           `json:"updated_at,omitempty"`
}
