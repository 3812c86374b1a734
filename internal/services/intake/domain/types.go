// Package domain holds intake DTOs, ports and sentinels
package domain

import (
	"context"
	"encoding/json"
	"time"

	"devquest/internal/core/activity"
	"devquest/internal/core/classify"
	pdom "devquest/internal/services/progress/domain"
)

// ErrUnclassifiable is returned when no handler accepts the event
var ErrUnclassifiable = classify.ErrUnclassifiable

// Stages that can short circuit a duplicate
const (
	StageGate      = "gate"
	StageProcessor = "processor"
)

// RawEventInput is the webhook receiver's hand off
type RawEventInput struct {
	ExternalID        string          `json:"external_id"         validate:"required,min=1,max=200" example:"6a2d9f6e-8c55-11ef-9b1c-2a9d3b1c0a11"`
	ProviderEventKind string          `json:"provider_event_kind" validate:"required,min=1,max=64,ident" example:"push"`
	Action            string          `json:"action,omitempty"    validate:"omitempty,max=64,ident" example:"opened"`
	UserID            string          `json:"user_id"             validate:"required,min=1,max=200" example:"1234567"`
	Payload           json.RawMessage `json:"payload"             validate:"required" swaggertype:"object"`
	ReceivedAt        *time.Time      `json:"received_at,omitempty"`
}

// Event converts the input to the classifier's RawEvent
func (in RawEventInput) Event(now time.Time) activity.RawEvent {
	at := now
	if in.ReceivedAt != nil && !in.ReceivedAt.IsZero() {
		at = in.ReceivedAt.UTC()
	}
	return activity.RawEvent{
		ExternalID:        in.ExternalID,
		ProviderEventKind: in.ProviderEventKind,
		Action:            in.Action,
		Payload:           in.Payload,
		ReceivedAt:        at,
	}
}

// IngestResult reports what happened to one event
type IngestResult struct {
	EventID      string             `json:"event_id"`
	Duplicate    bool               `json:"duplicate"`
	Stage        string             `json:"stage,omitempty"`
	ActivityType activity.Type      `json:"activity_type,omitempty"`
	Description  string             `json:"description,omitempty"`
	Scored       bool               `json:"scored"`
	XP           activity.XPResult  `json:"xp"`
	Level        int                `json:"level,omitempty"`
	TotalXP      int64              `json:"total_xp,omitempty"`
	LevelUp      bool               `json:"level_up,omitempty"`
	Unlocked     []pdom.Achievement `json:"unlocked,omitempty"`
	Activity     *activity.Activity `json:"activity,omitempty"`
}

// IngestPort runs one event through the pipeline
type IngestPort interface {
	Ingest(ctx context.Context, in RawEventInput) (IngestResult, error)
}

// SeenCache is the advisory duplicate marker store
type SeenCache interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Remember(ctx context.Context, eventID string) error
}
