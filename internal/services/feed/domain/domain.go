// Package domain holds feed DTOs and ports
package domain

import (
	"context"

	"devquest/internal/core/stack"
)

// FeedQuery asks for a user's stacked feed over their latest activities
type FeedQuery struct {
	UserID string `json:"user_id" validate:"required,min=1,max=200" example:"1234567"`
	// Limit caps the activities read before stacking, 0 means the module default
	Limit int `json:"limit,omitempty" validate:"omitempty,min=1,max=1000" example:"100"`
}

// FeedView is the stacked feed, newest first
type FeedView struct {
	UserID     string           `json:"user_id"`
	Activities int              `json:"activities"`
	Items      []stack.FeedItem `json:"items"`
}

// ServicePort is the feed read surface
type ServicePort interface {
	Feed(ctx context.Context, in FeedQuery) (FeedView, error)
}
