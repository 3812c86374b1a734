package domain

import (
	"context"

	"devquest/internal/core/activity"
	perr "devquest/internal/platform/errors"
)

var (
	// ErrMissingUserState is returned when a user has no progression document
	ErrMissingUserState = perr.New(perr.ErrorCodeNotFound, "user progress not found")

	// ErrTxConflict is returned once optimistic retries are exhausted
	ErrTxConflict = perr.New(perr.ErrorCodeConflict, "progress transaction conflict")

	// ErrStaleVersion signals a lost optimistic update and is always retried
	ErrStaleVersion = perr.New(perr.ErrorCodeConflict, "user progress version changed")
)

// ProcessorPort commits one scored activity
type ProcessorPort interface {
	Process(ctx context.Context, a activity.Activity, xp activity.XPResult) (Outcome, error)
}

// ServicePort is the read and enrollment surface
type ServicePort interface {
	Enroll(ctx context.Context, in EnrollInput) (EnrollOutput, error)
	Status(ctx context.Context, in StatusQuery) (StatusView, error)
	History(ctx context.Context, in HistoryQuery) (HistoryPage, error)
	VerifyLedger(ctx context.Context, userID string) (Ledger, error)
}
