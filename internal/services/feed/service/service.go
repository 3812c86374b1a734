// Package service builds the stacked activity feed
package service

import (
	"context"

	"devquest/internal/core/stack"
	"devquest/internal/modkit/repokit"
	perr "devquest/internal/platform/errors"
	"devquest/internal/platform/logger"
	"devquest/internal/services/feed/domain"
	"devquest/internal/services/feed/repo"
)

// Service is the public surface of the feed
type Service interface {
	domain.ServicePort
}

// Svc implements Service
type Svc struct {
	db           repokit.Queryer
	binder       repokit.Binder[repo.Repo]
	defaultLimit int
}

// New constructs a feed service, limit is used when a query leaves it unset
func New(db repokit.Queryer, binder repokit.Binder[repo.Repo], limit int) *Svc {
	if db == nil {
		panic("feed.New: nil db")
	}
	if binder == nil {
		panic("feed.New: nil binder")
	}
	if limit <= 0 {
		limit = 100
	}
	return &Svc{db: db, binder: binder, defaultLimit: limit}
}

// Feed reads the latest activities and stacks pull request timelines
func (s *Svc) Feed(ctx context.Context, in domain.FeedQuery) (domain.FeedView, error) {
	if in.UserID == "" {
		return domain.FeedView{}, perr.InvalidArgf("feed: user id is required")
	}
	limit := in.Limit
	if limit <= 0 {
		limit = s.defaultLimit
	}

	acts, err := s.binder.Bind(s.db).Recent(ctx, in.UserID, limit)
	if err != nil {
		return domain.FeedView{}, err
	}
	items := stack.Build(acts)
	if items == nil {
		items = []stack.FeedItem{}
	}

	logger.C(ctx).Debug().
		Str("user_id", in.UserID).
		Int("activities", len(acts)).
		Int("items", len(items)).
		Msg("feed built")

	return domain.FeedView{UserID: in.UserID, Activities: len(acts), Items: items}, nil
}
