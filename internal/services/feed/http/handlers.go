// Package http provides http transport for the feed
package http

import (
	stdhttp "net/http"

	"devquest/internal/modkit/httpkit"
	"devquest/internal/services/feed/domain"
)

// Register mounts the router
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}
	httpkit.PostJSON[domain.FeedQuery](r, "/", h.feed)
}

type handlers struct{ svc domain.ServicePort }

// swagger:route POST /feed Feed feed
// @Summary Stacked activity feed, newest first
// @Tags feed
// @Accept json
// @Produce json
// @Param payload body domain.FeedQuery true "Feed"
// @Success 200 {object} domain.FeedView "ok"
// @Failure 400 {object} httpkit.Envelope "invalid query"
// @Router /feed [post]
func (h *handlers) feed(r *stdhttp.Request, in domain.FeedQuery) (any, error) {
	return h.svc.Feed(r.Context(), in)
}
