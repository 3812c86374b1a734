// Package http provides http transport for intake
package http

import (
	stdhttp "net/http"

	"devquest/internal/modkit/httpkit"
	"devquest/internal/platform/logger"
	pnet "devquest/internal/platform/net"
	"devquest/internal/services/intake/domain"
)

// Register mounts the router
func Register(r httpkit.Router, s domain.IngestPort) {
	h := &handlers{svc: s}
	httpkit.PostJSON[domain.RawEventInput](r, "/", h.ingest)
}

type handlers struct{ svc domain.IngestPort }

// swagger:route POST /events Intake ingest
// @Summary Ingest one provider event
// @Description Duplicates are a normal 200 with duplicate=true. Unsupported events are rejected with 422.
// @Tags intake
// @Accept json
// @Produce json
// @Param payload body domain.RawEventInput true "Raw event"
// @Success 200 {object} domain.IngestResult "ok"
// @Failure 400 {object} httpkit.Envelope "malformed request"
// @Failure 404 {object} httpkit.Envelope "user not enrolled"
// @Failure 409 {object} httpkit.Envelope "transaction conflict, redeliver"
// @Failure 422 {object} httpkit.Envelope "unclassifiable event"
// @Router /events [post]
func (h *handlers) ingest(r *stdhttp.Request, in domain.RawEventInput) (any, error) {
	reqID := pnet.RequestID(r.Context())
	ctx := pnet.WithRequest(r.Context(), "", in.UserID)
	ctx = logger.WithEvent(logger.WithRequest(ctx, reqID, in.UserID), in.ExternalID)
	return h.svc.Ingest(ctx, in)
}
