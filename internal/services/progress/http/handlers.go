// Package http provides http transport for progress
package http

import (
	stdhttp "net/http"

	"devquest/internal/modkit/httpkit"
	"devquest/internal/services/progress/domain"
)

// Register mounts the router
func Register(r httpkit.Router, s domain.ServicePort) {
	h := &handlers{svc: s}
	httpkit.PostJSON[domain.StatusQuery](r, "/status", h.status)
	httpkit.PostJSON[domain.EnrollInput](r, "/enroll", h.enroll)
	httpkit.PostJSON[domain.HistoryQuery](r, "/history", h.history)
}

type handlers struct{ svc domain.ServicePort }

// swagger:route POST /progress/status Progress status
// @Summary Current level progress, counters and achievements
// @Tags progress
// @Accept json
// @Produce json
// @Param payload body domain.StatusQuery true "Status"
// @Success 200 {object} domain.StatusView "ok"
// @Failure 404 {object} httpkit.Envelope "not enrolled"
// @Router /progress/status [post]
func (h *handlers) status(r *stdhttp.Request, in domain.StatusQuery) (any, error) {
	return h.svc.Status(r.Context(), in)
}

// swagger:route POST /progress/enroll Progress enroll
// @Summary Create the progression document for a user
// @Tags progress
// @Accept json
// @Produce json
// @Param payload body domain.EnrollInput true "Enroll"
// @Success 200 {object} domain.EnrollOutput "ok"
// @Router /progress/enroll [post]
func (h *handlers) enroll(r *stdhttp.Request, in domain.EnrollInput) (any, error) {
	out, err := h.svc.Enroll(r.Context(), in)
	if err != nil {
		return nil, err
	}
	if out.Created {
		return httpkit.Created(out), nil
	}
	return out, nil
}

// swagger:route POST /progress/history Progress history
// @Summary XP ledger, oldest first, optionally verified
// @Tags progress
// @Accept json
// @Produce json
// @Param payload body domain.HistoryQuery true "History"
// @Success 200 {object} domain.HistoryPage "ok"
// @Failure 404 {object} httpkit.Envelope "not enrolled"
// @Router /progress/history [post]
func (h *handlers) history(r *stdhttp.Request, in domain.HistoryQuery) (any, error) {
	return h.svc.History(r.Context(), in)
}
