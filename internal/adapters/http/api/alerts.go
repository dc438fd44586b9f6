package api

import (
	"context"
	"net/http"
)

// AlertsDependencies reads the alert log.
type AlertsDependencies interface {
	Alerts(ctx context.Context, limit int) ([]Alert, error)
}

// AlertsHandler handles alert log requests.
type AlertsHandler struct {
	deps     AlertsDependencies
	maxLimit int
}

// NewAlertsHandler creates a new alerts handler.
func NewAlertsHandler(deps AlertsDependencies, maxLimit int) *AlertsHandler {
	return &AlertsHandler{deps: deps, maxLimit: maxLimit}
}

// HandleGetAlerts handles GET /alerts?limit=N requests, newest first.
func (h *AlertsHandler) HandleGetAlerts(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_alerts"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	n, code, ok := parseLimit(r, min(50, h.maxLimit), h.maxLimit)
	if !ok {
		writeError(w, http.StatusBadRequest, code, NewKind(op, ErrBadRequest))
		return
	}
	alerts, err := h.deps.Alerts(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	if alerts == nil {
		alerts = []Alert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}
