package api

import (
	"context"
	"net/http"
)

// DashboardDependencies exposes the dashboard data blocks.
type DashboardDependencies interface {
	CurrentDashboard(ctx context.Context) Dashboard
}

// DashboardHandler handles dashboard requests.
type DashboardHandler struct {
	deps DashboardDependencies
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(deps DashboardDependencies) *DashboardHandler {
	return &DashboardHandler{deps: deps}
}

// HandleGetDashboard handles GET /dashboard requests: top totals, category
// counts and team averages of the served tables, as JSON.
func (h *DashboardHandler) HandleGetDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.CurrentDashboard(r.Context()))
}
