package api

import (
	"context"
	"net/http"
)

// TeamsDependencies exposes the last team ranking.
type TeamsDependencies interface {
	Teams(ctx context.Context) []TeamStanding
}

// TeamsHandler handles team ranking requests.
type TeamsHandler struct {
	deps TeamsDependencies
}

// NewTeamsHandler creates a new teams handler.
func NewTeamsHandler(deps TeamsDependencies) *TeamsHandler {
	return &TeamsHandler{deps: deps}
}

// HandleGetTeams handles GET /teams requests.
func (h *TeamsHandler) HandleGetTeams(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	standings := h.deps.Teams(r.Context())
	if standings == nil {
		standings = []TeamStanding{}
	}
	writeJSON(w, http.StatusOK, standings)
}
