package api

import (
	"context"
	"net/http"
	"strconv"
)

// LeaderboardDependencies defines the interface for leaderboard operations
type LeaderboardDependencies interface {
	TopN(ctx context.Context, n int) ([]Entry, error)
}

// LeaderboardHandler handles leaderboard requests
type LeaderboardHandler struct {
	deps     LeaderboardDependencies
	maxLimit int
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(deps LeaderboardDependencies, maxLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// parseLimit reads ?limit=N, defaulting to def when absent.
func parseLimit(r *http.Request, def, maxLimit int) (int, string, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, "", true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, "bad_request", false
	}
	if n > maxLimit {
		return 0, "limit_exceeded", false
	}
	return n, "", true
}

// HandleGetLeaderboard handles GET /leaderboard?limit=N requests
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	n, code, ok := parseLimit(r, min(10, h.maxLimit), h.maxLimit)
	if !ok {
		writeError(w, http.StatusBadRequest, code, NewKind(op, ErrBadRequest))
		return
	}
	entries, err := h.deps.TopN(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
