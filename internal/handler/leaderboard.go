package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"guild-backend/internal/service"
)

// LeaderboardHandler serves the weekly leaderboard endpoints.
type LeaderboardHandler struct {
	leaderboard *service.LeaderboardService
}

// NewLeaderboardHandler creates a new LeaderboardHandler instance.
func NewLeaderboardHandler(leaderboard *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboard: leaderboard}
}

// Weekly handles GET /api/leaderboard/weekly.
func (h *LeaderboardHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	rows, err := h.leaderboard.Weekly(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// UserRank handles GET /api/leaderboard/user-rank/{userID}.
func (h *LeaderboardHandler) UserRank(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseID(w, chi.URLParam(r, "userID"))
	if !ok {
		return
	}
	row, err := h.leaderboard.UserRank(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

// History handles GET /api/leaderboard/history/{week}.
func (h *LeaderboardHandler) History(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.leaderboard.History(r.Context(), chi.URLParam(r, "week"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Reset handles POST /api/leaderboard/reset-weekly.
func (h *LeaderboardHandler) Reset(w http.ResponseWriter, r *http.Request) {
	result, err := h.leaderboard.Reset(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
