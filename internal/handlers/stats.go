package handlers

import (
	"net/http"

	"github.com/swipepad/swipepad-gobackend/internal/services"
)

type StatsHandler struct {
	stats     *services.StatsService
	donations *services.DonationService
}

func NewStatsHandler(stats *services.StatsService, donations *services.DonationService) *StatsHandler {
	return &StatsHandler{stats: stats, donations: donations}
}

// GetMyStats handles GET /api/me/stats
func (h *StatsHandler) GetMyStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	stats, err := h.stats.Get(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// GetMyDonations handles GET /api/me/donations
func (h *StatsHandler) GetMyDonations(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	limit, ok := queryInt64(r, "limit")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid limit")
		return
	}

	donations, err := h.donations.ListByUser(r.Context(), userID, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, donations)
}

// GetLeaderboard handles GET /api/leaderboard
func (h *StatsHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt64(r, "limit")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid limit")
		return
	}

	entries, err := h.stats.Leaderboard(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
