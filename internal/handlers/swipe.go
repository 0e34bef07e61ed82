package handlers

import (
	"net/http"
	"strings"

	"github.com/swipepad/swipepad-gobackend/internal/services"
)

type SwipeHandler struct {
	sessions *services.SessionManager
}

func NewSwipeHandler(sessions *services.SessionManager) *SwipeHandler {
	return &SwipeHandler{sessions: sessions}
}

type dragRequest struct {
	X float64 `json:"x"`
}

type tapRequest struct {
	CampaignID    string `json:"campaign_id"`
	CampaignTitle string `json:"campaign_title"`
}

// Release handles POST /api/swipes
func (h *SwipeHandler) Release(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req services.SwipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.CampaignID = strings.TrimSpace(req.CampaignID)
	if req.CampaignID == "" {
		writeError(w, http.StatusBadRequest, "campaign_id is required")
		return
	}

	result, err := h.sessions.Swipe(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Drag handles POST /api/swipes/drag
func (h *SwipeHandler) Drag(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req dragRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, h.sessions.Drag(r.Context(), userID, req.X))
}

// Tap handles POST /api/swipes/tap
func (h *SwipeHandler) Tap(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req tapRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.CampaignID = strings.TrimSpace(req.CampaignID)
	if req.CampaignID == "" {
		writeError(w, http.StatusBadRequest, "campaign_id is required")
		return
	}

	result := h.sessions.Tap(r.Context(), userID, req.CampaignID, req.CampaignTitle)
	writeJSON(w, http.StatusOK, map[string]string{"result": string(result)})
}
