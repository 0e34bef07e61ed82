package handlers

import (
	"net/http"
	"strconv"

	"github.com/swipepad/swipepad-gobackend/internal/feed"
	"github.com/swipepad/swipepad-gobackend/internal/services"
)

type EventHandler struct {
	sessions *services.SessionManager
}

func NewEventHandler(sessions *services.SessionManager) *EventHandler {
	return &EventHandler{sessions: sessions}
}

type eventsResponse struct {
	Events []feed.Event `json:"events"`
	Last   uint64       `json:"last"`
}

// GetEvents handles GET /api/events?since=N
func (h *EventHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var since uint64
	if raw := r.URL.Query().Get("since"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid since")
			return
		}
		since = n
	}

	s := h.sessions.Session(r.Context(), userID)
	events := s.Feed.Since(since)
	writeJSON(w, http.StatusOK, eventsResponse{Events: events, Last: s.Feed.Last()})
}
