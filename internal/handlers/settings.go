package handlers

import (
	"net/http"

	"github.com/swipepad/swipepad-gobackend/internal/services"
)

type SettingsHandler struct {
	settings *services.SettingsService
	sessions *services.SessionManager
}

func NewSettingsHandler(settings *services.SettingsService, sessions *services.SessionManager) *SettingsHandler {
	return &SettingsHandler{settings: settings, sessions: sessions}
}

// GetSettings handles GET /api/me/settings
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.settings.Load(r.Context(), userID))
}

// UpdateSettings handles PUT /api/me/settings. Fields missing from the body
// keep their current values.
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	settings := h.settings.Load(r.Context(), userID)
	if err := decodeJSON(r, &settings); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	saved, err := h.settings.Save(r.Context(), userID, settings)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.sessions.ApplySettings(userID, saved)
	writeJSON(w, http.StatusOK, saved)
}
