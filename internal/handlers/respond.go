package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/swipepad/swipepad-gobackend/internal/batch"
	"github.com/swipepad/swipepad-gobackend/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps service errors to status codes. Unexpected errors
// are logged and reported as 500 without details.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCampaignNotFound),
		errors.Is(err, services.ErrTransactionMissing):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrDuplicateCampaign):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidCampaignID),
		errors.Is(err, services.ErrInvalidCampaign),
		errors.Is(err, services.ErrInvalidSettings),
		errors.Is(err, batch.ErrInvalidAmount),
		errors.Is(err, batch.ErrEmptyCampaign):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("Request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// queryInt64 reads an optional non-negative integer query parameter.
func queryInt64(r *http.Request, key string) (int64, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
