package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/swipepad/swipepad-gobackend/internal/models"
	"github.com/swipepad/swipepad-gobackend/internal/services"
)

type TransactionHandler struct {
	sessions *services.SessionManager
}

func NewTransactionHandler(sessions *services.SessionManager) *TransactionHandler {
	return &TransactionHandler{sessions: sessions}
}

type addTransactionRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	CampaignID    string          `json:"campaign_id"`
	CampaignTitle string          `json:"campaign_title"`
}

type flushResponse struct {
	Flushed bool          `json:"flushed"`
	Batch   *models.Batch `json:"batch,omitempty"`
}

// GetTransactions handles GET /api/transactions
func (h *TransactionHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.sessions.Snapshot(r.Context(), userID))
}

// AddTransaction handles POST /api/transactions
func (h *TransactionHandler) AddTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req addTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id, err := h.sessions.AddTransaction(r.Context(), userID, req.Amount, strings.TrimSpace(req.CampaignID), req.CampaignTitle)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// CancelTransaction handles DELETE /api/transactions/{transactionID}
func (h *TransactionHandler) CancelTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	if !h.sessions.CancelTransaction(r.Context(), userID, mux.Vars(r)["transactionID"]) {
		writeServiceError(w, services.ErrTransactionMissing)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Flush handles POST /api/transactions/flush
func (h *TransactionHandler) Flush(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	b, flushed := h.sessions.Flush(r.Context(), userID)
	resp := flushResponse{Flushed: flushed}
	if flushed {
		resp.Batch = &b
	}
	writeJSON(w, http.StatusOK, resp)
}
