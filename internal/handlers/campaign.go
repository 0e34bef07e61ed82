package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/swipepad/swipepad-gobackend/internal/models"
	"github.com/swipepad/swipepad-gobackend/internal/services"
)

type CampaignHandler struct {
	service *services.CampaignService
}

func NewCampaignHandler(service *services.CampaignService) *CampaignHandler {
	return &CampaignHandler{service: service}
}

// GetCampaigns handles GET /api/campaigns
func (h *CampaignHandler) GetCampaigns(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt64(r, "limit")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid limit")
		return
	}

	campaigns, err := h.service.List(r.Context(), r.URL.Query().Get("category"), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaigns)
}

// GetCampaign handles GET /api/campaigns/{campaignID}
func (h *CampaignHandler) GetCampaign(w http.ResponseWriter, r *http.Request) {
	campaign, err := h.service.Get(r.Context(), mux.Vars(r)["campaignID"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

// CreateCampaign handles POST /api/campaigns
func (h *CampaignHandler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	var campaign models.Campaign
	if err := decodeJSON(r, &campaign); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.service.Create(r.Context(), &campaign)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}
