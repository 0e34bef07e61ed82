package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

type Handlers struct {
	Campaigns    *CampaignHandler
	Swipes       *SwipeHandler
	Transactions *TransactionHandler
	Events       *EventHandler
	Stats        *StatsHandler
	Settings     *SettingsHandler
}

// NewRouter registers every route. Groups whose handler is nil are skipped.
func NewRouter(h Handlers, jwtSecret []byte) *mux.Router {
	router := mux.NewRouter()
	router.Use(loggingMiddleware)

	auth := AuthMiddleware(jwtSecret)
	private := func(f http.HandlerFunc) http.Handler { return auth(f) }

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET", "HEAD")

	if c := h.Campaigns; c != nil {
		api.HandleFunc("/campaigns", c.GetCampaigns).Methods("GET")
		api.Handle("/campaigns", private(c.CreateCampaign)).Methods("POST")
		api.HandleFunc("/campaigns/{campaignID}", c.GetCampaign).Methods("GET")
	}

	if s := h.Swipes; s != nil {
		api.Handle("/swipes", private(s.Release)).Methods("POST")
		api.Handle("/swipes/drag", private(s.Drag)).Methods("POST")
		api.Handle("/swipes/tap", private(s.Tap)).Methods("POST")
	}

	if t := h.Transactions; t != nil {
		api.Handle("/transactions", private(t.GetTransactions)).Methods("GET")
		api.Handle("/transactions", private(t.AddTransaction)).Methods("POST")
		api.Handle("/transactions/flush", private(t.Flush)).Methods("POST")
		api.Handle("/transactions/{transactionID}", private(t.CancelTransaction)).Methods("DELETE")
	}

	if e := h.Events; e != nil {
		api.Handle("/events", private(e.GetEvents)).Methods("GET")
	}

	if s := h.Stats; s != nil {
		api.Handle("/me/stats", private(s.GetMyStats)).Methods("GET")
		api.Handle("/me/donations", private(s.GetMyDonations)).Methods("GET")
		api.HandleFunc("/leaderboard", s.GetLeaderboard).Methods("GET")
	}

	if s := h.Settings; s != nil {
		api.Handle("/me/settings", private(s.GetSettings)).Methods("GET")
		api.Handle("/me/settings", private(s.UpdateSettings)).Methods("PUT")
	}

	return router
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}
