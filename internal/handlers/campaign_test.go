package handlers

import (
	"net/http"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/swipepad/swipepad-gobackend/internal/db"
	"github.com/swipepad/swipepad-gobackend/internal/models"
	"github.com/swipepad/swipepad-gobackend/internal/services"
)

func newCatalogServer(mt *mtest.T) *testServer {
	campaigns := services.NewCampaignService(mt.DB)
	stats := services.NewStatsService(mt.DB)
	donations := services.NewDonationService(mt.DB, campaigns, stats)
	router := NewRouter(Handlers{
		Campaigns: NewCampaignHandler(campaigns),
		Stats:     NewStatsHandler(stats, donations),
	}, testSecret)
	return &testServer{router: router}
}

func TestCampaignAndLeaderboardRoutes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().
		ClientType(mtest.Mock).
		ClientOptions(options.Client().SetRegistry(db.NewRegistry())))

	mt.Run("list is public", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+"."+db.CampaignsCollection, mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "title", Value: "Clean Water"},
				{Key: "active", Value: true},
				{Key: "created_at", Value: time.Now()},
			}))

		rr := newCatalogServer(mt).do(mt.T, http.MethodGet, "/api/campaigns?category=water&limit=5", "", nil)
		if rr.Code != http.StatusOK {
			mt.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
		}
		var campaigns []models.Campaign
		decodeBody(mt.T, rr, &campaigns)
		if len(campaigns) != 1 || campaigns[0].Title != "Clean Water" {
			mt.Fatalf("unexpected campaigns: %+v", campaigns)
		}
	})

	mt.Run("bad limit", func(mt *mtest.T) {
		rr := newCatalogServer(mt).do(mt.T, http.MethodGet, "/api/campaigns?limit=abc", "", nil)
		if rr.Code != http.StatusBadRequest {
			mt.Fatalf("status = %d, want 400", rr.Code)
		}
	})

	mt.Run("get invalid id", func(mt *mtest.T) {
		rr := newCatalogServer(mt).do(mt.T, http.MethodGet, "/api/campaigns/xyz", "", nil)
		if rr.Code != http.StatusBadRequest {
			mt.Fatalf("status = %d, want 400", rr.Code)
		}
	})

	mt.Run("get not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+"."+db.CampaignsCollection, mtest.FirstBatch))

		rr := newCatalogServer(mt).do(mt.T, http.MethodGet, "/api/campaigns/"+primitive.NewObjectID().Hex(), "", nil)
		if rr.Code != http.StatusNotFound {
			mt.Fatalf("status = %d, want 404", rr.Code)
		}
	})

	mt.Run("create requires auth", func(mt *mtest.T) {
		rr := newCatalogServer(mt).do(mt.T, http.MethodPost, "/api/campaigns", "", map[string]string{"title": "x"})
		if rr.Code != http.StatusUnauthorized {
			mt.Fatalf("status = %d, want 401", rr.Code)
		}
	})

	mt.Run("create duplicate", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+"."+db.CampaignsCollection, mtest.FirstBatch,
			bson.D{{Key: "n", Value: int32(1)}}))

		rr := newCatalogServer(mt).do(mt.T, http.MethodPost, "/api/campaigns", bearer(mt.T, "admin"),
			map[string]string{"title": "Clean Water"})
		if rr.Code != http.StatusConflict {
			mt.Fatalf("status = %d, want 409", rr.Code)
		}
	})

	mt.Run("leaderboard is public", func(mt *mtest.T) {
		ts, _ := primitive.ParseDecimal128("2.50")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+"."+db.StatsCollection, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "u1"}, {Key: "total_donated", Value: ts}, {Key: "donation_count", Value: int64(12)}}))

		rr := newCatalogServer(mt).do(mt.T, http.MethodGet, "/api/leaderboard", "", nil)
		if rr.Code != http.StatusOK {
			mt.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
		}
		var entries []models.LeaderboardEntry
		decodeBody(mt.T, rr, &entries)
		if len(entries) != 1 || entries[0].Rank != 1 || entries[0].TotalDonated.String() != "2.5" {
			mt.Fatalf("unexpected entries: %+v", entries)
		}
	})

	mt.Run("my stats need auth", func(mt *mtest.T) {
		rr := newCatalogServer(mt).do(mt.T, http.MethodGet, "/api/me/stats", "", nil)
		if rr.Code != http.StatusUnauthorized {
			mt.Fatalf("status = %d, want 401", rr.Code)
		}
	})
}
