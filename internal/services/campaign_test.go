package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/swipepad/swipepad-gobackend/internal/db"
	"github.com/swipepad/swipepad-gobackend/internal/models"
)

func campaignDoc(id primitive.ObjectID, title string) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "title", Value: title},
		{Key: "category", Value: "water"},
		{Key: "goal", Value: dec128("100")},
		{Key: "raised", Value: dec128("1.50")},
		{Key: "donor_count", Value: int64(3)},
		{Key: "active", Value: true},
		{Key: "created_at", Value: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func TestCampaignService(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("list decodes campaigns", func(mt *mtest.T) {
		a, b := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, db.CampaignsCollection), mtest.FirstBatch,
			campaignDoc(a, "Clean Water"), campaignDoc(b, "School Meals")))

		svc := NewCampaignService(mt.DB)
		got, err := svc.List(context.Background(), "water", 0)
		if err != nil {
			mt.Fatalf("List: %v", err)
		}
		if len(got) != 2 || got[0].ID != a || got[1].Title != "School Meals" {
			mt.Fatalf("unexpected campaigns: %+v", got)
		}
		if !got[0].Raised.Equal(decimal.RequireFromString("1.5")) {
			mt.Errorf("raised = %s, want 1.5", got[0].Raised)
		}

		filter := mt.GetStartedEvent().Command.Lookup("filter").Document()
		if cat := filter.Lookup("category").StringValue(); cat != "water" {
			mt.Errorf("category filter = %q", cat)
		}
		if !filter.Lookup("active").Boolean() {
			mt.Error("expected active filter")
		}
	})

	mt.Run("list empty", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, db.CampaignsCollection), mtest.FirstBatch))

		got, err := NewCampaignService(mt.DB).List(context.Background(), "", 500)
		if err != nil {
			mt.Fatalf("List: %v", err)
		}
		if got == nil || len(got) != 0 {
			mt.Fatalf("expected empty non-nil slice, got %#v", got)
		}
		limit := mt.GetStartedEvent().Command.Lookup("limit").AsInt64()
		if limit != maxCampaignLimit {
			mt.Errorf("limit = %d, want %d", limit, maxCampaignLimit)
		}
	})

	mt.Run("get", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, db.CampaignsCollection), mtest.FirstBatch,
			campaignDoc(id, "Clean Water")))

		got, err := NewCampaignService(mt.DB).Get(context.Background(), id.Hex())
		if err != nil {
			mt.Fatalf("Get: %v", err)
		}
		if got.Title != "Clean Water" || got.DonorCount != 3 {
			mt.Fatalf("unexpected campaign: %+v", got)
		}
	})

	mt.Run("get not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, db.CampaignsCollection), mtest.FirstBatch))

		_, err := NewCampaignService(mt.DB).Get(context.Background(), primitive.NewObjectID().Hex())
		if !errors.Is(err, ErrCampaignNotFound) {
			mt.Fatalf("err = %v, want ErrCampaignNotFound", err)
		}
	})

	mt.Run("get invalid id", func(mt *mtest.T) {
		_, err := NewCampaignService(mt.DB).Get(context.Background(), "nope")
		if !errors.Is(err, ErrInvalidCampaignID) {
			mt.Fatalf("err = %v, want ErrInvalidCampaignID", err)
		}
	})

	mt.Run("create", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(mt, db.CampaignsCollection), mtest.FirstBatch),
			ok(bson.E{Key: "n", Value: 1}),
		)

		c, err := NewCampaignService(mt.DB).Create(context.Background(), &models.Campaign{
			Title: "  Clean Water ",
			Goal:  decimal.NewFromInt(500),
		})
		if err != nil {
			mt.Fatalf("Create: %v", err)
		}
		if c.ID.IsZero() || !c.Active || c.Title != "Clean Water" {
			mt.Fatalf("unexpected campaign: %+v", c)
		}
		if !c.Raised.IsZero() {
			mt.Errorf("raised = %s, want 0", c.Raised)
		}
	})

	mt.Run("create duplicate title", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, db.CampaignsCollection), mtest.FirstBatch,
			bson.D{{Key: "n", Value: int32(1)}}))

		_, err := NewCampaignService(mt.DB).Create(context.Background(), &models.Campaign{Title: "Clean Water"})
		if !errors.Is(err, ErrDuplicateCampaign) {
			mt.Fatalf("err = %v, want ErrDuplicateCampaign", err)
		}
	})

	mt.Run("create duplicate key race", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(mt, db.CampaignsCollection), mtest.FirstBatch),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "E11000 duplicate key error"}),
		)

		_, err := NewCampaignService(mt.DB).Create(context.Background(), &models.Campaign{Title: "Clean Water"})
		if !errors.Is(err, ErrDuplicateCampaign) {
			mt.Fatalf("err = %v, want ErrDuplicateCampaign", err)
		}
	})

	mt.Run("create requires title", func(mt *mtest.T) {
		_, err := NewCampaignService(mt.DB).Create(context.Background(), &models.Campaign{Title: "   "})
		if !errors.Is(err, ErrInvalidCampaign) {
			mt.Fatalf("err = %v, want ErrInvalidCampaign", err)
		}
		if n := len(mt.GetAllStartedEvents()); n != 0 {
			mt.Errorf("expected no commands, got %d", n)
		}
	})
}
