package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/swipepad/swipepad-gobackend/internal/db"
	"github.com/swipepad/swipepad-gobackend/internal/models"
)

const (
	defaultDonationLimit = 50
	maxDonationLimit     = 200
)

type DonationService struct {
	collection *mongo.Collection
	campaigns  *CampaignService
	stats      *StatsService
}

func NewDonationService(database *mongo.Database, campaigns *CampaignService, stats *StatsService) *DonationService {
	return &DonationService{
		collection: database.Collection(db.DonationsCollection),
		campaigns:  campaigns,
		stats:      stats,
	}
}

type campaignTotal struct {
	amount decimal.Decimal
	count  int64
}

// RecordBatch stores every transaction of a committed batch, then updates
// campaign totals and the user's stats. Donations already stored (same id)
// are skipped and only newly stored ones count toward campaign totals. The
// whole batch is applied to the user's stats once per batch id, so recording
// a batch again after the stats update failed completes it.
func (s *DonationService) RecordBatch(ctx context.Context, batch models.Batch) error {
	if len(batch.Transactions) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	docs := make([]interface{}, 0, len(batch.Transactions))
	for _, tx := range batch.Transactions {
		docs = append(docs, models.Donation{
			ID:            tx.ID,
			UserID:        batch.UserID,
			CampaignID:    tx.CampaignID,
			CampaignTitle: tx.CampaignTitle,
			Amount:        tx.Amount,
			BatchID:       batch.ID,
			CreatedAt:     batch.CommittedAt.UTC(),
		})
	}

	var duplicates map[int]bool
	if _, err := s.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false)); err != nil {
		var ok bool
		duplicates, ok = duplicateIndexes(err)
		if !ok {
			log.Printf("Failed to save donations for batch %s: %v", batch.ID, err)
			return fmt.Errorf("failed to save donations: %w", err)
		}
		log.Printf("Batch %s already partly recorded, skipping %d duplicates", batch.ID, len(duplicates))
	}

	totals := make(map[string]*campaignTotal)
	order := []string{}
	stored := 0
	for i, tx := range batch.Transactions {
		if duplicates[i] {
			continue
		}
		t, ok := totals[tx.CampaignID]
		if !ok {
			t = &campaignTotal{amount: decimal.Zero}
			totals[tx.CampaignID] = t
			order = append(order, tx.CampaignID)
		}
		t.amount = t.amount.Add(tx.Amount)
		t.count++
		stored++
	}

	for _, campaignID := range order {
		t := totals[campaignID]
		if err := s.campaigns.addDonations(ctx, campaignID, t.amount, t.count); err != nil {
			// The donations are stored; only the campaign counter is lost.
			log.Printf("Failed to update totals for campaign %s: %v", campaignID, err)
		}
	}

	total := decimal.Zero
	for _, tx := range batch.Transactions {
		total = total.Add(tx.Amount)
	}
	count := int64(len(batch.Transactions))
	if _, err := s.stats.Apply(ctx, batch.UserID, batch.ID, total, count, batch.CommittedAt); err != nil {
		return fmt.Errorf("failed to update stats: %w", err)
	}

	log.Printf("Batch recorded: ID=%s, User=%s, Donations=%d, New=%d, Total=%s",
		batch.ID, batch.UserID, count, stored, total.String())
	return nil
}

func (s *DonationService) ListByUser(ctx context.Context, userID string, limit int64) ([]models.Donation, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if limit <= 0 {
		limit = defaultDonationLimit
	}
	if limit > maxDonationLimit {
		limit = maxDonationLimit
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cur, err := s.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		log.Printf("Failed to fetch donations for user %s: %v", userID, err)
		return nil, fmt.Errorf("failed to fetch donations: %w", err)
	}
	defer cur.Close(ctx)

	donations := []models.Donation{}
	if err := cur.All(ctx, &donations); err != nil {
		log.Printf("Failed to decode donations: %v", err)
		return nil, fmt.Errorf("failed to decode donations: %w", err)
	}
	return donations, nil
}

// duplicateIndexes returns the positions rejected as duplicate keys. It
// reports false if the error is anything else.
func duplicateIndexes(err error) (map[int]bool, bool) {
	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) {
		return nil, false
	}
	if bwe.WriteConcernError != nil || len(bwe.WriteErrors) == 0 {
		return nil, false
	}
	out := make(map[int]bool, len(bwe.WriteErrors))
	for _, we := range bwe.WriteErrors {
		if we.Code != 11000 {
			return nil, false
		}
		out[we.Index] = true
	}
	return out, true
}
