package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/swipepad/swipepad-gobackend/internal/db"
	"github.com/swipepad/swipepad-gobackend/internal/models"
)

const (
	defaultCampaignLimit = 20
	maxCampaignLimit     = 100
)

type CampaignService struct {
	collection *mongo.Collection
}

func NewCampaignService(database *mongo.Database) *CampaignService {
	return &CampaignService{collection: database.Collection(db.CampaignsCollection)}
}

// List returns active campaigns, newest first, optionally filtered by category.
func (s *CampaignService) List(ctx context.Context, category string, limit int64) ([]models.Campaign, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if limit <= 0 {
		limit = defaultCampaignLimit
	}
	if limit > maxCampaignLimit {
		limit = maxCampaignLimit
	}

	query := bson.M{"active": true}
	if category = strings.TrimSpace(category); category != "" {
		query["category"] = category
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cur, err := s.collection.Find(ctx, query, opts)
	if err != nil {
		log.Printf("Failed to fetch campaigns: %v", err)
		return nil, fmt.Errorf("failed to fetch campaigns: %w", err)
	}
	defer cur.Close(ctx)

	campaigns := []models.Campaign{}
	if err := cur.All(ctx, &campaigns); err != nil {
		log.Printf("Failed to decode campaigns: %v", err)
		return nil, fmt.Errorf("failed to decode campaigns: %w", err)
	}
	return campaigns, nil
}

func (s *CampaignService) Get(ctx context.Context, id string) (*models.Campaign, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCampaignID, id)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var campaign models.Campaign
	if err := s.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&campaign); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrCampaignNotFound
		}
		log.Printf("Failed to fetch campaign %s: %v", id, err)
		return nil, fmt.Errorf("failed to fetch campaign: %w", err)
	}
	return &campaign, nil
}

func (s *CampaignService) Create(ctx context.Context, campaign *models.Campaign) (*models.Campaign, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	campaign.Title = strings.TrimSpace(campaign.Title)
	campaign.Category = strings.TrimSpace(campaign.Category)
	if campaign.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidCampaign)
	}
	if campaign.Goal.IsNegative() {
		return nil, fmt.Errorf("%w: goal cannot be negative", ErrInvalidCampaign)
	}

	count, err := s.collection.CountDocuments(ctx, bson.M{"title": campaign.Title})
	if err != nil {
		log.Printf("Failed to check campaign title %q: %v", campaign.Title, err)
		return nil, fmt.Errorf("failed to check campaign title: %w", err)
	}
	if count > 0 {
		return nil, ErrDuplicateCampaign
	}

	now := time.Now().UTC()
	campaign.ID = primitive.NewObjectID()
	campaign.Raised = decimal.Zero
	campaign.DonorCount = 0
	campaign.Active = true
	campaign.CreatedAt = now
	campaign.UpdatedAt = now

	if _, err := s.collection.InsertOne(ctx, campaign); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateCampaign
		}
		log.Printf("Failed to save campaign: %v", err)
		return nil, fmt.Errorf("failed to save campaign: %w", err)
	}

	log.Printf("Campaign created: ID=%s, Title=%s", campaign.ID.Hex(), campaign.Title)
	return campaign, nil
}

// addDonations bumps the raised total and donor count for one campaign.
func (s *CampaignService) addDonations(ctx context.Context, campaignID string, amount decimal.Decimal, count int64) error {
	objID, err := primitive.ObjectIDFromHex(campaignID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidCampaignID, campaignID)
	}
	inc, err := db.ToDecimal128(amount)
	if err != nil {
		return fmt.Errorf("failed to convert amount: %w", err)
	}

	res, err := s.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{
		"$inc": bson.M{"raised": inc, "donor_count": count},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("failed to update campaign totals: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrCampaignNotFound
	}
	return nil
}
