package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Donation is a committed transaction as stored in the donations collection.
type Donation struct {
	ID            string          `bson:"_id" json:"id"`
	UserID        string          `bson:"user_id" json:"user_id"`
	CampaignID    string          `bson:"campaign_id" json:"campaign_id"`
	CampaignTitle string          `bson:"campaign_title" json:"campaign_title"`
	Amount        decimal.Decimal `bson:"amount" json:"amount"`
	BatchID       string          `bson:"batch_id" json:"batch_id"`
	CreatedAt     time.Time       `bson:"created_at" json:"created_at"`
}
