package models

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Campaign represents a charitable campaign card
type Campaign struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	ImageURL    string             `bson:"image_url" json:"image_url"`
	Category    string             `bson:"category" json:"category"`
	Goal        decimal.Decimal    `bson:"goal" json:"goal"`
	Raised      decimal.Decimal    `bson:"raised" json:"raised"`
	DonorCount  int64              `bson:"donor_count" json:"donor_count"`
	Active      bool               `bson:"active" json:"active"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}
