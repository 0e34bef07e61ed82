package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	AchievementFirstDonation = "first_donation"
	AchievementTenDonations  = "ten_donations"
	AchievementStreak3       = "streak_3"
	AchievementStreak7       = "streak_7"
	AchievementBigHeart      = "big_heart"
)

// UserStats holds the running totals used for streaks and the leaderboard.
type UserStats struct {
	UserID          string          `bson:"_id" json:"user_id"`
	TotalDonated    decimal.Decimal `bson:"total_donated" json:"total_donated"`
	DonationCount   int64           `bson:"donation_count" json:"donation_count"`
	CurrentStreak   int             `bson:"current_streak" json:"current_streak"`
	LongestStreak   int             `bson:"longest_streak" json:"longest_streak"`
	LastDonationDay string          `bson:"last_donation_day" json:"last_donation_day"` // YYYY-MM-DD, UTC
	Achievements    []string        `bson:"achievements" json:"achievements"`
	UpdatedAt       time.Time       `bson:"updated_at" json:"updated_at"`
	// RecentBatches holds the ids of the last batches applied, newest last.
	RecentBatches []string `bson:"recent_batches,omitempty" json:"-"`
}

type LeaderboardEntry struct {
	Rank          int             `json:"rank"`
	UserID        string          `json:"user_id"`
	TotalDonated  decimal.Decimal `json:"total_donated"`
	DonationCount int64           `json:"donation_count"`
	CurrentStreak int             `json:"current_streak"`
}
