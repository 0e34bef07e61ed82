package services

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/swipepad/swipepad-gobackend/internal/db"
	"github.com/swipepad/swipepad-gobackend/internal/models"
)

const (
	dayLayout               = "2006-01-02"
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
	maxRecentBatches        = 20
)

var bigHeartThreshold = decimal.NewFromInt(1)

type StatsService struct {
	collection *mongo.Collection
	// mu serializes the read-modify-write in Apply.
	mu sync.Mutex
}

func NewStatsService(database *mongo.Database) *StatsService {
	return &StatsService{collection: database.Collection(db.StatsCollection)}
}

// Get returns the user's stats. A user with no donations gets zero stats.
func (s *StatsService) Get(ctx context.Context, userID string) (*models.UserStats, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.find(ctx, userID)
}

func (s *StatsService) find(ctx context.Context, userID string) (*models.UserStats, error) {
	stats := models.UserStats{UserID: userID, TotalDonated: decimal.Zero, Achievements: []string{}}
	err := s.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&stats)
	if err != nil && err != mongo.ErrNoDocuments {
		log.Printf("Failed to fetch stats for user %s: %v", userID, err)
		return nil, fmt.Errorf("failed to fetch stats: %w", err)
	}
	if stats.Achievements == nil {
		stats.Achievements = []string{}
	}
	return &stats, nil
}

// Apply folds a committed batch into the user's stats and stores the result.
// A batch id seen among the recent batches is not applied again.
func (s *StatsService) Apply(ctx context.Context, userID, batchID string, amount decimal.Decimal, count int64, at time.Time) (*models.UserStats, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	stats, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}

	if slices.Contains(stats.RecentBatches, batchID) {
		log.Printf("Stats for user %s already include batch %s", userID, batchID)
		return stats, nil
	}

	updated := ApplyDonations(*stats, amount, count, at)
	updated.RecentBatches = rememberBatch(stats.RecentBatches, batchID)
	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection.ReplaceOne(ctx, bson.M{"_id": userID}, updated, opts); err != nil {
		log.Printf("Failed to save stats for user %s: %v", userID, err)
		return nil, fmt.Errorf("failed to save stats: %w", err)
	}
	return &updated, nil
}

func rememberBatch(ids []string, batchID string) []string {
	if batchID == "" {
		return ids
	}
	out := append(slices.Clone(ids), batchID)
	if len(out) > maxRecentBatches {
		out = out[len(out)-maxRecentBatches:]
	}
	return out
}

func (s *StatsService) Leaderboard(ctx context.Context, limit int64) ([]models.LeaderboardEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "total_donated", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(limit)
	cur, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		log.Printf("Failed to fetch leaderboard: %v", err)
		return nil, fmt.Errorf("failed to fetch leaderboard: %w", err)
	}
	defer cur.Close(ctx)

	var rows []models.UserStats
	if err := cur.All(ctx, &rows); err != nil {
		log.Printf("Failed to decode leaderboard: %v", err)
		return nil, fmt.Errorf("failed to decode leaderboard: %w", err)
	}

	entries := make([]models.LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		entries = append(entries, models.LeaderboardEntry{
			Rank:          i + 1,
			UserID:        row.UserID,
			TotalDonated:  row.TotalDonated,
			DonationCount: row.DonationCount,
			CurrentStreak: row.CurrentStreak,
		})
	}
	return entries, nil
}

// ApplyDonations returns stats with count donations totalling amount made at
// the given time. Streaks count consecutive UTC days with at least one
// donation.
func ApplyDonations(stats models.UserStats, amount decimal.Decimal, count int64, at time.Time) models.UserStats {
	if count <= 0 {
		return stats
	}

	day := at.UTC().Format(dayLayout)
	stats.TotalDonated = stats.TotalDonated.Add(amount)
	stats.DonationCount += count
	stats.CurrentStreak = nextStreak(stats.LastDonationDay, day, stats.CurrentStreak)
	if stats.LastDonationDay == "" || day > stats.LastDonationDay {
		stats.LastDonationDay = day
	}
	if stats.CurrentStreak > stats.LongestStreak {
		stats.LongestStreak = stats.CurrentStreak
	}
	stats.Achievements = EvaluateAchievements(stats)
	stats.UpdatedAt = at.UTC()
	return stats
}

func nextStreak(lastDay, day string, streak int) int {
	if lastDay == "" || streak <= 0 {
		return 1
	}
	last, err := time.Parse(dayLayout, lastDay)
	if err != nil {
		return 1
	}
	switch day {
	case lastDay:
		return streak
	case last.AddDate(0, 0, 1).Format(dayLayout):
		return streak + 1
	}
	if day < lastDay {
		// late batch for an earlier day
		return streak
	}
	return 1
}

// EvaluateAchievements returns the sorted set of achievements the stats have
// earned. Achievements already held are never taken away.
func EvaluateAchievements(stats models.UserStats) []string {
	earned := make(map[string]bool, len(stats.Achievements)+5)
	for _, a := range stats.Achievements {
		earned[a] = true
	}
	if stats.DonationCount >= 1 {
		earned[models.AchievementFirstDonation] = true
	}
	if stats.DonationCount >= 10 {
		earned[models.AchievementTenDonations] = true
	}
	if stats.LongestStreak >= 3 {
		earned[models.AchievementStreak3] = true
	}
	if stats.LongestStreak >= 7 {
		earned[models.AchievementStreak7] = true
	}
	if stats.TotalDonated.GreaterThanOrEqual(bigHeartThreshold) {
		earned[models.AchievementBigHeart] = true
	}

	out := make([]string, 0, len(earned))
	for a := range earned {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}
