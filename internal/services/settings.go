package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/swipepad/swipepad-gobackend/internal/currency"
	"github.com/swipepad/swipepad-gobackend/internal/db"
	"github.com/swipepad/swipepad-gobackend/internal/gesture"
	"github.com/swipepad/swipepad-gobackend/internal/models"
)

// SettingsStore persists one opaque settings payload per user.
type SettingsStore interface {
	// Load returns ErrSettingsNotFound when nothing has been saved yet.
	Load(ctx context.Context, userID string) (string, error)
	Save(ctx context.Context, userID, payload string) error
}

type settingsDocument struct {
	UserID    string    `bson:"_id"`
	Payload   string    `bson:"payload"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type MongoSettingsStore struct {
	collection *mongo.Collection
}

func NewMongoSettingsStore(database *mongo.Database) *MongoSettingsStore {
	return &MongoSettingsStore{collection: database.Collection(db.SettingsCollection)}
}

func (s *MongoSettingsStore) Load(ctx context.Context, userID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var doc settingsDocument
	if err := s.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return "", ErrSettingsNotFound
		}
		return "", fmt.Errorf("failed to load settings: %w", err)
	}
	return doc.Payload, nil
}

func (s *MongoSettingsStore) Save(ctx context.Context, userID, payload string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	doc := settingsDocument{UserID: userID, Payload: payload, UpdatedAt: time.Now().UTC()}
	if _, err := s.collection.ReplaceOne(ctx, bson.M{"_id": userID}, doc, options.Replace().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// DefaultSettings returns the settings a new user starts with.
func DefaultSettings(code currency.Code) models.UserSettings {
	if code == "" {
		code = currency.Cents
	}
	return models.UserSettings{
		DefaultAmount:   decimal.New(1, -2),
		SuperLikeAmount: decimal.New(5, -2),
		Currency:        string(code),
		GestureVariant:  gesture.DefaultProfile,
		SoundEnabled:    true,
	}
}

type SettingsService struct {
	store    SettingsStore
	defaults models.UserSettings
	profiles gesture.Profiles
}

func NewSettingsService(store SettingsStore, defaults models.UserSettings, profiles gesture.Profiles) *SettingsService {
	if profiles == nil {
		profiles = gesture.DefaultProfiles()
	}
	return &SettingsService{store: store, defaults: defaults, profiles: profiles}
}

func (s *SettingsService) Defaults() models.UserSettings {
	return s.defaults
}

// Load never fails: missing, unreadable or invalid settings are replaced by
// the defaults.
func (s *SettingsService) Load(ctx context.Context, userID string) models.UserSettings {
	payload, err := s.store.Load(ctx, userID)
	if err != nil {
		if err != ErrSettingsNotFound {
			log.Printf("Failed to load settings for user %s: %v", userID, err)
		}
		return s.defaults
	}

	settings := s.defaults
	if err := json.Unmarshal([]byte(payload), &settings); err != nil {
		log.Printf("Malformed settings for user %s, using defaults: %v", userID, err)
		return s.defaults
	}
	if err := s.Validate(&settings); err != nil {
		log.Printf("Invalid settings for user %s, using defaults: %v", userID, err)
		return s.defaults
	}
	return settings
}

// Save validates the settings and stores them, returning the normalized copy.
func (s *SettingsService) Save(ctx context.Context, userID string, settings models.UserSettings) (models.UserSettings, error) {
	if err := s.Validate(&settings); err != nil {
		return models.UserSettings{}, err
	}

	payload, err := json.Marshal(settings)
	if err != nil {
		return models.UserSettings{}, fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := s.store.Save(ctx, userID, string(payload)); err != nil {
		log.Printf("Failed to save settings for user %s: %v", userID, err)
		return models.UserSettings{}, err
	}
	return settings, nil
}

// Validate checks the settings and normalizes the currency code and gesture
// variant in place.
func (s *SettingsService) Validate(settings *models.UserSettings) error {
	if !settings.DefaultAmount.IsPositive() {
		return fmt.Errorf("%w: default_amount must be positive", ErrInvalidSettings)
	}
	if !settings.SuperLikeAmount.IsPositive() {
		return fmt.Errorf("%w: super_like_amount must be positive", ErrInvalidSettings)
	}
	code, err := currency.Parse(settings.Currency)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	settings.Currency = string(code)

	variant := strings.TrimSpace(settings.GestureVariant)
	if variant == "" {
		variant = gesture.DefaultProfile
	}
	if _, ok := s.profiles[variant]; !ok {
		return fmt.Errorf("%w: unknown gesture variant %q", ErrInvalidSettings, variant)
	}
	settings.GestureVariant = variant
	return nil
}
