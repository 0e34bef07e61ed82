package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/swipepad/swipepad-gobackend/internal/currency"
	"github.com/swipepad/swipepad-gobackend/internal/db"
	"github.com/swipepad/swipepad-gobackend/internal/gesture"
	"github.com/swipepad/swipepad-gobackend/internal/models"
)

type memorySettingsStore struct {
	mu       sync.Mutex
	payloads map[string]string
	loadErr  error
	saveErr  error
}

func newMemorySettingsStore() *memorySettingsStore {
	return &memorySettingsStore{payloads: make(map[string]string)}
}

func (s *memorySettingsStore) Load(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return "", s.loadErr
	}
	p, ok := s.payloads[userID]
	if !ok {
		return "", ErrSettingsNotFound
	}
	return p, nil
}

func (s *memorySettingsStore) Save(_ context.Context, userID, payload string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.payloads[userID] = payload
	return nil
}

func newTestSettingsService(store SettingsStore) *SettingsService {
	return NewSettingsService(store, DefaultSettings(currency.Cents), gesture.DefaultProfiles())
}

func sameSettings(a, b models.UserSettings) bool {
	return a.DefaultAmount.Equal(b.DefaultAmount) &&
		a.SuperLikeAmount.Equal(b.SuperLikeAmount) &&
		a.Currency == b.Currency &&
		a.GestureVariant == b.GestureVariant &&
		a.SoundEnabled == b.SoundEnabled
}

func TestSettingsLoadFallsBackToDefaults(t *testing.T) {
	defaults := DefaultSettings(currency.Cents)
	cases := []struct {
		name    string
		payload string
		loadErr error
	}{
		{"missing", "", nil},
		{"malformed", `{"default_amount": `, nil},
		{"negative amount", `{"default_amount": "-1"}`, nil},
		{"unknown currency", `{"currency": "DOGE"}`, nil},
		{"unknown variant", `{"gesture_variant": "wobbly"}`, nil},
		{"store failure", "", errors.New("connection reset")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newMemorySettingsStore()
			store.loadErr = tc.loadErr
			if tc.payload != "" {
				store.payloads["u1"] = tc.payload
			}
			got := newTestSettingsService(store).Load(context.Background(), "u1")
			if !sameSettings(got, defaults) {
				t.Errorf("got %+v, want defaults %+v", got, defaults)
			}
		})
	}
}

func TestSettingsLoadMergesPartialPayload(t *testing.T) {
	store := newMemorySettingsStore()
	store.payloads["u1"] = `{"super_like_amount": "0.25", "currency": "usd", "sound_enabled": false}`

	got := newTestSettingsService(store).Load(context.Background(), "u1")
	if !got.SuperLikeAmount.Equal(decimal.RequireFromString("0.25")) {
		t.Errorf("super like = %s", got.SuperLikeAmount)
	}
	if got.Currency != "USD" || got.SoundEnabled {
		t.Errorf("unexpected settings: %+v", got)
	}
	if !got.DefaultAmount.Equal(decimal.New(1, -2)) {
		t.Errorf("default amount = %s, want 0.01", got.DefaultAmount)
	}
}

func TestSettingsSave(t *testing.T) {
	store := newMemorySettingsStore()
	svc := newTestSettingsService(store)

	in := DefaultSettings(currency.Cents)
	in.Currency = "cusd"
	in.GestureVariant = "stack"
	saved, err := svc.Save(context.Background(), "u1", in)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.Currency != string(currency.CUSD) {
		t.Errorf("currency = %s, want cUSD", saved.Currency)
	}

	loaded := svc.Load(context.Background(), "u1")
	if !sameSettings(loaded, saved) {
		t.Errorf("loaded %+v, want %+v", loaded, saved)
	}

	bad := in
	bad.SuperLikeAmount = decimal.Zero
	if _, err := svc.Save(context.Background(), "u1", bad); !errors.Is(err, ErrInvalidSettings) {
		t.Fatalf("err = %v, want ErrInvalidSettings", err)
	}

	store.saveErr = errors.New("disk full")
	if _, err := svc.Save(context.Background(), "u1", in); err == nil {
		t.Fatal("expected store error")
	}
}

func TestMongoSettingsStore(t *testing.T) {
	mt := newMockMongo(t)

	mt.Run("load missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, db.SettingsCollection), mtest.FirstBatch))

		_, err := NewMongoSettingsStore(mt.DB).Load(context.Background(), "u1")
		if !errors.Is(err, ErrSettingsNotFound) {
			mt.Fatalf("err = %v, want ErrSettingsNotFound", err)
		}
	})

	mt.Run("load payload", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, db.SettingsCollection), mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "u1"}, {Key: "payload", Value: `{"currency":"EUR"}`}}))

		payload, err := NewMongoSettingsStore(mt.DB).Load(context.Background(), "u1")
		if err != nil {
			mt.Fatalf("Load: %v", err)
		}
		if payload != `{"currency":"EUR"}` {
			mt.Errorf("payload = %s", payload)
		}
	})

	mt.Run("save upserts", func(mt *mtest.T) {
		mt.AddMockResponses(ok(bson.E{Key: "n", Value: 1}))

		if err := NewMongoSettingsStore(mt.DB).Save(context.Background(), "u1", `{}`); err != nil {
			mt.Fatalf("Save: %v", err)
		}
		if names := commandNames(mt); !equalStrings(names, []string{"update"}) {
			mt.Errorf("commands = %v", names)
		}
	})
}
