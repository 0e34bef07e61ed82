package models

import "github.com/shopspring/decimal"

// UserSettings are the per-user preferences the client used to keep in local
// storage.
type UserSettings struct {
	DefaultAmount   decimal.Decimal `json:"default_amount"`
	SuperLikeAmount decimal.Decimal `json:"super_like_amount"`
	Currency        string          `json:"currency"`
	GestureVariant  string          `json:"gesture_variant"`
	SoundEnabled    bool            `json:"sound_enabled"`
}
