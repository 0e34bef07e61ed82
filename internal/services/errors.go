package services

import "errors"

var (
	ErrCampaignNotFound   = errors.New("campaign not found")
	ErrInvalidCampaignID  = errors.New("invalid campaign id")
	ErrDuplicateCampaign  = errors.New("campaign with this title already exists")
	ErrInvalidCampaign    = errors.New("invalid campaign")
	ErrInvalidSettings    = errors.New("invalid settings")
	ErrSettingsNotFound   = errors.New("settings not found")
	ErrTransactionMissing = errors.New("transaction not found or already processed")
)
