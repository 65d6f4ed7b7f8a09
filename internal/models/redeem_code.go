package models

import (
	"time"
)

const (
	CodeKindDiamonds = "diamonds"
	CodeKindCredits  = "credits"
)

// RedeemCode is a single-use reward token. Codes are stored upper-cased;
// UsedBy transitions from NULL to a user id exactly once.
type RedeemCode struct {
	Code   string `gorm:"primaryKey;size:64"`
	Kind   string `gorm:"size:16;not null"`
	Amount int    `gorm:"not null"`
	UsedBy    *int64
	UsedAt    *time.Time
	CreatedAt time.Time
}
