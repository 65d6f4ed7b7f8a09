package models

import (
	"time"
)

// User is one account per Telegram user. Credits and diamonds are kept
// non-negative by guarded updates in the store, never by application checks.
type User struct {
	UserID           int64  `gorm:"primaryKey"`
	Username         string `gorm:"size:255"`
	FirstName        string `gorm:"size:255"`
	Credits          int    `gorm:"not null;default:0"`
	Diamonds         int    `gorm:"not null;default:0"`
	ReferrerID       *int64 `gorm:"index"`
	ReferredCount    int    `gorm:"not null;default:0"`
	IsBanned         bool   `gorm:"not null;default:false"`
	DailySearchCount int    `gorm:"not null;default:0"`
	LastSearchDate   string `gorm:"size:10"`
	LastVerifyTime   *time.Time
	JoinedAt         time.Time
	LastActiveAt     time.Time
}
