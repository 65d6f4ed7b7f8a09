package models

import (
	"time"
)

// SearchLog is an append-only audit record of allowed lookups.
type SearchLog struct {
	ID         uint   `gorm:"primaryKey"`
	UserID     int64  `gorm:"not null;index"`
	SearchType string `gorm:"size:32;not null"`
	Query      string `gorm:"size:255"`
	CreatedAt  time.Time
}
