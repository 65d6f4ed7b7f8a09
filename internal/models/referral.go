package models

import (
	"time"
)

// Referral records who invited whom. At most one row per referred user,
// mirroring the write-once ReferrerID on User.
type Referral struct {
	ID         uint  `gorm:"primaryKey"`
	ReferrerID int64 `gorm:"not null;index"`
	ReferredID int64 `gorm:"not null;uniqueIndex"`
	CreatedAt  time.Time
}
