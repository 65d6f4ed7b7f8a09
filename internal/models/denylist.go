package models

import (
	"time"
)

// ProtectedNumber blocks lookups of an identifier for everyone except the owner.
type ProtectedNumber struct {
	ID        uint   `gorm:"primaryKey"`
	Number    string `gorm:"uniqueIndex;size:64;not null"`
	AddedBy   int64  `gorm:"not null"`
	CreatedAt time.Time
}

// BlacklistEntry blocks lookups of an identifier for everyone.
type BlacklistEntry struct {
	ID         uint   `gorm:"primaryKey"`
	Identifier string `gorm:"uniqueIndex;size:64;not null"`
	Type       string `gorm:"size:32"`
	AddedBy    int64  `gorm:"not null"`
	CreatedAt  time.Time
}
