package store

import (
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	"datatrace-bot/internal/models"
)

// AddProtectedNumber shields an identifier from non-owner lookups; false
// when it is already protected.
func (s *Store) AddProtectedNumber(number string, addedBy int64) (bool, error) {
	entry := models.ProtectedNumber{Number: number, AddedBy: addedBy, CreatedAt: time.Now()}
	res := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "number"}},
		DoNothing: true,
	}).Create(&entry)
	if res.Error != nil {
		return false, fmt.Errorf("failed to protect %s: %w", number, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) IsProtected(number string) (bool, error) {
	var n int64
	if err := s.db.Model(&models.ProtectedNumber{}).Where("number = ?", number).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check protection for %s: %w", number, err)
	}
	return n > 0, nil
}

// AddToBlacklist denies an identifier for everyone; false on duplicates.
func (s *Store) AddToBlacklist(identifier, entryType string, addedBy int64) (bool, error) {
	entry := models.BlacklistEntry{Identifier: identifier, Type: entryType, AddedBy: addedBy, CreatedAt: time.Now()}
	res := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "identifier"}},
		DoNothing: true,
	}).Create(&entry)
	if res.Error != nil {
		return false, fmt.Errorf("failed to blacklist %s: %w", identifier, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) IsBlacklisted(identifier string) (bool, error) {
	var n int64
	if err := s.db.Model(&models.BlacklistEntry{}).Where("identifier = ?", identifier).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check blacklist for %s: %w", identifier, err)
	}
	return n > 0, nil
}
