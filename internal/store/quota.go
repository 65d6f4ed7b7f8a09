package store

import (
	"fmt"

	"gorm.io/gorm"

	"datatrace-bot/internal/models"
)

// EnsureToday rolls the daily counter over lazily: the first access on a
// new calendar day zeroes daily_search_count and stamps the date, in one
// guarded UPDATE so concurrent callers reset at most once. Returns the
// refreshed account, or nil when the user is unknown.
func (s *Store) EnsureToday(userID int64) (*models.User, error) {
	today := s.today()
	res := s.db.Model(&models.User{}).
		Where("user_id = ? AND (last_search_date IS NULL OR last_search_date <> ?)", userID, today).
		UpdateColumns(map[string]interface{}{
			"daily_search_count": 0,
			"last_search_date":   today,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to roll daily counter for %d: %w", userID, res.Error)
	}
	return s.Get(userID)
}

// ConsumeFreeSlot takes one free daily slot if any remain. The check and
// the increment are the same statement; under the limit it succeeds for
// exactly as many concurrent callers as there are slots left.
func (s *Store) ConsumeFreeSlot(userID int64, limit int) (bool, error) {
	res := s.db.Model(&models.User{}).
		Where("user_id = ? AND daily_search_count < ?", userID, limit).
		UpdateColumn("daily_search_count", gorm.Expr("daily_search_count + 1"))
	if res.Error != nil {
		return false, fmt.Errorf("failed to consume quota slot for %d: %w", userID, res.Error)
	}
	return res.RowsAffected > 0, nil
}
