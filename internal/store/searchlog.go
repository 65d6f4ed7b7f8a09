package store

import (
	"fmt"
	"time"

	"datatrace-bot/internal/models"
)

// LogSearch appends an audit record for an allowed lookup. Callers treat a
// failure here as non-fatal for the request.
func (s *Store) LogSearch(userID int64, searchType, query string) error {
	entry := models.SearchLog{
		UserID:     userID,
		SearchType: searchType,
		Query:      query,
		CreatedAt:  time.Now(),
	}
	if err := s.db.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to log search for %d: %w", userID, err)
	}
	return nil
}
