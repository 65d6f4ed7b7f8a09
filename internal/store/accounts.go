package store

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"datatrace-bot/internal/models"
)

// Get returns the account, or nil when the user is unknown.
func (s *Store) Get(userID int64) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user %d: %w", userID, err)
	}
	return &user, nil
}

// CreateIfAbsent registers the user on first contact. A second call for the
// same id returns the existing row untouched and performs no referral side
// effects: the insert and the attribution share one transaction, and the
// attribution only runs when the insert actually created the row.
func (s *Store) CreateIfAbsent(userID int64, username, firstName string, referrerID *int64) (*models.User, bool, error) {
	if referrerID != nil && *referrerID == userID {
		referrerID = nil
	}

	created := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		user := models.User{
			UserID:       userID,
			Username:     username,
			FirstName:    firstName,
			ReferrerID:   referrerID,
			JoinedAt:     now,
			LastActiveAt: now,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).Create(&user)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		created = true
		if referrerID != nil {
			return s.attributeReferral(tx, userID, *referrerID)
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to create user %d: %w", userID, err)
	}

	user, err := s.Get(userID)
	if err != nil {
		return nil, false, err
	}
	return user, created, nil
}

// attributeReferral inserts the referral record and credits the referrer's
// referred_count and diamonds in one UPDATE. A missing referrer is a silent
// no-op. Runs inside the account-creation transaction, so a failure here
// rolls the registration back too.
func (s *Store) attributeReferral(tx *gorm.DB, referredID, referrerID int64) error {
	var n int64
	if err := tx.Model(&models.User{}).Where("user_id = ?", referrerID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return nil
	}

	ref := models.Referral{ReferrerID: referrerID, ReferredID: referredID, CreatedAt: time.Now()}
	if err := tx.Create(&ref).Error; err != nil {
		return err
	}
	return tx.Model(&models.User{}).Where("user_id = ?", referrerID).
		UpdateColumns(map[string]interface{}{
			"referred_count": gorm.Expr("referred_count + 1"),
			"diamonds":       gorm.Expr("diamonds + ?", s.referralReward),
		}).Error
}

func (s *Store) TouchLastActive(userID int64) error {
	return s.db.Model(&models.User{}).Where("user_id = ?", userID).
		UpdateColumn("last_active_at", time.Now()).Error
}

// SetBanned flips the ban flag; reports false when the user does not exist.
func (s *Store) SetBanned(userID int64, banned bool) (bool, error) {
	res := s.db.Model(&models.User{}).Where("user_id = ?", userID).
		UpdateColumn("is_banned", banned)
	if res.Error != nil {
		return false, fmt.Errorf("failed to update ban flag for %d: %w", userID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *Store) IsBanned(userID int64) (bool, error) {
	user, err := s.Get(userID)
	if err != nil {
		return false, err
	}
	return user != nil && user.IsBanned, nil
}

// CanVerifyNow rate-limits membership re-verification.
func (s *Store) CanVerifyNow(userID int64) (bool, error) {
	user, err := s.Get(userID)
	if err != nil {
		return false, err
	}
	if user == nil || user.LastVerifyTime == nil {
		return true, nil
	}
	return time.Since(*user.LastVerifyTime) >= s.verifyCooldown, nil
}

func (s *Store) TouchLastVerify(userID int64) error {
	now := time.Now()
	return s.db.Model(&models.User{}).Where("user_id = ?", userID).
		UpdateColumn("last_verify_time", now).Error
}

// AllUserIDs returns every registered user id, for broadcasts. The snapshot
// may be slightly stale relative to in-flight registrations.
func (s *Store) AllUserIDs() ([]int64, error) {
	var ids []int64
	if err := s.db.Model(&models.User{}).Pluck("user_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list user ids: %w", err)
	}
	return ids, nil
}

type Stats struct {
	TotalUsers     int64
	TotalSearches  int64
	BannedUsers    int64
	TotalReferrals int64
	TotalDiamonds  int64
	TotalCredits   int64
}

func (s *Store) GetStats() (Stats, error) {
	var st Stats
	if err := s.db.Model(&models.User{}).Count(&st.TotalUsers).Error; err != nil {
		return st, err
	}
	if err := s.db.Model(&models.SearchLog{}).Count(&st.TotalSearches).Error; err != nil {
		return st, err
	}
	if err := s.db.Model(&models.User{}).Where("is_banned = ?", true).Count(&st.BannedUsers).Error; err != nil {
		return st, err
	}
	if err := s.db.Model(&models.User{}).Select("COALESCE(SUM(referred_count), 0)").Scan(&st.TotalReferrals).Error; err != nil {
		return st, err
	}
	if err := s.db.Model(&models.User{}).Select("COALESCE(SUM(diamonds), 0)").Scan(&st.TotalDiamonds).Error; err != nil {
		return st, err
	}
	if err := s.db.Model(&models.User{}).Select("COALESCE(SUM(credits), 0)").Scan(&st.TotalCredits).Error; err != nil {
		return st, err
	}
	return st, nil
}
