package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"datatrace-bot/internal/models"
)

type ClaimStatus int

const (
	ClaimOK ClaimStatus = iota
	ClaimInvalidCode
	ClaimAlreadyUsed
)

type ClaimResult struct {
	Status ClaimStatus
	Kind   string
	Amount int
}

// NormalizeCode case-folds and trims a user-entered code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CreateCode registers a new redeem code; false when the code already exists.
func (s *Store) CreateCode(code, kind string, amount int) (bool, error) {
	if kind != models.CodeKindDiamonds && kind != models.CodeKindCredits {
		return false, fmt.Errorf("unknown code kind %q", kind)
	}
	if amount <= 0 {
		return false, fmt.Errorf("code amount must be positive, got %d", amount)
	}
	rc := models.RedeemCode{
		Code:      NormalizeCode(code),
		Kind:      kind,
		Amount:    amount,
		CreatedAt: time.Now(),
	}
	res := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoNothing: true,
	}).Create(&rc)
	if res.Error != nil {
		return false, fmt.Errorf("failed to create code %s: %w", rc.Code, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// GenerateCode mints a random code with the given reward.
func (s *Store) GenerateCode(kind string, amount int) (string, error) {
	for range 3 {
		code := "DT-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
		ok, err := s.CreateCode(code, kind, amount)
		if err != nil {
			return "", err
		}
		if ok {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique code")
}

// ClaimCode redeems a code for the user. The claim and the credit are one
// transaction: the guarded UPDATE on used_by decides the winner, so under
// concurrent claims exactly one caller gets the reward and the rest see
// already-used.
func (s *Store) ClaimCode(userID int64, code string) (ClaimResult, error) {
	code = NormalizeCode(code)
	var result ClaimResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&models.RedeemCode{}).
			Where("code = ? AND used_by IS NULL", code).
			UpdateColumns(map[string]interface{}{
				"used_by": userID,
				"used_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&models.RedeemCode{}).Where("code = ?", code).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				result.Status = ClaimInvalidCode
			} else {
				result.Status = ClaimAlreadyUsed
			}
			return nil
		}

		var rc models.RedeemCode
		if err := tx.First(&rc, "code = ?", code).Error; err != nil {
			return err
		}
		column := "credits"
		if rc.Kind == models.CodeKindDiamonds {
			column = "diamonds"
		}
		credit := tx.Model(&models.User{}).Where("user_id = ?", userID).
			UpdateColumn(column, gorm.Expr(column+" + ?", rc.Amount))
		if credit.Error != nil {
			return credit.Error
		}
		if credit.RowsAffected == 0 {
			// Unknown user: roll the claim back so the code stays live.
			return fmt.Errorf("user %d not found", userID)
		}
		result = ClaimResult{Status: ClaimOK, Kind: rc.Kind, Amount: rc.Amount}
		return nil
	})
	if err != nil {
		return ClaimResult{}, fmt.Errorf("failed to claim code %s for %d: %w", code, userID, err)
	}
	return result, nil
}
