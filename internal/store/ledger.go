package store

import (
	"fmt"

	"gorm.io/gorm"

	"datatrace-bot/internal/models"
)

type BalanceField string

const (
	FieldCredits  BalanceField = "credits"
	FieldDiamonds BalanceField = "diamonds"
)

type AdjustOp string

const (
	OpAdd    AdjustOp = "add"
	OpDeduct AdjustOp = "deduct"
	OpSet    AdjustOp = "set"
)

// Adjust mutates one balance column. Deduct is guarded: the decrement only
// applies when the current balance covers the amount, evaluated by the
// database in the same statement, so two concurrent deducts can never
// overdraw. Returns false when no row changed (unknown user, or guard
// failed) with no side effects.
func (s *Store) Adjust(userID int64, field BalanceField, amount int, op AdjustOp) (bool, error) {
	column, err := balanceColumn(field)
	if err != nil {
		return false, err
	}
	if amount < 0 {
		return false, fmt.Errorf("negative amount %d for %s %s", amount, op, field)
	}

	var res *gorm.DB
	switch op {
	case OpAdd:
		res = s.db.Model(&models.User{}).Where("user_id = ?", userID).
			UpdateColumn(column, gorm.Expr(column+" + ?", amount))
	case OpDeduct:
		res = s.db.Model(&models.User{}).
			Where("user_id = ? AND "+column+" >= ?", userID, amount).
			UpdateColumn(column, gorm.Expr(column+" - ?", amount))
	case OpSet:
		res = s.db.Model(&models.User{}).Where("user_id = ?", userID).
			UpdateColumn(column, amount)
	default:
		return false, fmt.Errorf("unknown adjust op %q", op)
	}
	if res.Error != nil {
		return false, fmt.Errorf("failed to %s %s for %d: %w", op, field, userID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// balanceColumn maps a field to its column name. Only the two known fields
// pass; everything else is rejected before reaching SQL.
func balanceColumn(field BalanceField) (string, error) {
	switch field {
	case FieldCredits:
		return "credits", nil
	case FieldDiamonds:
		return "diamonds", nil
	default:
		return "", fmt.Errorf("unknown balance field %q", field)
	}
}
