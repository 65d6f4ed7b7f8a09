// Package store owns all persistent state: user accounts, balances, the
// daily quota counter, redeem codes, referrals, deny lists and the audit
// log. Every invariant-bearing mutation is a single guarded UPDATE or one
// transaction, so the database is the only synchronization point.
package store

import (
	"time"

	"gorm.io/gorm"
)

type Store struct {
	db             *gorm.DB
	loc            *time.Location
	referralReward int
	verifyCooldown time.Duration
}

func New(db *gorm.DB, loc *time.Location, referralReward int, verifyCooldown time.Duration) *Store {
	if loc == nil {
		loc = time.UTC
	}
	return &Store{
		db:             db,
		loc:            loc,
		referralReward: referralReward,
		verifyCooldown: verifyCooldown,
	}
}

// today is the calendar date in the service's reference timezone. The quota
// day boundary follows this value, not the host clock's zone.
func (s *Store) today() string {
	return time.Now().In(s.loc).Format("2006-01-02")
}
