package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"datatrace-bot/internal/database"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "bot.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection serializes concurrent writers at the pool, which
	// keeps sqlite from returning busy errors in concurrency tests.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return New(db, time.UTC, 1, 30*time.Second)
}

func mustCreateUser(t *testing.T, s *Store, id int64) {
	t.Helper()
	_, created, err := s.CreateIfAbsent(id, "user", "User", nil)
	require.NoError(t, err)
	require.True(t, created)
}
