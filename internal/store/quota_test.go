package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datatrace-bot/internal/models"
)

func setStaleDay(t *testing.T, s *Store, userID int64, count int) {
	t.Helper()
	err := s.db.Model(&models.User{}).Where("user_id = ?", userID).
		UpdateColumns(map[string]interface{}{
			"daily_search_count": count,
			"last_search_date":   "2000-01-01",
		}).Error
	require.NoError(t, err)
}

func TestEnsureTodayResetsStaleDay(t *testing.T) {
	s := newTestStore(t)
	mustCreateUser(t, s, 1)
	setStaleDay(t, s, 1, 17)

	user, err := s.EnsureToday(1)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, 0, user.DailySearchCount)
	assert.Equal(t, s.today(), user.LastSearchDate)
}

func TestEnsureTodayResetsAtMostOncePerDay(t *testing.T) {
	s := newTestStore(t)
	mustCreateUser(t, s, 1)
	setStaleDay(t, s, 1, 17)

	_, err := s.EnsureToday(1)
	require.NoError(t, err)

	// Progress made today must survive later calls.
	ok, err := s.ConsumeFreeSlot(1, 30)
	require.NoError(t, err)
	require.True(t, ok)

	user, err := s.EnsureToday(1)
	require.NoError(t, err)
	assert.Equal(t, 1, user.DailySearchCount, "same-day call must not reset again")
}

func TestEnsureTodayConcurrentSingleReset(t *testing.T) {
	s := newTestStore(t)
	mustCreateUser(t, s, 1)
	setStaleDay(t, s, 1, 17)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.EnsureToday(1)
		}()
	}
	wg.Wait()

	user, err := s.Get(1)
	require.NoError(t, err)
	assert.Equal(t, 0, user.DailySearchCount)
	assert.Equal(t, s.today(), user.LastSearchDate)
}

func TestEnsureTodayUnknownUser(t *testing.T) {
	s := newTestStore(t)

	user, err := s.EnsureToday(99)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestConsumeFreeSlotStopsAtLimit(t *testing.T) {
	s := newTestStore(t)
	mustCreateUser(t, s, 1)
	_, err := s.EnsureToday(1)
	require.NoError(t, err)

	const limit = 5
	for i := 0; i < limit; i++ {
		ok, err := s.ConsumeFreeSlot(1, limit)
		require.NoError(t, err)
		assert.True(t, ok, "slot %d should be free", i+1)
	}

	ok, err := s.ConsumeFreeSlot(1, limit)
	require.NoError(t, err)
	assert.False(t, ok, "limit reached, no more free slots")

	user, err := s.Get(1)
	require.NoError(t, err)
	assert.Equal(t, limit, user.DailySearchCount)
}

func TestConsumeFreeSlotConcurrentBoundary(t *testing.T) {
	s := newTestStore(t)
	mustCreateUser(t, s, 1)
	_, err := s.EnsureToday(1)
	require.NoError(t, err)

	const limit = 10
	const attempts = 25
	var wg sync.WaitGroup
	results := make(chan bool, attempts)
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.ConsumeFreeSlot(1, limit)
			if err == nil {
				results <- ok
			}
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for ok := range results {
		if ok {
			succeeded++
		}
	}
	assert.Equal(t, limit, succeeded)

	user, err := s.Get(1)
	require.NoError(t, err)
	assert.Equal(t, limit, user.DailySearchCount)
}
