package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datatrace-bot/internal/models"
)

func TestCreateIfAbsentIdempotent(t *testing.T) {
	s := newTestStore(t)

	user, created, err := s.CreateIfAbsent(1, "alice", "Alice", nil)
	require.NoError(t, err)
	require.True(t, created)
	require.NotNil(t, user)
	assert.Equal(t, int64(1), user.UserID)

	again, created, err := s.CreateIfAbsent(1, "other", "Other", nil)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "alice", again.Username, "existing row stays untouched")
}

func TestCreateIfAbsentAttributesReferral(t *testing.T) {
	s := newTestStore(t)
	mustCreateUser(t, s, 10)

	referrer := int64(10)
	_, created, err := s.CreateIfAbsent(11, "bob", "Bob", &referrer)
	require.NoError(t, err)
	require.True(t, created)

	ref, err := s.Get(10)
	require.NoError(t, err)
	assert.Equal(t, 1, ref.ReferredCount)
	assert.Equal(t, 1, ref.Diamonds)

	var n int64
	require.NoError(t, s.db.Model(&models.Referral{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestCreateIfAbsentSecondCallDoesNotReattribute(t *testing.T) {
	s := newTestStore(t)
	mustCreateUser(t, s, 10)

	referrer := int64(10)
	_, _, err := s.CreateIfAbsent(11, "bob", "Bob", &referrer)
	require.NoError(t, err)
	_, created, err := s.CreateIfAbsent(11, "bob", "Bob", &referrer)
	require.NoError(t, err)
	assert.False(t, created)

	ref, err := s.Get(10)
	require.NoError(t, err)
	assert.Equal(t, 1, ref.ReferredCount)
	assert.Equal(t, 1, ref.Diamonds)
}

func TestCreateIfAbsentIgnoresSelfReferral(t *testing.T) {
	s := newTestStore(t)

	self := int64(5)
	user, created, err := s.CreateIfAbsent(5, "eve", "Eve", &self)
	require.NoError(t, err)
	require.True(t, created)
	assert.Nil(t, user.ReferrerID)
	assert.Equal(t, 0, user.Diamonds)
}

func TestCreateIfAbsentMissingReferrerIsNoOp(t *testing.T) {
	s := newTestStore(t)

	ghost := int64(404)
	user, created, err := s.CreateIfAbsent(6, "carl", "Carl", &ghost)
	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, user)

	var n int64
	require.NoError(t, s.db.Model(&models.Referral{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCreateIfAbsentConcurrentSingleAttribution(t *testing.T) {
	s := newTestStore(t)
	mustCreateUser(t, s, 10)

	referrer := int64(10)
	var wg sync.WaitGroup
	createdCount := make(chan bool, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, created, err := s.CreateIfAbsent(11, "bob", "Bob", &referrer)
			if err == nil {
				createdCount <- created
			}
		}()
	}
	wg.Wait()
	close(createdCount)

	wins := 0
	for created := range createdCount {
		if created {
			wins++
		}
	}
	assert.Equal(t, 1, wins)

	ref, err := s.Get(10)
	require.NoError(t, err)
	assert.Equal(t, 1, ref.ReferredCount)
	assert.Equal(t, 1, ref.Diamonds)
}

func TestGetUnknownUser(t *testing.T) {
	s := newTestStore(t)

	user, err := s.Get(999)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestSetBanned(t *testing.T) {
	s := newTestStore(t)
	mustCreateUser(t, s, 1)

	ok, err := s.SetBanned(1, true)
	require.NoError(t, err)
	assert.True(t, ok)

	banned, err := s.IsBanned(1)
	require.NoError(t, err)
	assert.True(t, banned)

	ok, err = s.SetBanned(999, true)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyCooldown(t *testing.T) {
	s := newTestStore(t)
	mustCreateUser(t, s, 1)

	ok, err := s.CanVerifyNow(1)
	require.NoError(t, err)
	assert.True(t, ok, "no prior verification means no cooldown")

	require.NoError(t, s.TouchLastVerify(1))

	ok, err = s.CanVerifyNow(1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAllUserIDs(t *testing.T) {
	s := newTestStore(t)
	mustCreateUser(t, s, 1)
	mustCreateUser(t, s, 2)
	mustCreateUser(t, s, 3)

	ids, err := s.AllUserIDs()
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 2, 3}, ids)
}

func TestGetStats(t *testing.T) {
	s := newTestStore(t)
	mustCreateUser(t, s, 10)

	referrer := int64(10)
	_, _, err := s.CreateIfAbsent(11, "bob", "Bob", &referrer)
	require.NoError(t, err)

	_, err = s.Adjust(11, FieldCredits, 4, OpAdd)
	require.NoError(t, err)
	_, err = s.SetBanned(11, true)
	require.NoError(t, err)
	require.NoError(t, s.LogSearch(10, "number", "9999999999"))

	st, err := s.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.TotalUsers)
	assert.Equal(t, int64(1), st.TotalSearches)
	assert.Equal(t, int64(1), st.BannedUsers)
	assert.Equal(t, int64(1), st.TotalReferrals)
	assert.Equal(t, int64(1), st.TotalDiamonds)
	assert.Equal(t, int64(4), st.TotalCredits)
}
