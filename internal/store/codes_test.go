package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datatrace-bot/internal/models"
)

func TestCreateCodeNormalizesAndRejectsDuplicates(t *testing.T) {
	s := newTestStore(t)

	ok, err := s.CreateCode("abc123", models.CodeKindDiamonds, 20)
	require.NoError(t, err)
	require.True(t, ok)

	// Same code in a different case is the same code.
	ok, err = s.CreateCode("ABC123", models.CodeKindDiamonds, 20)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreateCodeValidation(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateCode("X", "rubies", 5)
	assert.Error(t, err)

	_, err = s.CreateCode("X", models.CodeKindCredits, 0)
	assert.Error(t, err)
}

func TestClaimCode(t *testing.T) {
	s := newTestStore(t)
	mustCreateUser(t, s, 1)

	ok, err := s.CreateCode("GIFT10", models.CodeKindCredits, 10)
	require.NoError(t, err)
	require.True(t, ok)

	result, err := s.ClaimCode(1, "gift10")
	require.NoError(t, err)
	assert.Equal(t, ClaimOK, result.Status)
	assert.Equal(t, models.CodeKindCredits, result.Kind)
	assert.Equal(t, 10, result.Amount)

	user, err := s.Get(1)
	require.NoError(t, err)
	assert.Equal(t, 10, user.Credits)
}

func TestClaimCodeInvalid(t *testing.T) {
	s := newTestStore(t)
	mustCreateUser(t, s, 1)

	result, err := s.ClaimCode(1, "NOPE")
	require.NoError(t, err)
	assert.Equal(t, ClaimInvalidCode, result.Status)
}

func TestClaimCodeAlreadyUsed(t *testing.T) {
	s := newTestStore(t)
	mustCreateUser(t, s, 1)
	mustCreateUser(t, s, 2)

	_, err := s.CreateCode("ONCE", models.CodeKindDiamonds, 5)
	require.NoError(t, err)

	result, err := s.ClaimCode(1, "ONCE")
	require.NoError(t, err)
	require.Equal(t, ClaimOK, result.Status)

	result, err = s.ClaimCode(2, "ONCE")
	require.NoError(t, err)
	assert.Equal(t, ClaimAlreadyUsed, result.Status)

	second, err := s.Get(2)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Diamonds, "losing claim must not credit")
}

func TestClaimCodeUnknownUserKeepsCodeLive(t *testing.T) {
	s := newTestStore(t)
	mustCreateUser(t, s, 1)

	_, err := s.CreateCode("KEEP", models.CodeKindDiamonds, 5)
	require.NoError(t, err)

	_, err = s.ClaimCode(99, "KEEP")
	assert.Error(t, err, "claim by an unregistered user must fail")

	// The failed claim rolled back, so a real user can still win it.
	result, err := s.ClaimCode(1, "KEEP")
	require.NoError(t, err)
	assert.Equal(t, ClaimOK, result.Status)
}

func TestClaimCodeConcurrentSingleWinner(t *testing.T) {
	s := newTestStore(t)
	for id := int64(1); id <= 8; id++ {
		mustCreateUser(t, s, id)
	}

	_, err := s.CreateCode("RACE20", models.CodeKindDiamonds, 20)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make(chan ClaimResult, 8)
	for id := int64(1); id <= 8; id++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			result, err := s.ClaimCode(userID, "RACE20")
			if err == nil {
				results <- result
			}
		}(id)
	}
	wg.Wait()
	close(results)

	winners := 0
	for result := range results {
		if result.Status == ClaimOK {
			winners++
		}
	}
	assert.Equal(t, 1, winners, "exactly one concurrent claim may win")

	var totalDiamonds int
	for id := int64(1); id <= 8; id++ {
		user, err := s.Get(id)
		require.NoError(t, err)
		totalDiamonds += user.Diamonds
	}
	assert.Equal(t, 20, totalDiamonds, "the reward must be applied exactly once")
}

func TestGenerateCode(t *testing.T) {
	s := newTestStore(t)
	mustCreateUser(t, s, 1)

	code, err := s.GenerateCode(models.CodeKindCredits, 7)
	require.NoError(t, err)
	require.NotEmpty(t, code)

	result, err := s.ClaimCode(1, code)
	require.NoError(t, err)
	assert.Equal(t, ClaimOK, result.Status)
	assert.Equal(t, 7, result.Amount)
}
