package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProtectedNumbers(t *testing.T) {
	s := newTestStore(t)

	ok, err := s.AddProtectedNumber("9876543210", 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.AddProtectedNumber("9876543210", 2)
	require.NoError(t, err)
	assert.False(t, ok)

	protected, err := s.IsProtected("9876543210")
	require.NoError(t, err)
	assert.True(t, protected)

	protected, err = s.IsProtected("1111111111")
	require.NoError(t, err)
	assert.False(t, protected)
}

func TestBlacklist(t *testing.T) {
	s := newTestStore(t)

	ok, err := s.AddToBlacklist("scammer@upi", "upi", 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.AddToBlacklist("scammer@upi", "upi", 1)
	require.NoError(t, err)
	assert.False(t, ok)

	listed, err := s.IsBlacklisted("scammer@upi")
	require.NoError(t, err)
	assert.True(t, listed)

	listed, err = s.IsBlacklisted("clean@upi")
	require.NoError(t, err)
	assert.False(t, listed)
}
