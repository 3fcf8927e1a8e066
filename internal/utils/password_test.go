package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.True(t, VerifyPassword(hash, "s3cret"))
	assert.False(t, VerifyPassword(hash, "wrong"))
	assert.False(t, VerifyPassword("not-a-hash", "s3cret"))
}

func TestHashRefreshRaw(t *testing.T) {
	a := HashRefreshRaw("token-one")
	b := HashRefreshRaw("token-two")
	assert.Len(t, a, 64) // sha256 hex
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, HashRefreshRaw("token-one"))
}

func TestNewRefreshToken(t *testing.T) {
	tok, err := NewRefreshToken(7)
	require.NoError(t, err)
	assert.Len(t, tok.Raw, 96) // 48 random bytes hex encoded
}
