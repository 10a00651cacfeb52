package auth

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("travel-far-2024")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "travel-far-2024", hash)

	// Same input hashes differently (bcrypt salts per call)
	hash2, err := HashPassword("travel-far-2024")
	require.NoError(t, err)
	assert.NotEqual(t, hash, hash2)
}

func TestHashPassword_Empty(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)
}

func TestComparePassword(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)

	assert.NoError(t, ComparePassword(hash, "correct-horse"))
	assert.Error(t, ComparePassword(hash, "wrong-horse"))
	assert.Error(t, ComparePassword("", "correct-horse"))
}

func TestGenerateSecureToken(t *testing.T) {
	token, err := GenerateSecureToken()
	require.NoError(t, err)

	// 32 random bytes hex-encoded
	assert.Len(t, token, TokenBytes*2)
	_, err = hex.DecodeString(token)
	assert.NoError(t, err)

	other, err := GenerateSecureToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}
