package backauth_test

import (
	"testing"

	backauth "github.com/citymarkets/backoffice-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := backauth.HashPassword("securePassword123!")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "securePassword123!", hash)

	assert.NoError(t, backauth.ComparePasswordAndHash("securePassword123!", hash))
}

func TestHashPasswordRejectsEmptyInput(t *testing.T) {
	_, err := backauth.HashPassword("")
	assert.ErrorIs(t, err, backauth.ErrNoEmptyString)
}

func TestComparePasswordAndHash(t *testing.T) {
	hash, err := backauth.HashPassword("testPassword123!")
	require.NoError(t, err)

	err = backauth.ComparePasswordAndHash("wrongPassword", hash)
	assert.ErrorIs(t, err, backauth.ErrMismatchedHashAndPassword)

	err = backauth.ComparePasswordAndHash("testPassword123!", "not-a-hash")
	assert.Error(t, err)
}

func TestBcryptAuthenticator(t *testing.T) {
	var auth backauth.PasswordAuthenticator = backauth.BcryptAuthenticator{}

	hash, err := auth.HashPassword("password")
	require.NoError(t, err)
	assert.NoError(t, auth.ComparePasswordAndHash("password", hash))
	assert.Error(t, auth.ComparePasswordAndHash("other", hash))
}
