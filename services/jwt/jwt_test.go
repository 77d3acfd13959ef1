package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestGenerateTokenPairRoundTrip(t *testing.T) {
	access, refresh, err := GenerateTokenPair("ada@example.com", testSecret, 42, "Reporter")
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	claims, err := ValidateAndGetClaims(access, testSecret)
	require.NoError(t, err)
	assert.Equal(t, float64(42), claims["id"])
	assert.Equal(t, "ada@example.com", claims["email"])
	assert.Equal(t, "Reporter", claims["role"])
	assert.Equal(t, "access_token", claims["type"])

	refreshClaims, err := ValidateAndGetClaims(refresh, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "refresh_token", refreshClaims["type"])
}

func TestGenerateTokenPairRequiresSecret(t *testing.T) {
	_, _, err := GenerateTokenPair("ada@example.com", "", 42, "Reporter")
	assert.Error(t, err)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	access, _, err := GenerateTokenPair("ada@example.com", testSecret, 42, "Reporter")
	require.NoError(t, err)

	_, err = ValidateAndGetClaims(access, "some-other-secret")
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := ValidateAndGetClaims("not-a-token", testSecret)
	assert.Error(t, err)
}

func TestPasswordResetTokenCarriesType(t *testing.T) {
	token, err := GeneratePasswordResetToken(7, testSecret)
	require.NoError(t, err)

	claims, err := ValidateAndGetClaims(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, float64(7), claims["id"])
	assert.Equal(t, "password_reset_token", claims["type"])
}
