package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/syedmusab/rvm-backend/pkg/domain-errors"
)

var jwtService = NewJWTService("test-signing-key", "rvm-backend", time.Hour)

func Test_GenerateSessionToken(t *testing.T) {
	token, err := jwtService.GenerateSessionToken("555")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "555", claims.PhoneNumber)
	assert.NotEmpty(t, claims.SessionID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := jwtService.ValidateToken("invalid-token-string")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	expired := NewJWTService("test-signing-key", "rvm-backend", -time.Hour)

	token, err := expired.GenerateSessionToken("555")
	require.NoError(t, err)

	_, err = expired.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidateToken_WrongKey(t *testing.T) {
	other := NewJWTService("other-signing-key", "rvm-backend", time.Hour)

	token, err := other.GenerateSessionToken("555")
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func Test_ValidatorAdapter(t *testing.T) {
	token, err := jwtService.GenerateSessionToken("555")
	require.NoError(t, err)

	claims, err := NewValidatorAdapter(jwtService).ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "555", claims.PhoneNumber)
	assert.NotEmpty(t, claims.SessionID)
}
