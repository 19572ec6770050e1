package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthService(t *testing.T, password string) *AuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return NewAuthService("test-secret", string(hash), time.Hour)
}

func TestLoginAndValidate(t *testing.T) {
	authService := newTestAuthService(t, "hunter2")

	token, err := authService.Login("hunter2")
	require.NoError(t, err)
	assert.Equal(t, int64(3600), token.ExpiresIn)

	sessionID, err := authService.ValidateAccessToken(token.AccessToken)
	require.NoError(t, err)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", sessionID.String())
}

func TestLoginWrongPassword(t *testing.T) {
	authService := newTestAuthService(t, "hunter2")

	token, err := authService.Login("nope")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, token)
}

func TestLoginWithoutConfiguredPassword(t *testing.T) {
	_, err := NewAuthService("secret", "", time.Hour).Login("")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	issuer := newTestAuthService(t, "pw")
	token, err := issuer.Login("pw")
	require.NoError(t, err)

	other := NewAuthService("other-secret", "", time.Hour)
	_, err = other.ValidateAccessToken(token.AccessToken)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	authService := newTestAuthService(t, "pw")
	signed, _, err := authService.generateToken(time.Now().Add(-2 * time.Hour))
	require.NoError(t, err)

	_, err = authService.ValidateAccessToken(signed)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsOtherSubject(t *testing.T) {
	authService := NewAuthService("secret", "", time.Hour)
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		SessionID: "11111111-1111-1111-1111-111111111111",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "player",
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = authService.ValidateAccessToken(signed)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)

	assert.True(t, VerifyPassword("secret", hash))
	assert.False(t, VerifyPassword("wrong", hash))
}
