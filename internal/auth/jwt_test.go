package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/edyou/engine-dashboard/internal/config"
)

func newManager() *JWTManager {
	return NewJWTManager(&config.JWTConfig{
		Secret:         "test-secret",
		Issuer:         "edyou-dashboard",
		AccessTokenTTL: 5 * time.Minute,
	})
}

func TestGenerateAndValidate(t *testing.T) {
	m := newManager()

	token, err := m.GenerateServiceToken("dashboard")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, "dashboard", claims.Subject)
	require.Equal(t, "edyou-dashboard", claims.Issuer)
	require.NotEmpty(t, claims.ID)
}

func TestValidateRejectsExpired(t *testing.T) {
	m := newManager()
	m.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, err := m.GenerateServiceToken("dashboard")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ValidateToken(token)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := newManager().GenerateServiceToken("dashboard")
	require.NoError(t, err)

	other := NewJWTManager(&config.JWTConfig{Secret: "other", AccessTokenTTL: time.Minute})
	_, err = other.ValidateToken(token)
	require.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestValidateRejectsNoneAlgorithm(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "dashboard",
		Issuer:    "edyou-dashboard",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newManager().ValidateToken(token)
	require.Error(t, err)
}

func TestGenerateWithoutSecret(t *testing.T) {
	m := NewJWTManager(&config.JWTConfig{})
	_, err := m.GenerateServiceToken("dashboard")
	require.Error(t, err)
}

func TestServiceTokens(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "api-secret", AccessTokenTTL: time.Minute}}
	require.Nil(t, ServiceTokens(cfg))

	cfg.Backend.ServiceSecret = "api-secret"
	signer := ServiceTokens(cfg)
	require.NotNil(t, signer)

	token, err := signer.GenerateServiceToken("dashboard")
	require.NoError(t, err)
	claims, err := NewJWTManager(&cfg.JWT).ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, "dashboard", claims.Subject)
}
