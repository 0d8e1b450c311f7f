package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/edyou/engine-dashboard/internal/config"
)

// ErrInvalidToken is returned for tokens that parse but do not validate
var ErrInvalidToken = errors.New("invalid token")

// JWTManager manages service tokens exchanged between the dashboard and
// the analytics API
type JWTManager struct {
	config *config.JWTConfig
	now    func() time.Time
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(cfg *config.JWTConfig) *JWTManager {
	return &JWTManager{
		config: cfg,
		now:    time.Now,
	}
}

// Claims represents JWT claims
type Claims struct {
	jwt.RegisteredClaims
	Service string `json:"service"`
}

// GenerateServiceToken signs a short-lived HS256 token for subject
func (m *JWTManager) GenerateServiceToken(subject string) (string, error) {
	if m.config.Secret == "" {
		return "", errors.New("jwt secret not configured")
	}

	now := m.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    m.issuer(),
			ID:        uuid.NewString(),
		},
		Service: subject,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.config.Secret))
	if err != nil {
		return "", fmt.Errorf("sign service token: %w", err)
	}
	return signed, nil
}

// ValidateToken validates a token
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.config.Secret), nil
	},
		jwt.WithIssuer(m.issuer()),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (m *JWTManager) issuer() string {
	if m.config.Issuer == "" {
		return "edyou-dashboard"
	}
	return m.config.Issuer
}

// ServiceTokens returns the manager the dashboard signs backend requests
// with, or nil when no service secret is configured
func ServiceTokens(cfg *config.Config) *JWTManager {
	if cfg.Backend.ServiceSecret == "" {
		return nil
	}
	jc := cfg.JWT
	jc.Secret = cfg.Backend.ServiceSecret
	return NewJWTManager(&jc)
}
