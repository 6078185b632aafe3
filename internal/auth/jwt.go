package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/utafrali/identity-service/internal/domain"
)

// Claims is the fixed claim set carried by a session token. Tokens with a
// missing or unknown id/role fail verification; arbitrary extra claim shapes
// are not accepted.
type Claims struct {
	UserID string `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager issues and verifies signed session tokens. The signing secret is
// loaded once at startup; rotating it invalidates every outstanding token,
// which is acceptable because tokens are never stored or revoked server-side.
type JWTManager struct {
	secret []byte
	expiry time.Duration
}

// NewJWTManager creates a JWT manager with the given secret and token lifetime.
func NewJWTManager(secret string, expiry time.Duration) *JWTManager {
	return &JWTManager{
		secret: []byte(secret),
		expiry: expiry,
	}
}

// Issue creates a signed HS256 token carrying the user's id and role,
// expiring after the configured window.
func (m *JWTManager) Issue(userID, role string) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			Issuer:    "identity-service",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signedToken, nil
}

// Verify parses and validates a token, returning its claims. Verification is
// all-or-nothing: a bad signature, malformed token, elapsed expiry, or
// missing required claim all fail identically.
func (m *JWTManager) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	if claims.UserID == "" {
		return nil, fmt.Errorf("token missing id claim")
	}
	if !domain.IsValidRole(claims.Role) {
		return nil, fmt.Errorf("token missing or invalid role claim")
	}
	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("token missing exp claim")
	}

	return claims, nil
}
