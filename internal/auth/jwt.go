package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

// Claims defines the JWT claims structure. TokenType discriminates access
// tokens from refresh tokens so one can never stand in for the other.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	TokenType string `json:"typ"`
}

// TokenManager issues and validates the access/refresh token pair, backed by
// symmetric HMAC.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenManager creates a TokenManager with the provided secret and TTLs.
func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssueAccessToken creates a short-lived access token for a user.
func (m *TokenManager) IssueAccessToken(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
		},
		UserID:    userID,
		TokenType: typeAccess,
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// IssueRefreshToken creates a long-lived refresh token for a user.
func (m *TokenManager) IssueRefreshToken(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.refreshTTL)),
		},
		UserID:    userID,
		TokenType: typeRefresh,
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return signed, nil
}

// IssuePair creates the access/refresh pair handed out on login.
func (m *TokenManager) IssuePair(userID string) (access, refresh string, err error) {
	if access, err = m.IssueAccessToken(userID); err != nil {
		return "", "", err
	}
	if refresh, err = m.IssueRefreshToken(userID); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// ParseAccessToken validates an access token and returns the user ID.
func (m *TokenManager) ParseAccessToken(tokenStr string) (string, error) {
	claims, err := m.parse(tokenStr)
	if err != nil {
		return "", err
	}
	if claims.TokenType != typeAccess {
		return "", fmt.Errorf("token type mismatch: %s", claims.TokenType)
	}
	return claims.UserID, nil
}

// ParseRefreshToken validates a refresh token and returns the user ID.
func (m *TokenManager) ParseRefreshToken(tokenStr string) (string, error) {
	claims, err := m.parse(tokenStr)
	if err != nil {
		return "", err
	}
	if claims.TokenType != typeRefresh {
		return "", fmt.Errorf("token type mismatch: %s", claims.TokenType)
	}
	return claims.UserID, nil
}

func (m *TokenManager) parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
