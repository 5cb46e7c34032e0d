package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrSessionExpired is returned when a token's exp claim is in the past.
// Malformed tokens are reported the same way so that a tampered or
// truncated token forces a logout instead of crashing the caller.
var ErrSessionExpired = errors.New("session expired")

// JWTConfig holds JWT configuration
type JWTConfig struct {
	SigningKey      string
	ExpirationHours int
}

// AdminClaims represents the JWT claims for an admin session
type AdminClaims struct {
	Email   string `json:"email"`
	AdminID uint   `json:"admin_id"`
	Role    string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

var cfg *JWTConfig

// Initialize sets the package-wide JWT configuration
func Initialize(config *JWTConfig) {
	cfg = config
}

// GenerateToken creates a signed session token for an admin
func GenerateToken(email string, adminID uint, role string) (string, error) {
	if cfg == nil {
		return "", errors.New("JWT configuration not provided")
	}

	claims := AdminClaims{
		Email:   email,
		AdminID: adminID,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(cfg.ExpirationHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.SigningKey))
}

// GenerateTokenWithExpiry creates a token with an explicit expiry, used for
// email-verification links and by tests exercising expiry handling
func GenerateTokenWithExpiry(email string, adminID uint, role string, expiresAt time.Time) (string, error) {
	if cfg == nil {
		return "", errors.New("JWT configuration not provided")
	}

	claims := AdminClaims{
		Email:   email,
		AdminID: adminID,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.SigningKey))
}

// ValidateToken validates and parses the session token. An expired token
// returns ErrSessionExpired; any other defect returns a generic error.
func ValidateToken(tokenString string) (*AdminClaims, error) {
	if cfg == nil {
		return nil, errors.New("JWT configuration not provided")
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&AdminClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(cfg.SigningKey), nil
		},
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) || errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, ErrSessionExpired
		}
		return nil, err
	}

	if claims, ok := token.Claims.(*AdminClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}
