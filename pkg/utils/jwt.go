package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	jwtSecret       = []byte("change-me-in-production")
	accessTokenTTL  = 60 * time.Minute
	refreshTokenTTL = 14 * 24 * time.Hour
)

// Claims carries the user id and, for refresh tokens, the rt flag.
// RegisteredClaims.ID is the token id used for revocation.
type Claims struct {
	UserID  uuid.UUID `json:"userID"`
	Refresh bool      `json:"rt,omitempty"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken           string `json:"access_token"`
	RefreshToken          string `json:"refresh_token"`
	TokenType             string `json:"token_type"`
	AccessTokenExpiresIn  int64  `json:"access_token_expires_in"`
	RefreshTokenExpiresIn int64  `json:"refresh_token_expires_in"`
}

func ConfigureJWT(secret string, accessTTL, refreshTTL time.Duration) {
	if secret != "" {
		jwtSecret = []byte(secret)
	}
	if accessTTL > 0 {
		accessTokenTTL = accessTTL
	}
	if refreshTTL > 0 {
		refreshTokenTTL = refreshTTL
	}
}

func GenerateToken(userID uuid.UUID, refresh bool) (string, error) {
	ttl := accessTokenTTL
	if refresh {
		ttl = refreshTokenTTL
	}

	now := time.Now()
	claims := Claims{
		UserID:  userID,
		Refresh: refresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   userID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

func GenerateTokenPair(userID uuid.UUID) (*TokenPair, error) {
	access, err := GenerateToken(userID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	refresh, err := GenerateToken(userID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:           access,
		RefreshToken:          refresh,
		TokenType:             "bearer",
		AccessTokenExpiresIn:  int64(accessTokenTTL / time.Second),
		RefreshTokenExpiresIn: int64(refreshTokenTTL / time.Second),
	}, nil
}

func ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}
