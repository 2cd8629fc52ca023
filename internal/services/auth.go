package services

import (
	"context"
	"errors"
	"time"

	"github.com/billsplit/backend/internal/apperr"
	"github.com/billsplit/backend/internal/metrics"
	"github.com/billsplit/backend/internal/models"
	"github.com/billsplit/backend/internal/storage"
	"github.com/billsplit/backend/pkg/utils"
)

type AuthService struct {
	store storage.Store
}

func NewAuthService(store storage.Store) *AuthService {
	return &AuthService{store: store}
}

type RegisterInput struct {
	Name        string
	PhoneNumber string
	Password    string
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, *utils.TokenPair, error) {
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, nil, apperr.Internal("Registration failed", err)
	}

	user := &models.User{Name: in.Name, PhoneNumber: in.PhoneNumber, PasswordHash: hash}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, nil, apperr.Validation("Registration validation failed", map[string][]string{
				"phone_number": {"The phone number has already been taken."},
			})
		}
		return nil, nil, apperr.Internal("Registration failed", err)
	}

	pair, err := utils.GenerateTokenPair(user.ID)
	if err != nil {
		return nil, nil, apperr.Internal("Registration failed", err)
	}
	metrics.RecordAuthEvent("register")
	return user, pair, nil
}

func (s *AuthService) Login(ctx context.Context, phone, password string) (*models.User, *utils.TokenPair, error) {
	user, err := s.store.GetUserByPhone(ctx, phone)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, nil, apperr.Internal("Login failed", err)
	}
	if user == nil || !utils.CheckPassword(password, user.PasswordHash) {
		metrics.RecordAuthEvent("login_failed")
		return nil, nil, apperr.Unauthenticated("Invalid phone number or password")
	}

	pair, err := utils.GenerateTokenPair(user.ID)
	if err != nil {
		return nil, nil, apperr.Internal("Login failed", err)
	}
	metrics.RecordAuthEvent("login_success")
	return user, pair, nil
}

// Authenticate validates a bearer token and loads its user. Access routes pass
// refresh=false; only the refresh route accepts refresh tokens.
func (s *AuthService) Authenticate(ctx context.Context, token string, refresh bool) (*models.User, *utils.Claims, error) {
	claims, err := utils.ValidateToken(token)
	if err != nil {
		return nil, nil, apperr.Unauthenticated("Invalid or expired token")
	}
	if claims.Refresh != refresh {
		if refresh {
			return nil, nil, apperr.Unauthenticated("Invalid refresh token")
		}
		return nil, nil, apperr.Unauthenticated("Invalid or expired token")
	}

	revoked, err := s.store.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, apperr.Internal("Failed to verify token", err)
	}
	if revoked {
		return nil, nil, apperr.Unauthenticated("Token has been revoked")
	}

	user, err := s.store.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, apperr.Unauthenticated("User not found")
		}
		return nil, nil, apperr.Internal("Failed to load user", err)
	}
	return user, claims, nil
}

// Revoke invalidates the token described by claims until it expires and
// drops revocations that no longer matter. Revoking twice is not an error.
func (s *AuthService) Revoke(ctx context.Context, claims *utils.Claims) error {
	if err := s.revoke(ctx, claims); err != nil && !errors.Is(err, storage.ErrDuplicate) {
		return apperr.Internal("Logout failed", err)
	}
	return nil
}

// revoke records the token id. A storage.ErrDuplicate means another request
// revoked the same token first.
func (s *AuthService) revoke(ctx context.Context, claims *utils.Claims) error {
	expires := time.Now().UTC()
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}

	if err := s.store.RevokeToken(ctx, &models.RevokedToken{
		JTI:       claims.ID,
		UserID:    claims.UserID,
		ExpiresAt: expires,
	}); err != nil {
		return err
	}

	if _, err := s.store.PurgeExpired(ctx, time.Now().UTC()); err != nil {
		return err
	}
	return nil
}

func (s *AuthService) Logout(ctx context.Context, claims *utils.Claims) error {
	if err := s.Revoke(ctx, claims); err != nil {
		return err
	}
	metrics.RecordAuthEvent("logout")
	return nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued.
func (s *AuthService) Refresh(ctx context.Context, claims *utils.Claims) (*utils.TokenPair, error) {
	if !claims.Refresh {
		return nil, apperr.Unauthenticated("Invalid refresh token")
	}
	// The unique jti index lets only one of two racing refreshes through.
	if err := s.revoke(ctx, claims); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, apperr.Unauthenticated("Token has been revoked")
		}
		return nil, apperr.Internal("Token refresh failed", err)
	}

	pair, err := utils.GenerateTokenPair(claims.UserID)
	if err != nil {
		return nil, apperr.Internal("Token refresh failed", err)
	}
	metrics.RecordAuthEvent("refresh")
	return pair, nil
}
