package gormstore

import (
	"context"
	"fmt"
	"time"

	"github.com/billsplit/backend/internal/models"
)

func (s *Store) RevokeToken(ctx context.Context, token *models.RevokedToken) error {
	if err := s.conn(ctx).Create(token).Error; err != nil {
		return fmt.Errorf("failed to revoke token: %w", translate(err))
	}
	return nil
}

func (s *Store) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var count int64
	if err := s.conn(ctx).Model(&models.RevokedToken{}).Where("jti = ?", jti).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check token: %w", err)
	}
	return count > 0, nil
}

func (s *Store) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	res := s.conn(ctx).Where("expires_at < ?", before).Delete(&models.RevokedToken{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to purge revoked tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}
