package gormstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"github.com/billsplit/backend/internal/models"
	"github.com/billsplit/backend/internal/storage"
)

func (s *Store) CreateBill(ctx context.Context, bill *models.Bill) error {
	if err := s.conn(ctx).Omit(clause.Associations).Create(bill).Error; err != nil {
		return fmt.Errorf("failed to create bill: %w", translate(err))
	}
	return nil
}

func (s *Store) GetBill(ctx context.Context, id uuid.UUID) (*models.Bill, error) {
	var bill models.Bill
	if err := s.conn(ctx).Preload("Payer").First(&bill, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &bill, nil
}

func (s *Store) ListBills(ctx context.Context, groupID uuid.UUID) ([]models.Bill, error) {
	var bills []models.Bill
	err := s.conn(ctx).
		Preload("Payer").
		Where("group_id = ?", groupID).
		Order("created_at DESC").
		Find(&bills).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	return bills, nil
}

func (s *Store) UpdateBill(ctx context.Context, bill *models.Bill) error {
	if err := s.conn(ctx).Omit(clause.Associations).Save(bill).Error; err != nil {
		return fmt.Errorf("failed to update bill: %w", translate(err))
	}
	return nil
}

func (s *Store) DeleteBill(ctx context.Context, id uuid.UUID) error {
	res := s.conn(ctx).Where("id = ?", id).Delete(&models.Bill{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete bill: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
