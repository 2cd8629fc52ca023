package gormstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/billsplit/backend/internal/models"
	"github.com/billsplit/backend/internal/storage"
)

func (s *Store) CreateGroup(ctx context.Context, group *models.Group) error {
	if err := s.conn(ctx).Omit(clause.Associations).Create(group).Error; err != nil {
		return fmt.Errorf("failed to create group: %w", translate(err))
	}
	return nil
}

func preloadGroup(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Creator").
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("joined_at ASC")
		}).
		Preload("Members.User")
}

func (s *Store) GetGroup(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	var group models.Group
	if err := preloadGroup(s.conn(ctx)).First(&group, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &group, nil
}

func (s *Store) ListGroupsForUser(ctx context.Context, userID uuid.UUID) ([]models.Group, error) {
	var groups []models.Group
	memberOf := s.conn(ctx).Model(&models.GroupMember{}).Select("group_id").Where("user_id = ?", userID)
	err := preloadGroup(s.conn(ctx)).
		Where("created_by_id = ? OR id IN (?)", userID, memberOf).
		Order("created_at DESC").
		Find(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

func (s *Store) ListGroupsCreatedBy(ctx context.Context, userID uuid.UUID) ([]models.Group, error) {
	var groups []models.Group
	err := preloadGroup(s.conn(ctx)).
		Where("created_by_id = ?", userID).
		Order("created_at DESC").
		Find(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

func (s *Store) UpdateGroup(ctx context.Context, group *models.Group) error {
	if err := s.conn(ctx).Omit(clause.Associations).Save(group).Error; err != nil {
		return fmt.Errorf("failed to update group: %w", translate(err))
	}
	return nil
}

func (s *Store) DeleteGroup(ctx context.Context, id uuid.UUID) error {
	db := s.conn(ctx)
	if err := db.Where("group_id = ?", id).Delete(&models.Bill{}).Error; err != nil {
		return fmt.Errorf("failed to delete group bills: %w", err)
	}
	if err := db.Where("group_id = ?", id).Delete(&models.GroupMember{}).Error; err != nil {
		return fmt.Errorf("failed to delete group members: %w", err)
	}
	res := db.Where("id = ?", id).Delete(&models.Group{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete group: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (s *Store) AddMember(ctx context.Context, member *models.GroupMember) error {
	if err := s.conn(ctx).Omit(clause.Associations).Create(member).Error; err != nil {
		return fmt.Errorf("failed to add member: %w", translate(err))
	}
	return nil
}

func (s *Store) RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error {
	res := s.conn(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.GroupMember{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove member: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
