package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/billsplit/backend/internal/apperr"
	"github.com/billsplit/backend/internal/metrics"
	"github.com/billsplit/backend/internal/models"
	"github.com/billsplit/backend/internal/storage"
)

type GroupService struct {
	store storage.Store
}

func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

type CreateGroupInput struct {
	Name        string
	Description *string
}

// UpdateGroupInput fields left nil keep their current value.
type UpdateGroupInput struct {
	Name        *string
	Description *string
}

func loadGroup(ctx context.Context, store storage.GroupStore, id uuid.UUID) (*models.Group, error) {
	group, err := store.GetGroup(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound("Group not found")
		}
		return nil, apperr.Internal("Failed to load group", err)
	}
	return group, nil
}

// Create stores the group and attaches the creator as its first member in
// one transaction.
func (s *GroupService) Create(ctx context.Context, creatorID uuid.UUID, in CreateGroupInput) (*models.Group, error) {
	group := &models.Group{
		Name:        in.Name,
		Description: in.Description,
		CreatedByID: creatorID,
	}

	err := s.store.WithTx(ctx, func(tx storage.Store) error {
		if err := tx.CreateGroup(ctx, group); err != nil {
			return err
		}
		return tx.AddMember(ctx, &models.GroupMember{
			GroupID:  group.ID,
			UserID:   creatorID,
			JoinedAt: time.Now().UTC(),
		})
	})
	if err != nil {
		return nil, apperr.Internal("Failed to create group", err)
	}
	metrics.RecordWrite("group", "create")

	return loadGroup(ctx, s.store, group.ID)
}

func (s *GroupService) List(ctx context.Context, userID uuid.UUID) ([]models.Group, error) {
	groups, err := s.store.ListGroupsForUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("Failed to retrieve groups", err)
	}
	return groups, nil
}

func (s *GroupService) ListCreated(ctx context.Context, userID uuid.UUID) ([]models.Group, error) {
	groups, err := s.store.ListGroupsCreatedBy(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("Failed to retrieve your groups", err)
	}
	return groups, nil
}

func (s *GroupService) Get(ctx context.Context, groupID, userID uuid.UUID) (*models.Group, error) {
	group, err := loadGroup(ctx, s.store, groupID)
	if err != nil {
		return nil, err
	}
	if err := requireMember(group, userID, "You do not have access to this group"); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *GroupService) Update(ctx context.Context, groupID, userID uuid.UUID, in UpdateGroupInput) (*models.Group, error) {
	err := s.store.WithTx(ctx, func(tx storage.Store) error {
		group, err := loadGroup(ctx, tx, groupID)
		if err != nil {
			return err
		}
		if err := requireCreator(group, userID, "Only group creator can update the group"); err != nil {
			return err
		}

		if in.Name != nil {
			group.Name = *in.Name
		}
		if in.Description != nil {
			group.Description = in.Description
		}
		return tx.UpdateGroup(ctx, group)
	})
	if err != nil {
		return nil, wrapInternal(err, "Failed to update group")
	}
	metrics.RecordWrite("group", "update")

	return loadGroup(ctx, s.store, groupID)
}

// Delete removes the group with its bills and membership rows.
func (s *GroupService) Delete(ctx context.Context, groupID, userID uuid.UUID) error {
	err := s.store.WithTx(ctx, func(tx storage.Store) error {
		group, err := loadGroup(ctx, tx, groupID)
		if err != nil {
			return err
		}
		if err := requireCreator(group, userID, "Only group creator can delete the group"); err != nil {
			return err
		}
		return tx.DeleteGroup(ctx, groupID)
	})
	if err != nil {
		return wrapInternal(err, "Failed to delete group")
	}
	metrics.RecordWrite("group", "delete")
	return nil
}

// AddMember adds the user registered under phone to the group.
func (s *GroupService) AddMember(ctx context.Context, groupID, userID uuid.UUID, phone string) (*models.User, error) {
	var added *models.User
	err := s.store.WithTx(ctx, func(tx storage.Store) error {
		group, err := loadGroup(ctx, tx, groupID)
		if err != nil {
			return err
		}
		if err := requireCreator(group, userID, "Only group creator can add members"); err != nil {
			return err
		}

		user, err := tx.GetUserByPhone(ctx, phone)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return apperr.NotFound("User not found")
			}
			return err
		}
		if IsMember(group, user.ID) {
			return apperr.Conflict("User is already a member of this group")
		}

		err = tx.AddMember(ctx, &models.GroupMember{
			GroupID:  group.ID,
			UserID:   user.ID,
			JoinedAt: time.Now().UTC(),
		})
		if errors.Is(err, storage.ErrDuplicate) {
			return apperr.Conflict("User is already a member of this group")
		}
		if err != nil {
			return err
		}
		added = user
		return nil
	})
	if err != nil {
		return nil, wrapInternal(err, "Failed to add member to group")
	}
	metrics.RecordWrite("member", "add")
	return added, nil
}

// RemoveMember deletes target's membership row. left reports whether the
// caller removed themself.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, userID, targetID uuid.UUID) (left bool, err error) {
	err = s.store.WithTx(ctx, func(tx storage.Store) error {
		group, err := loadGroup(ctx, tx, groupID)
		if err != nil {
			return err
		}
		if err := checkRemoval(group, userID, targetID); err != nil {
			return err
		}
		if err := tx.RemoveMember(ctx, groupID, targetID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return apperr.Conflict("User is not a member of this group")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return false, wrapInternal(err, "Failed to remove member from group")
	}
	metrics.RecordWrite("member", "remove")
	return userID == targetID, nil
}

func (s *GroupService) Members(ctx context.Context, groupID, userID uuid.UUID) ([]models.User, error) {
	group, err := s.Get(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	return MemberUsers(group), nil
}

// wrapInternal passes application errors through and reports anything else
// as Internal with message.
func wrapInternal(err error, message string) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperr.Internal(message, err)
}
