// Package storage defines the persistence boundary used by the services.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/billsplit/backend/internal/models"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
)

type UserStore interface {
	// CreateUser returns ErrDuplicate when the phone number is taken.
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByPhone(ctx context.Context, phone string) (*models.User, error)
}

type GroupStore interface {
	// CreateGroup inserts the group row only. Members are added with AddMember.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup loads a group with its creator and member users.
	GetGroup(ctx context.Context, id uuid.UUID) (*models.Group, error)

	// ListGroupsForUser returns groups the user created or joined, newest first.
	ListGroupsForUser(ctx context.Context, userID uuid.UUID) ([]models.Group, error)

	// ListGroupsCreatedBy returns groups the user created, newest first.
	ListGroupsCreatedBy(ctx context.Context, userID uuid.UUID) ([]models.Group, error)

	UpdateGroup(ctx context.Context, group *models.Group) error

	// DeleteGroup removes the group together with its bills and membership rows.
	// Call it inside WithTx so the three deletes commit together.
	DeleteGroup(ctx context.Context, id uuid.UUID) error

	// AddMember returns ErrDuplicate when the user already has a row in the group.
	AddMember(ctx context.Context, member *models.GroupMember) error

	// RemoveMember returns ErrNotFound when there was no row to delete.
	RemoveMember(ctx context.Context, groupID, userID uuid.UUID) error
}

type BillStore interface {
	CreateBill(ctx context.Context, bill *models.Bill) error
	// GetBill loads a bill with its payer.
	GetBill(ctx context.Context, id uuid.UUID) (*models.Bill, error)
	// ListBills returns the group's bills, newest first.
	ListBills(ctx context.Context, groupID uuid.UUID) ([]models.Bill, error)
	UpdateBill(ctx context.Context, bill *models.Bill) error
	DeleteBill(ctx context.Context, id uuid.UUID) error
}

type TokenStore interface {
	RevokeToken(ctx context.Context, token *models.RevokedToken) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	// PurgeExpired deletes revocations whose tokens expired before the cutoff.
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

// TxRunner runs fn inside a transaction. The Store passed to fn is bound to
// that transaction; returning an error from fn rolls it back.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

// Store is the full persistence surface.
type Store interface {
	UserStore
	GroupStore
	BillStore
	TokenStore
	TxRunner
}
