package gormstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/billsplit/backend/internal/models"
	"github.com/billsplit/backend/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.GroupMember{},
		&models.Bill{},
		&models.RevokedToken{},
	))

	return New(db)
}

func createUser(t *testing.T, s *Store, name, phone string) *models.User {
	t.Helper()
	user := &models.User{Name: name, PhoneNumber: phone, PasswordHash: "x"}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func createGroup(t *testing.T, s *Store, creator *models.User, name string) *models.Group {
	t.Helper()
	ctx := context.Background()
	group := &models.Group{Name: name, CreatedByID: creator.ID}
	require.NoError(t, s.CreateGroup(ctx, group))
	require.NoError(t, s.AddMember(ctx, &models.GroupMember{GroupID: group.ID, UserID: creator.ID, JoinedAt: time.Now()}))
	return group
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := createUser(t, s, "Alice", "1000")

	got, err := s.GetUserByPhone(ctx, "1000")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	_, err = s.GetUser(ctx, uuid.New())
	assert.ErrorIs(t, err, storage.ErrNotFound)

	err = s.CreateUser(ctx, &models.User{Name: "Other", PhoneNumber: "1000", PasswordHash: "x"})
	assert.ErrorIs(t, err, storage.ErrDuplicate)
}

func TestGroupMembership(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := createUser(t, s, "Alice", "1000")
	bob := createUser(t, s, "Bob", "2000")
	group := createGroup(t, s, alice, "Trip")

	require.NoError(t, s.AddMember(ctx, &models.GroupMember{GroupID: group.ID, UserID: bob.ID, JoinedAt: time.Now()}))

	err := s.AddMember(ctx, &models.GroupMember{GroupID: group.ID, UserID: bob.ID, JoinedAt: time.Now()})
	assert.ErrorIs(t, err, storage.ErrDuplicate)

	loaded, err := s.GetGroup(ctx, group.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Creator)
	assert.Equal(t, "Alice", loaded.Creator.Name)
	require.Len(t, loaded.Members, 2)
	require.NotNil(t, loaded.Members[1].User)
	assert.Equal(t, "Bob", loaded.Members[1].User.Name)

	groups, err := s.ListGroupsForUser(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, group.ID, groups[0].ID)

	created, err := s.ListGroupsCreatedBy(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, created)

	require.NoError(t, s.RemoveMember(ctx, group.ID, bob.ID))
	assert.ErrorIs(t, s.RemoveMember(ctx, group.ID, bob.ID), storage.ErrNotFound)
}

func TestBillRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := createUser(t, s, "Alice", "1000")
	bob := createUser(t, s, "Bob", "2000")
	group := createGroup(t, s, alice, "Trip")

	bill := &models.Bill{
		GroupID:     group.ID,
		PaidByID:    alice.ID,
		Description: "Dinner",
		Amount:      decimal.RequireFromString("90.50"),
		BillDate:    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		SplitType:   models.SplitCustom,
		SplitAmong:  []uuid.UUID{alice.ID, bob.ID},
		CustomSplit: map[uuid.UUID]decimal.Decimal{
			alice.ID: decimal.RequireFromString("30.25"),
			bob.ID:   decimal.RequireFromString("60.25"),
		},
	}
	require.NoError(t, s.CreateBill(ctx, bill))

	loaded, err := s.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.True(t, loaded.Amount.Equal(bill.Amount), "amount %s", loaded.Amount)
	assert.Equal(t, []uuid.UUID{alice.ID, bob.ID}, loaded.SplitAmong)
	assert.True(t, loaded.CustomSplit[bob.ID].Equal(decimal.RequireFromString("60.25")))
	require.NotNil(t, loaded.Payer)
	assert.Equal(t, alice.ID, loaded.Payer.ID)

	loaded.Description = "Lunch"
	require.NoError(t, s.UpdateBill(ctx, loaded))

	bills, err := s.ListBills(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.Equal(t, "Lunch", bills[0].Description)

	require.NoError(t, s.DeleteBill(ctx, bill.ID))
	assert.ErrorIs(t, s.DeleteBill(ctx, bill.ID), storage.ErrNotFound)
}

func TestDeleteGroupCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	alice := createUser(t, s, "Alice", "1000")
	group := createGroup(t, s, alice, "Trip")
	require.NoError(t, s.CreateBill(ctx, &models.Bill{
		GroupID:     group.ID,
		PaidByID:    alice.ID,
		Description: "Taxi",
		Amount:      decimal.NewFromInt(20),
		BillDate:    time.Now(),
		SplitType:   models.SplitEqual,
		SplitAmong:  []uuid.UUID{alice.ID},
	}))

	err := s.WithTx(ctx, func(tx storage.Store) error {
		return tx.DeleteGroup(ctx, group.ID)
	})
	require.NoError(t, err)

	_, err = s.GetGroup(ctx, group.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	var bills, members int64
	require.NoError(t, s.db.Model(&models.Bill{}).Where("group_id = ?", group.ID).Count(&bills).Error)
	require.NoError(t, s.db.Model(&models.GroupMember{}).Where("group_id = ?", group.ID).Count(&members).Error)
	assert.Zero(t, bills)
	assert.Zero(t, members)
}

func TestWithTxRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := createUser(t, s, "Alice", "1000")

	boom := errors.New("boom")
	var groupID uuid.UUID
	err := s.WithTx(ctx, func(tx storage.Store) error {
		group := &models.Group{Name: "Trip", CreatedByID: alice.ID}
		if err := tx.CreateGroup(ctx, group); err != nil {
			return err
		}
		groupID = group.ID
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.GetGroup(ctx, groupID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRevokedTokens(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID := uuid.New()

	revoked, err := s.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, s.RevokeToken(ctx, &models.RevokedToken{JTI: "jti-1", UserID: userID, ExpiresAt: time.Now().Add(-time.Hour)}))
	require.NoError(t, s.RevokeToken(ctx, &models.RevokedToken{JTI: "jti-2", UserID: userID, ExpiresAt: time.Now().Add(time.Hour)}))

	revoked, err = s.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	purged, err := s.PurgeExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	revoked, err = s.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.True(t, revoked)
}
