package services

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/billsplit/backend/internal/apperr"
	"github.com/billsplit/backend/internal/database"
	"github.com/billsplit/backend/internal/models"
	"github.com/billsplit/backend/internal/storage/gormstore"
)

type fixture struct {
	db       *gorm.DB
	groups   *GroupService
	bills    *BillService
	balances *BalanceService
	auth     *AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	store := gormstore.New(db)
	return &fixture{
		db:       db,
		groups:   NewGroupService(store),
		bills:    NewBillService(store),
		balances: NewBalanceService(store),
		auth:     NewAuthService(store),
	}
}

func (f *fixture) user(t *testing.T, name, phone string) *models.User {
	t.Helper()
	u, _, err := f.auth.Register(context.Background(), RegisterInput{Name: name, PhoneNumber: phone, Password: "secret123"})
	require.NoError(t, err)
	return u
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func strPtr(s string) *string { return &s }

func splitPtr(s models.SplitType) *models.SplitType { return &s }

func equalInput(amount string, among ...uuid.UUID) BillInput {
	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	return BillInput{
		Description: strPtr("Dinner"),
		Amount:      dec(amount),
		BillDate:    &date,
		SplitType:   splitPtr(models.SplitEqual),
		SplitAmong:  among,
	}
}

func assertKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Truef(t, apperr.Is(err, kind), "expected %s, got %v", kind, err)
}

func TestGroupLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "Alice", "1000")
	bob := f.user(t, "Bob", "2000")
	carol := f.user(t, "Carol", "3000")

	group, err := f.groups.Create(ctx, alice.ID, CreateGroupInput{Name: "Trip"})
	require.NoError(t, err)
	require.Len(t, group.Members, 1)
	assert.Equal(t, alice.ID, group.Members[0].UserID)

	_, err = f.groups.Get(ctx, group.ID, bob.ID)
	assertKind(t, err, apperr.KindForbidden)

	_, err = f.groups.AddMember(ctx, group.ID, bob.ID, "3000")
	assertKind(t, err, apperr.KindForbidden)

	added, err := f.groups.AddMember(ctx, group.ID, alice.ID, "2000")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, added.ID)

	_, err = f.groups.AddMember(ctx, group.ID, alice.ID, "2000")
	assertKind(t, err, apperr.KindConflict)

	_, err = f.groups.AddMember(ctx, group.ID, alice.ID, "1000")
	assertKind(t, err, apperr.KindConflict)

	_, err = f.groups.AddMember(ctx, group.ID, alice.ID, "9999")
	assertKind(t, err, apperr.KindNotFound)

	members, err := f.groups.Members(ctx, group.ID, bob.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	_, err = f.groups.Update(ctx, group.ID, bob.ID, UpdateGroupInput{Name: strPtr("Mine")})
	assertKind(t, err, apperr.KindForbidden)

	updated, err := f.groups.Update(ctx, group.ID, alice.ID, UpdateGroupInput{Description: strPtr("Summer")})
	require.NoError(t, err)
	assert.Equal(t, "Trip", updated.Name)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "Summer", *updated.Description)

	list, err := f.groups.List(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	created, err := f.groups.ListCreated(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, created)

	_, err = f.groups.RemoveMember(ctx, group.ID, bob.ID, alice.ID)
	assertKind(t, err, apperr.KindConflict)

	_, err = f.groups.RemoveMember(ctx, group.ID, alice.ID, carol.ID)
	assertKind(t, err, apperr.KindConflict)

	left, err := f.groups.RemoveMember(ctx, group.ID, bob.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, left)

	_, err = f.groups.Get(ctx, uuid.New(), alice.ID)
	assertKind(t, err, apperr.KindNotFound)

	assertKind(t, f.groups.Delete(ctx, group.ID, bob.ID), apperr.KindForbidden)
	require.NoError(t, f.groups.Delete(ctx, group.ID, alice.ID))
	_, err = f.groups.Get(ctx, group.ID, alice.ID)
	assertKind(t, err, apperr.KindNotFound)
}

func TestBillRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "Alice", "1000")
	bob := f.user(t, "Bob", "2000")
	outsider := f.user(t, "Olga", "4000")

	group, err := f.groups.Create(ctx, alice.ID, CreateGroupInput{Name: "Flat"})
	require.NoError(t, err)
	_, err = f.groups.AddMember(ctx, group.ID, alice.ID, "2000")
	require.NoError(t, err)

	t.Run("outsider cannot add a bill", func(t *testing.T) {
		_, err := f.bills.Create(ctx, group.ID, outsider.ID, equalInput("10", outsider.ID))
		assertKind(t, err, apperr.KindForbidden)
	})

	t.Run("non-member participant writes nothing", func(t *testing.T) {
		_, err := f.bills.Create(ctx, group.ID, alice.ID, equalInput("10", alice.ID, outsider.ID))
		assertKind(t, err, apperr.KindValidation)

		var count int64
		require.NoError(t, f.db.Model(&models.Bill{}).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("custom split must add up", func(t *testing.T) {
		in := equalInput("90", alice.ID, bob.ID)
		in.SplitType = splitPtr(models.SplitCustom)
		in.CustomSplit = map[uuid.UUID]decimal.Decimal{alice.ID: *dec("30"), bob.ID: *dec("50")}

		_, err := f.bills.Create(ctx, group.ID, alice.ID, in)
		assertKind(t, err, apperr.KindConflict)
	})

	t.Run("custom split within a cent is accepted", func(t *testing.T) {
		in := equalInput("90", alice.ID, bob.ID)
		in.SplitType = splitPtr(models.SplitCustom)
		in.CustomSplit = map[uuid.UUID]decimal.Decimal{alice.ID: *dec("30"), bob.ID: *dec("60.01")}

		bill, err := f.bills.Create(ctx, group.ID, alice.ID, in)
		require.NoError(t, err)
		require.NoError(t, f.bills.Delete(ctx, group.ID, bill.ID, alice.ID))
	})

	t.Run("custom shares are whole cents", func(t *testing.T) {
		in := equalInput("10", alice.ID, bob.ID)
		in.SplitType = splitPtr(models.SplitCustom)
		in.CustomSplit = map[uuid.UUID]decimal.Decimal{alice.ID: *dec("3.333"), bob.ID: *dec("6.667")}

		_, err := f.bills.Create(ctx, group.ID, alice.ID, in)
		assertKind(t, err, apperr.KindValidation)
		var appErr *apperr.Error
		require.ErrorAs(t, err, &appErr)
		assert.Contains(t, appErr.Fields, "custom_split")

		in.CustomSplit = map[uuid.UUID]decimal.Decimal{alice.ID: *dec("3.330"), bob.ID: *dec("6.67")}
		bill, err := f.bills.Create(ctx, group.ID, alice.ID, in)
		require.NoError(t, err)
		require.NoError(t, f.bills.Delete(ctx, group.ID, bill.ID, alice.ID))
	})

	t.Run("custom split missing", func(t *testing.T) {
		in := equalInput("90", alice.ID, bob.ID)
		in.SplitType = splitPtr(models.SplitCustom)

		_, err := f.bills.Create(ctx, group.ID, alice.ID, in)
		assertKind(t, err, apperr.KindValidation)
	})

	bill, err := f.bills.Create(ctx, group.ID, alice.ID, equalInput("100", alice.ID, bob.ID))
	require.NoError(t, err)
	assert.Equal(t, alice.ID, bill.PaidByID)

	t.Run("participants see the bill with its shares", func(t *testing.T) {
		detail, err := f.bills.Get(ctx, group.ID, bill.ID, bob.ID)
		require.NoError(t, err)
		assert.True(t, detail.SplitDetails[bob.ID].Equal(decimal.NewFromInt(50)))
	})

	t.Run("bill under another group is not found", func(t *testing.T) {
		other, err := f.groups.Create(ctx, alice.ID, CreateGroupInput{Name: "Other"})
		require.NoError(t, err)
		_, err = f.bills.Get(ctx, other.ID, bill.ID, alice.ID)
		assertKind(t, err, apperr.KindNotFound)
	})

	t.Run("only the payer edits", func(t *testing.T) {
		_, err := f.bills.Update(ctx, group.ID, bill.ID, bob.ID, BillInput{Amount: dec("80")})
		assertKind(t, err, apperr.KindForbidden)
		assertKind(t, f.bills.Delete(ctx, group.ID, bill.ID, bob.ID), apperr.KindForbidden)
	})

	t.Run("update re-validates the merged bill", func(t *testing.T) {
		_, err := f.bills.Update(ctx, group.ID, bill.ID, alice.ID, BillInput{SplitAmong: []uuid.UUID{alice.ID, outsider.ID}})
		assertKind(t, err, apperr.KindValidation)

		_, err = f.bills.Update(ctx, group.ID, bill.ID, alice.ID, BillInput{
			SplitType:   splitPtr(models.SplitCustom),
			CustomSplit: map[uuid.UUID]decimal.Decimal{alice.ID: *dec("10"), bob.ID: *dec("10")},
		})
		assertKind(t, err, apperr.KindConflict)

		updated, err := f.bills.Update(ctx, group.ID, bill.ID, alice.ID, BillInput{Amount: dec("80")})
		require.NoError(t, err)
		assert.True(t, updated.Amount.Equal(decimal.NewFromInt(80)))
	})

	t.Run("listing requires membership", func(t *testing.T) {
		_, err := f.bills.List(ctx, group.ID, outsider.ID)
		assertKind(t, err, apperr.KindForbidden)

		bills, err := f.bills.List(ctx, group.ID, bob.ID)
		require.NoError(t, err)
		assert.Len(t, bills, 1)
	})
}

func TestBalances(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "Alice", "1000")
	bob := f.user(t, "Bob", "2000")

	group, err := f.groups.Create(ctx, alice.ID, CreateGroupInput{Name: "Trip"})
	require.NoError(t, err)
	_, err = f.groups.AddMember(ctx, group.ID, alice.ID, "2000")
	require.NoError(t, err)

	_, err = f.bills.Create(ctx, group.ID, alice.ID, equalInput("100", alice.ID, bob.ID))
	require.NoError(t, err)

	summary, err := f.balances.Group(ctx, group.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, summary.NetBalances[alice.ID].Equal(decimal.NewFromInt(-50)))
	assert.True(t, summary.NetBalances[bob.ID].Equal(decimal.NewFromInt(50)))
	require.Len(t, summary.Settlements, 1)
	assert.Equal(t, bob.ID, summary.Settlements[0].From)
	assert.Equal(t, alice.ID, summary.Settlements[0].To)

	mine, err := f.balances.Mine(ctx, group.ID, alice)
	require.NoError(t, err)
	require.Len(t, mine.YouOwe, 1)
	assert.Equal(t, "Bob", mine.YouOwe[0].UserName)
	assert.True(t, mine.YouOwe[0].Amount.Equal(decimal.NewFromInt(50)))

	outsider := f.user(t, "Olga", "4000")
	_, err = f.balances.Group(ctx, group.ID, outsider.ID)
	assertKind(t, err, apperr.KindForbidden)
}

func TestAuth(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, pair, err := f.auth.Register(ctx, RegisterInput{Name: "Alice", PhoneNumber: "1000", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", pair.TokenType)

	_, _, err = f.auth.Register(ctx, RegisterInput{Name: "Again", PhoneNumber: "1000", Password: "secret123"})
	assertKind(t, err, apperr.KindValidation)

	_, _, err = f.auth.Login(ctx, "1000", "wrong")
	assertKind(t, err, apperr.KindUnauthenticated)
	_, _, err = f.auth.Login(ctx, "0000", "secret123")
	assertKind(t, err, apperr.KindUnauthenticated)

	_, pair, err = f.auth.Login(ctx, "1000", "secret123")
	require.NoError(t, err)

	got, claims, err := f.auth.Authenticate(ctx, pair.AccessToken, false)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, _, err = f.auth.Authenticate(ctx, pair.RefreshToken, false)
	assertKind(t, err, apperr.KindUnauthenticated)

	_, refreshClaims, err := f.auth.Authenticate(ctx, pair.RefreshToken, true)
	require.NoError(t, err)
	rotated, err := f.auth.Refresh(ctx, refreshClaims)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	_, _, err = f.auth.Authenticate(ctx, pair.RefreshToken, true)
	assertKind(t, err, apperr.KindUnauthenticated)

	// A second rotation of the same claims loses to the first one.
	_, err = f.auth.Refresh(ctx, refreshClaims)
	assertKind(t, err, apperr.KindUnauthenticated)

	require.NoError(t, f.auth.Logout(ctx, claims))
	require.NoError(t, f.auth.Logout(ctx, claims))
	_, _, err = f.auth.Authenticate(ctx, pair.AccessToken, false)
	assertKind(t, err, apperr.KindUnauthenticated)
}
