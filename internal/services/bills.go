package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/billsplit/backend/internal/apperr"
	"github.com/billsplit/backend/internal/ledger"
	"github.com/billsplit/backend/internal/metrics"
	"github.com/billsplit/backend/internal/models"
	"github.com/billsplit/backend/internal/storage"
)

type BillService struct {
	store storage.Store
}

func NewBillService(store storage.Store) *BillService {
	return &BillService{store: store}
}

// BillInput carries bill fields. On update, nil fields keep their stored value.
type BillInput struct {
	Description *string
	Amount      *decimal.Decimal
	BillDate    *time.Time
	SplitType   *models.SplitType
	SplitAmong  []uuid.UUID
	CustomSplit map[uuid.UUID]decimal.Decimal
}

// BillDetail is a bill with its computed per-participant shares.
type BillDetail struct {
	*models.Bill
	SplitDetails map[uuid.UUID]decimal.Decimal `json:"split_details"`
}

func (in BillInput) apply(bill *models.Bill) {
	if in.Description != nil {
		bill.Description = *in.Description
	}
	if in.Amount != nil {
		bill.Amount = in.Amount.Round(2)
	}
	if in.BillDate != nil {
		bill.BillDate = *in.BillDate
	}
	if in.SplitType != nil {
		bill.SplitType = *in.SplitType
	}
	if in.SplitAmong != nil {
		bill.SplitAmong = in.SplitAmong
	}
	if in.CustomSplit != nil {
		bill.CustomSplit = in.CustomSplit
	}
	if bill.SplitType == models.SplitEqual {
		bill.CustomSplit = nil
	}
}

var minAmount = decimal.New(1, -2)

// validateBill checks a bill against its group before it is written.
func validateBill(group *models.Group, bill *models.Bill) error {
	if bill.Amount.LessThan(minAmount) {
		return apperr.Field("amount", "The amount must be at least 0.01.")
	}
	if !bill.SplitType.Valid() {
		return apperr.Field("split_type", "The selected split type is invalid.")
	}
	if len(bill.SplitAmong) == 0 {
		return apperr.Field("split_among", "The split among field must have at least 1 items.")
	}
	if !IsMember(group, bill.PaidByID) {
		return apperr.Field("paid_by", "The payer is not a member of this group")
	}

	seen := make(map[uuid.UUID]bool, len(bill.SplitAmong))
	for _, id := range bill.SplitAmong {
		if seen[id] {
			return apperr.Field("split_among", "The split among field has a duplicate value.")
		}
		seen[id] = true
		if !IsMember(group, id) {
			return apperr.Field("split_among", fmt.Sprintf("User ID %s is not a member of this group", id))
		}
	}

	if bill.SplitType != models.SplitCustom {
		return nil
	}
	if len(bill.CustomSplit) == 0 {
		return apperr.Field("custom_split", "The custom split field is required when split type is custom.")
	}
	for id, share := range bill.CustomSplit {
		if !seen[id] {
			return apperr.Field("custom_split", fmt.Sprintf("User ID %s is not listed in split_among", id))
		}
		if share.IsNegative() {
			return apperr.Field("custom_split", "Custom split amounts cannot be negative.")
		}
		if !share.Equal(share.Round(2)) {
			return apperr.Field("custom_split", "Custom split amounts may have at most 2 decimal places.")
		}
	}
	if !ledger.WithinTolerance(ledger.SumShares(bill.CustomSplit), bill.Amount) {
		return apperr.Conflict("Custom split amounts must equal the total bill amount")
	}
	return nil
}

// loadBill fetches a bill that belongs to group. A bill from another group
// is reported as not found.
func loadBill(ctx context.Context, store storage.BillStore, group *models.Group, billID uuid.UUID) (*models.Bill, error) {
	bill, err := store.GetBill(ctx, billID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound("Bill not found")
		}
		return nil, apperr.Internal("Failed to load bill", err)
	}
	if bill.GroupID != group.ID {
		return nil, apperr.NotFound("Bill not found")
	}
	return bill, nil
}

// Create records a bill paid by the caller.
func (s *BillService) Create(ctx context.Context, groupID, userID uuid.UUID, in BillInput) (*models.Bill, error) {
	bill := &models.Bill{
		GroupID:   groupID,
		PaidByID:  userID,
		SplitType: models.SplitEqual,
	}
	in.apply(bill)

	err := s.store.WithTx(ctx, func(tx storage.Store) error {
		group, err := loadGroup(ctx, tx, groupID)
		if err != nil {
			return err
		}
		if err := requireMember(group, userID, "You are not a member of this group"); err != nil {
			return err
		}
		if err := validateBill(group, bill); err != nil {
			return err
		}
		return tx.CreateBill(ctx, bill)
	})
	if err != nil {
		return nil, wrapInternal(err, "Failed to create bill")
	}
	metrics.RecordWrite("bill", "create")

	return s.reload(ctx, bill.ID)
}

func (s *BillService) List(ctx context.Context, groupID, userID uuid.UUID) ([]models.Bill, error) {
	group, err := loadGroup(ctx, s.store, groupID)
	if err != nil {
		return nil, err
	}
	if err := requireMember(group, userID, "You are not a member of this group"); err != nil {
		return nil, err
	}

	bills, err := s.store.ListBills(ctx, groupID)
	if err != nil {
		return nil, apperr.Internal("Failed to retrieve bills", err)
	}
	return bills, nil
}

// Get returns a bill to anyone who paid for it or shares in it.
func (s *BillService) Get(ctx context.Context, groupID, billID, userID uuid.UUID) (*BillDetail, error) {
	group, err := loadGroup(ctx, s.store, groupID)
	if err != nil {
		return nil, err
	}
	bill, err := loadBill(ctx, s.store, group, billID)
	if err != nil {
		return nil, err
	}
	if !IsInvolved(bill, userID) {
		return nil, apperr.Forbidden("You do not have access to this bill")
	}
	return &BillDetail{Bill: bill, SplitDetails: ledger.SplitDetails(bill)}, nil
}

// Update merges in into the stored bill and re-validates the result against
// the group's current members.
func (s *BillService) Update(ctx context.Context, groupID, billID, userID uuid.UUID, in BillInput) (*models.Bill, error) {
	err := s.store.WithTx(ctx, func(tx storage.Store) error {
		group, err := loadGroup(ctx, tx, groupID)
		if err != nil {
			return err
		}
		bill, err := loadBill(ctx, tx, group, billID)
		if err != nil {
			return err
		}
		if err := requirePayer(bill, userID, "Only the person who paid can update the bill"); err != nil {
			return err
		}

		in.apply(bill)
		if err := validateBill(group, bill); err != nil {
			return err
		}
		bill.Payer = nil
		return tx.UpdateBill(ctx, bill)
	})
	if err != nil {
		return nil, wrapInternal(err, "Failed to update bill")
	}
	metrics.RecordWrite("bill", "update")

	return s.reload(ctx, billID)
}

func (s *BillService) Delete(ctx context.Context, groupID, billID, userID uuid.UUID) error {
	err := s.store.WithTx(ctx, func(tx storage.Store) error {
		group, err := loadGroup(ctx, tx, groupID)
		if err != nil {
			return err
		}
		bill, err := loadBill(ctx, tx, group, billID)
		if err != nil {
			return err
		}
		if err := requirePayer(bill, userID, "Only the person who paid can delete the bill"); err != nil {
			return err
		}
		return tx.DeleteBill(ctx, billID)
	})
	if err != nil {
		return wrapInternal(err, "Failed to delete bill")
	}
	metrics.RecordWrite("bill", "delete")
	return nil
}

func (s *BillService) reload(ctx context.Context, id uuid.UUID) (*models.Bill, error) {
	bill, err := s.store.GetBill(ctx, id)
	if err != nil {
		return nil, apperr.Internal("Failed to load bill", err)
	}
	return bill, nil
}
