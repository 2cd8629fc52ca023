package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/billsplit/backend/internal/apperr"
	"github.com/billsplit/backend/internal/ledger"
	"github.com/billsplit/backend/internal/models"
	"github.com/billsplit/backend/internal/storage"
)

type BalanceService struct {
	store storage.Store
}

func NewBalanceService(store storage.Store) *BalanceService {
	return &BalanceService{store: store}
}

type GroupBalance struct {
	ledger.Summary
	Settlements []ledger.Transfer `json:"settlements"`
}

// summarize loads the group and its bills and folds them into a summary.
// It reads outside a transaction; concurrent writes may or may not be seen.
func (s *BalanceService) summarize(ctx context.Context, groupID, userID uuid.UUID) (ledger.Summary, error) {
	group, err := loadGroup(ctx, s.store, groupID)
	if err != nil {
		return ledger.Summary{}, err
	}
	if err := requireMember(group, userID, "You are not a member of this group"); err != nil {
		return ledger.Summary{}, err
	}

	bills, err := s.store.ListBills(ctx, groupID)
	if err != nil {
		return ledger.Summary{}, apperr.Internal("Failed to retrieve balance summary", err)
	}

	users := MemberUsers(group)
	members := make([]ledger.Member, 0, len(users))
	for i := range users {
		members = append(members, ledger.MemberFromUser(&users[i]))
	}
	return ledger.Summarize(members, bills), nil
}

func (s *BalanceService) Group(ctx context.Context, groupID, userID uuid.UUID) (*GroupBalance, error) {
	summary, err := s.summarize(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	return &GroupBalance{
		Summary:     summary,
		Settlements: ledger.SettlementPlan(summary.NetBalances),
	}, nil
}

func (s *BalanceService) Mine(ctx context.Context, groupID uuid.UUID, user *models.User) (*ledger.PersonalBalance, error) {
	summary, err := s.summarize(ctx, groupID, user.ID)
	if err != nil {
		return nil, err
	}
	pb := ledger.Personal(summary, user.ID, user.Name)
	return &pb, nil
}
