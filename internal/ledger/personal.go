package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Counterparty struct {
	UserID   uuid.UUID       `json:"user_id"`
	UserName string          `json:"user_name"`
	Amount   decimal.Decimal `json:"amount"`
}

type PersonalBalance struct {
	UserID     uuid.UUID       `json:"user_id"`
	UserName   string          `json:"user_name"`
	TotalSpent decimal.Decimal `json:"total_spent"`
	TotalOwed  decimal.Decimal `json:"total_owed"`
	NetBalance decimal.Decimal `json:"net_balance"`
	YouOwe     []Counterparty  `json:"you_owe"`
	OwesYou    []Counterparty  `json:"owes_you"`
}

// Personal derives the caller's view of a group summary.
//
// The partition looks only at the caller's own net balance: when it is
// negative every other member is listed under YouOwe, otherwise under OwesYou,
// and each entry carries the magnitude of the caller's net balance. It does not
// describe pairwise debts; SettlementPlan does that.
func Personal(s Summary, userID uuid.UUID, userName string) PersonalBalance {
	net := s.NetBalances[userID]
	pb := PersonalBalance{
		UserID:     userID,
		UserName:   userName,
		TotalSpent: s.SpentByUser[userID],
		TotalOwed:  s.OwedByUser[userID],
		NetBalance: net,
		YouOwe:     []Counterparty{},
		OwesYou:    []Counterparty{},
	}

	for _, row := range s.Members {
		if row.ID == userID {
			continue
		}
		entry := Counterparty{UserID: row.ID, UserName: row.Name, Amount: net.Abs()}
		if net.IsNegative() {
			pb.YouOwe = append(pb.YouOwe, entry)
		} else {
			pb.OwesYou = append(pb.OwesYou, entry)
		}
	}

	return pb
}
