package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/billsplit/backend/internal/models"
)

// Member is the identity information a balance row carries.
type Member struct {
	ID          uuid.UUID
	Name        string
	PhoneNumber string
}

// MemberFromUser builds a Member from a stored user.
func MemberFromUser(u *models.User) Member {
	return Member{ID: u.ID, Name: u.Name, PhoneNumber: u.PhoneNumber}
}

// MemberBalance is one member's row in a group summary.
// NetBalance is positive when the member owes the group and negative when the
// group owes the member.
type MemberBalance struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	PhoneNumber string          `json:"phone_number"`
	TotalSpent  decimal.Decimal `json:"total_spent"`
	TotalOwed   decimal.Decimal `json:"total_owed"`
	NetBalance  decimal.Decimal `json:"net_balance"`
}

type Summary struct {
	TotalSpent  decimal.Decimal               `json:"total_spent"`
	SpentByUser map[uuid.UUID]decimal.Decimal `json:"total_spent_by_user"`
	OwedByUser  map[uuid.UUID]decimal.Decimal `json:"total_owed_by_user"`
	NetBalances map[uuid.UUID]decimal.Decimal `json:"net_balances"`
	Members     []MemberBalance               `json:"members"`
}

// Summarize aggregates bills into per-member totals.
//
// Every member starts at zero. Payers and participants that are no longer
// members still show up in SpentByUser and OwedByUser, but only members get a
// net balance and a row. Rows follow the order of members.
func Summarize(members []Member, bills []models.Bill) Summary {
	s := Summary{
		TotalSpent:  decimal.Zero,
		SpentByUser: make(map[uuid.UUID]decimal.Decimal, len(members)),
		OwedByUser:  make(map[uuid.UUID]decimal.Decimal, len(members)),
		NetBalances: make(map[uuid.UUID]decimal.Decimal, len(members)),
		Members:     make([]MemberBalance, 0, len(members)),
	}

	for _, m := range members {
		s.SpentByUser[m.ID] = decimal.Zero
		s.OwedByUser[m.ID] = decimal.Zero
	}

	for i := range bills {
		bill := &bills[i]
		s.TotalSpent = s.TotalSpent.Add(bill.Amount)
		s.SpentByUser[bill.PaidByID] = s.SpentByUser[bill.PaidByID].Add(bill.Amount)

		for id, share := range SplitDetails(bill) {
			s.OwedByUser[id] = s.OwedByUser[id].Add(share)
		}
	}

	for _, m := range members {
		spent := s.SpentByUser[m.ID]
		owed := s.OwedByUser[m.ID]
		net := owed.Sub(spent)
		s.NetBalances[m.ID] = net
		s.Members = append(s.Members, MemberBalance{
			ID:          m.ID,
			Name:        m.Name,
			PhoneNumber: m.PhoneNumber,
			TotalSpent:  spent,
			TotalOwed:   owed,
			NetBalance:  net,
		})
	}

	return s
}
