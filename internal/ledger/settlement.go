package ledger

import (
	"bytes"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transfer is one payment that moves a group towards zero balances.
type Transfer struct {
	From   uuid.UUID       `json:"from"`
	To     uuid.UUID       `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

type position struct {
	id     uuid.UUID
	amount decimal.Decimal
}

// SettlementPlan matches members who owe the group with members the group owes,
// largest amounts first. Residues under a cent are dropped. The result is
// deterministic for a given set of balances.
func SettlementPlan(net map[uuid.UUID]decimal.Decimal) []Transfer {
	var debtors, creditors []position
	for id, amount := range net {
		switch {
		case amount.GreaterThanOrEqual(Tolerance):
			debtors = append(debtors, position{id: id, amount: amount})
		case amount.Neg().GreaterThanOrEqual(Tolerance):
			creditors = append(creditors, position{id: id, amount: amount.Neg()})
		}
	}
	sortPositions(debtors)
	sortPositions(creditors)

	transfers := []Transfer{}
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := decimal.Min(debtors[i].amount, creditors[j].amount)
		if amount.GreaterThanOrEqual(Tolerance) {
			transfers = append(transfers, Transfer{
				From:   debtors[i].id,
				To:     creditors[j].id,
				Amount: amount,
			})
		}

		debtors[i].amount = debtors[i].amount.Sub(amount)
		creditors[j].amount = creditors[j].amount.Sub(amount)

		if debtors[i].amount.LessThan(Tolerance) {
			i++
		}
		if creditors[j].amount.LessThan(Tolerance) {
			j++
		}
	}

	return transfers
}

func sortPositions(p []position) {
	sort.Slice(p, func(a, b int) bool {
		if c := p[a].amount.Cmp(p[b].amount); c != 0 {
			return c > 0
		}
		return bytes.Compare(p[a].id[:], p[b].id[:]) < 0
	})
}
