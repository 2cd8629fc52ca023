// Package ledger holds the pure money arithmetic of the service: how a bill is
// divided between participants and how bills add up to group balances.
package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/billsplit/backend/internal/models"
)

// Tolerance is the largest difference accepted between a custom split's sum
// and the bill amount, and the smallest residue the settlement plan reports.
var Tolerance = decimal.New(1, -2)

// SplitDetails returns each participant's share of the bill.
//
// A custom bill with a stored mapping returns a copy of that mapping. Otherwise
// the amount is divided evenly and every share is rounded to cents, half away
// from zero. The remainder is not redistributed, so the shares may drift from
// the amount by up to half a cent per participant. A bill with no participants
// yields an empty mapping.
func SplitDetails(bill *models.Bill) map[uuid.UUID]decimal.Decimal {
	if bill.SplitType == models.SplitCustom && len(bill.CustomSplit) > 0 {
		shares := make(map[uuid.UUID]decimal.Decimal, len(bill.CustomSplit))
		for id, amount := range bill.CustomSplit {
			shares[id] = amount
		}
		return shares
	}

	shares := make(map[uuid.UUID]decimal.Decimal, len(bill.SplitAmong))
	if len(bill.SplitAmong) == 0 {
		return shares
	}

	each := bill.Amount.Div(decimal.NewFromInt(int64(len(bill.SplitAmong)))).Round(2)
	for _, id := range bill.SplitAmong {
		shares[id] = each
	}
	return shares
}

// SumShares adds up a share mapping.
func SumShares(shares map[uuid.UUID]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, amount := range shares {
		total = total.Add(amount)
	}
	return total
}

// WithinTolerance reports whether a and b differ by at most one cent.
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}
