package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/billsplit/backend/internal/cli/client"
)

// Out is where every printer writes. Tests swap it for a buffer.
var Out io.Writer = os.Stdout

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(Out, 0, 0, 2, ' ', 0)
}

// JSON prints v as indented JSON.
func JSON(v interface{}) {
	enc := json.NewEncoder(Out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func UserInfo(u client.User) {
	w := newTable()
	fmt.Fprintf(w, "Name:\t%s\n", u.Name)
	fmt.Fprintf(w, "Phone:\t%s\n", u.PhoneNumber)
	fmt.Fprintf(w, "ID:\t%s\n", u.ID)
	w.Flush()
}

func GroupTable(groups []client.Group) {
	if len(groups) == 0 {
		fmt.Fprintln(Out, "No groups found.")
		return
	}

	w := newTable()
	fmt.Fprintln(w, "ID\tNAME\tMEMBERS\tCREATED")
	for _, g := range groups {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", g.ID, g.Name, len(g.Members), RelativeTime(g.CreatedAt))
	}
	w.Flush()
}

func GroupDetail(g client.Group) {
	w := newTable()
	fmt.Fprintf(w, "Name:\t%s\n", g.Name)
	fmt.Fprintf(w, "ID:\t%s\n", g.ID)
	if g.Description != nil && *g.Description != "" {
		fmt.Fprintf(w, "Description:\t%s\n", *g.Description)
	}
	creator := g.CreatedBy
	if g.Creator != nil {
		creator = g.Creator.Name
	}
	fmt.Fprintf(w, "Created by:\t%s\n", creator)
	fmt.Fprintf(w, "Members:\t%d\n", len(g.Members))
	fmt.Fprintf(w, "Created:\t%s\n", g.CreatedAt.Format(time.RFC3339))
	w.Flush()
}

func MemberTable(members []client.User) {
	if len(members) == 0 {
		fmt.Fprintln(Out, "No members found.")
		return
	}

	w := newTable()
	fmt.Fprintln(w, "ID\tNAME\tPHONE")
	for _, m := range members {
		fmt.Fprintf(w, "%s\t%s\t%s\n", m.ID, m.Name, m.PhoneNumber)
	}
	w.Flush()
}

func BillTable(bills []client.Bill) {
	if len(bills) == 0 {
		fmt.Fprintln(Out, "No bills found.")
		return
	}

	w := newTable()
	fmt.Fprintln(w, "ID\tDATE\tDESCRIPTION\tAMOUNT\tPAID BY\tSPLIT")
	for _, b := range bills {
		payer := b.PaidBy
		if b.Payer != nil {
			payer = b.Payer.Name
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s/%d\n",
			b.ID, b.BillDate.Format("2006-01-02"), b.Description, Money(b.Amount), payer, b.SplitType, len(b.SplitAmong))
	}
	w.Flush()
}

func BillDetail(b client.Bill) {
	w := newTable()
	fmt.Fprintf(w, "Description:\t%s\n", b.Description)
	fmt.Fprintf(w, "ID:\t%s\n", b.ID)
	fmt.Fprintf(w, "Amount:\t%s\n", Money(b.Amount))
	fmt.Fprintf(w, "Date:\t%s\n", b.BillDate.Format("2006-01-02"))
	fmt.Fprintf(w, "Paid by:\t%s\n", b.PaidBy)
	fmt.Fprintf(w, "Split:\t%s\n", b.SplitType)
	for _, id := range sortedKeys(b.SplitDetails) {
		fmt.Fprintf(w, "  %s\t%s\n", id, Money(b.SplitDetails[id]))
	}
	w.Flush()
}

// BalanceTable prints per-member totals followed by the suggested transfers.
func BalanceTable(b client.GroupBalance) {
	names := make(map[string]string, len(b.Members))

	w := newTable()
	fmt.Fprintln(w, "MEMBER\tSPENT\tOWED\tNET")
	for _, m := range b.Members {
		names[m.ID] = m.Name
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.Name, Money(m.TotalSpent), Money(m.TotalOwed), Money(m.NetBalance))
	}
	fmt.Fprintf(w, "TOTAL\t%s\t\t\n", Money(b.TotalSpent))
	w.Flush()

	if len(b.Settlements) == 0 {
		fmt.Fprintln(Out, "\nAll settled up.")
		return
	}
	fmt.Fprintln(Out, "\nSuggested transfers:")
	for _, t := range b.Settlements {
		fmt.Fprintf(Out, "  %s -> %s: %s\n", nameOr(names, t.From), nameOr(names, t.To), Money(t.Amount))
	}
}

func PersonalBalance(p client.PersonalBalance) {
	w := newTable()
	fmt.Fprintf(w, "Spent:\t%s\n", Money(p.TotalSpent))
	fmt.Fprintf(w, "Owed:\t%s\n", Money(p.TotalOwed))
	fmt.Fprintf(w, "Net:\t%s\n", Money(p.NetBalance))
	for _, c := range p.YouOwe {
		fmt.Fprintf(w, "You owe %s:\t%s\n", c.UserName, Money(c.Amount))
	}
	for _, c := range p.OwesYou {
		fmt.Fprintf(w, "%s owes you:\t%s\n", c.UserName, Money(c.Amount))
	}
	w.Flush()
}

// Money formats an amount with two decimal places.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// RelativeTime formats a timestamp relative to now (e.g. "2h ago", "3d ago").
func RelativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}

func nameOr(names map[string]string, id string) string {
	if n, ok := names[id]; ok && strings.TrimSpace(n) != "" {
		return n
	}
	return id
}

func sortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
