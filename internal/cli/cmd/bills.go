package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/billsplit/backend/internal/cli/client"
	"github.com/billsplit/backend/internal/cli/output"
)

var (
	flagBillDescription string
	flagAmount          string
	flagDate            string
	flagSplit           string
	flagAmong           []string
	flagShares          []string
)

var billsCmd = &cobra.Command{
	Use:   "bills",
	Short: "Manage bills in a group",
}

var billsListCmd = &cobra.Command{
	Use:   "list <group-id>",
	Short: "List bills in a group, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp client.Response[client.BillList]
		if err := apiClient.Get("/groups/"+args[0]+"/bills", &resp); err != nil {
			return fmt.Errorf("listing bills: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		output.BillTable(resp.Data.Bills)
		return nil
	},
}

var billsAddCmd = &cobra.Command{
	Use:   "add <group-id>",
	Short: "Record a bill you paid",
	Long: `Record a bill paid by you and split among group members.

  splitctl bills add <group> -d Dinner -a 90 --among <id1>,<id2>,<id3>
  splitctl bills add <group> -d Rent -a 1000 --split custom \
      --share <id1>=600 --share <id2>=400`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		req, err := buildBillRequest()
		if err != nil {
			return err
		}

		var resp client.Response[client.Bill]
		if err := apiClient.Post("/groups/"+args[0]+"/bills", req, &resp); err != nil {
			return fmt.Errorf("creating bill: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		fmt.Fprintf(output.Out, "Recorded %q for %s (%s)\n", resp.Data.Description, output.Money(resp.Data.Amount), resp.Data.ID)
		return nil
	},
}

var billsShowCmd = &cobra.Command{
	Use:   "show <group-id> <bill-id>",
	Short: "Show a bill with each participant's share",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp client.Response[client.Bill]
		if err := apiClient.Get("/groups/"+args[0]+"/bills/"+args[1], &resp); err != nil {
			return fmt.Errorf("fetching bill: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		output.BillDetail(resp.Data)
		return nil
	},
}

var billsDeleteCmd = &cobra.Command{
	Use:   "delete <group-id> <bill-id>",
	Short: "Delete a bill you paid",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		if err := apiClient.Delete("/groups/"+args[0]+"/bills/"+args[1], nil); err != nil {
			return fmt.Errorf("deleting bill: %w", err)
		}
		fmt.Fprintf(output.Out, "Deleted bill %s\n", args[1])
		return nil
	},
}

var billsEditCmd = &cobra.Command{
	Use:   "edit <group-id> <bill-id>",
	Short: "Change a bill you paid",
	Long: `Change a bill you paid. Flags left out keep their current value.

  splitctl bills edit <group> <bill> -a 120
  splitctl bills edit <group> <bill> --share <id1>=70 --share <id2>=50`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		req, err := buildBillUpdate(cmd.Flags().Changed)
		if err != nil {
			return err
		}

		var resp client.Response[client.Bill]
		if err := apiClient.Put("/groups/"+args[0]+"/bills/"+args[1], req, &resp); err != nil {
			return fmt.Errorf("updating bill: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		fmt.Fprintf(output.Out, "Updated %q: %s (%s)\n", resp.Data.Description, output.Money(resp.Data.Amount), resp.Data.ID)
		return nil
	},
}

func init() {
	billsAddCmd.Flags().StringVarP(&flagBillDescription, "description", "d", "", "What the bill was for")
	billsAddCmd.Flags().StringVarP(&flagAmount, "amount", "a", "", "Total amount")
	billsAddCmd.Flags().StringVar(&flagDate, "date", "", "Bill date as YYYY-MM-DD (default: today)")
	billsAddCmd.Flags().StringVar(&flagSplit, "split", "equal", "Split type: equal or custom")
	billsAddCmd.Flags().StringSliceVar(&flagAmong, "among", nil, "User ids sharing the bill")
	billsAddCmd.Flags().StringArrayVar(&flagShares, "share", nil, "Custom share as <user-id>=<amount>; repeatable")

	billsEditCmd.Flags().StringVarP(&flagBillDescription, "description", "d", "", "New description")
	billsEditCmd.Flags().StringVarP(&flagAmount, "amount", "a", "", "New total amount")
	billsEditCmd.Flags().StringVar(&flagDate, "date", "", "New bill date as YYYY-MM-DD")
	billsEditCmd.Flags().StringVar(&flagSplit, "split", "", "New split type: equal or custom")
	billsEditCmd.Flags().StringSliceVar(&flagAmong, "among", nil, "Replace the user ids sharing the bill")
	billsEditCmd.Flags().StringArrayVar(&flagShares, "share", nil, "Custom share as <user-id>=<amount>; repeatable")

	billsCmd.AddCommand(billsListCmd, billsAddCmd, billsEditCmd, billsShowCmd, billsDeleteCmd)
	rootCmd.AddCommand(billsCmd)
}

func buildBillRequest() (client.BillRequest, error) {
	var req client.BillRequest

	if strings.TrimSpace(flagBillDescription) == "" {
		return req, fmt.Errorf("--description is required")
	}
	amount, err := decimal.NewFromString(flagAmount)
	if err != nil {
		return req, fmt.Errorf("invalid --amount %q", flagAmount)
	}

	date := flagDate
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	// add and edit share flagSplit, and edit registers it with no default.
	split := flagSplit
	if split == "" {
		split = "equal"
	}

	among, shares, err := shareFlags()
	if err != nil {
		return req, err
	}

	req = client.BillRequest{
		Description: flagBillDescription,
		Amount:      amount,
		BillDate:    date,
		SplitType:   split,
		SplitAmong:  among,
		CustomSplit: shares,
	}
	return req, nil
}

// buildBillUpdate sends only the flags the user set, as reported by changed.
// Shares without --split switch the bill to a custom split.
func buildBillUpdate(changed func(name string) bool) (client.BillUpdate, error) {
	var req client.BillUpdate

	if changed("description") {
		description := strings.TrimSpace(flagBillDescription)
		if description == "" {
			return req, fmt.Errorf("--description cannot be empty")
		}
		req.Description = &description
	}
	if changed("amount") {
		amount, err := decimal.NewFromString(flagAmount)
		if err != nil {
			return req, fmt.Errorf("invalid --amount %q", flagAmount)
		}
		req.Amount = &amount
	}
	if changed("date") {
		date := flagDate
		req.BillDate = &date
	}

	among, shares, err := shareFlags()
	if err != nil {
		return req, err
	}
	req.SplitAmong = among
	req.CustomSplit = shares

	switch {
	case changed("split"):
		split := flagSplit
		req.SplitType = &split
	case len(shares) > 0:
		split := "custom"
		req.SplitType = &split
	}

	if req.Description == nil && req.Amount == nil && req.BillDate == nil &&
		req.SplitType == nil && len(req.SplitAmong) == 0 {
		return req, fmt.Errorf("nothing to change: pass at least one flag")
	}
	return req, nil
}

// shareFlags parses --share and, without --among, takes the participants
// from the share keys.
func shareFlags() ([]string, map[string]decimal.Decimal, error) {
	shares, err := parseShares(flagShares)
	if err != nil {
		return nil, nil, err
	}
	among := flagAmong
	if len(among) == 0 && len(shares) > 0 {
		for id := range shares {
			among = append(among, id)
		}
		sort.Strings(among)
	}
	return among, shares, nil
}

// parseShares turns "id=amount" pairs into a custom split. It returns nil for
// no pairs.
func parseShares(pairs []string) (map[string]decimal.Decimal, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	shares := make(map[string]decimal.Decimal, len(pairs))
	for _, pair := range pairs {
		id, raw, ok := strings.Cut(pair, "=")
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid --share %q: expected <user-id>=<amount>", pair)
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid --share %q: %w", pair, err)
		}
		if _, dup := shares[id]; dup {
			return nil, fmt.Errorf("duplicate --share for %s", id)
		}
		shares[id] = amount
	}
	return shares, nil
}
