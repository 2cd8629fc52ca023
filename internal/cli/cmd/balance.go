package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/billsplit/backend/internal/cli/client"
	"github.com/billsplit/backend/internal/cli/output"
)

var flagBalanceMine bool

var balanceCmd = &cobra.Command{
	Use:   "balance <group-id>",
	Short: "Show who owes what in a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		if flagBalanceMine {
			var resp client.Response[client.PersonalBalance]
			if err := apiClient.Get("/groups/"+args[0]+"/my-balance", &resp); err != nil {
				return fmt.Errorf("fetching balance: %w", err)
			}
			if flagJSON {
				output.JSON(resp.Data)
				return nil
			}
			output.PersonalBalance(resp.Data)
			return nil
		}

		var resp client.Response[client.GroupBalance]
		if err := apiClient.Get("/groups/"+args[0]+"/balance", &resp); err != nil {
			return fmt.Errorf("fetching balance: %w", err)
		}
		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		output.BalanceTable(resp.Data)
		return nil
	},
}

func init() {
	balanceCmd.Flags().BoolVar(&flagBalanceMine, "mine", false, "Show only your own position")
	rootCmd.AddCommand(balanceCmd)
}
