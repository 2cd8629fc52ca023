package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/billsplit/backend/internal/cli/client"
	"github.com/billsplit/backend/internal/cli/output"
)

var membersCmd = &cobra.Command{
	Use:   "members",
	Short: "Manage group members",
}

var membersListCmd = &cobra.Command{
	Use:   "list <group-id>",
	Short: "List members of a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp client.Response[client.MemberList]
		if err := apiClient.Get("/groups/"+args[0]+"/members", &resp); err != nil {
			return fmt.Errorf("listing members: %w", err)
		}

		if flagJSON {
			output.JSON(resp.Data)
			return nil
		}
		output.MemberTable(resp.Data.Members)
		return nil
	},
}

var membersAddCmd = &cobra.Command{
	Use:   "add <group-id> <phone-number>",
	Short: "Add a registered user to a group by phone number",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp client.Response[struct {
			User client.User `json:"user"`
		}]
		err := apiClient.Post("/groups/"+args[0]+"/members", map[string]string{"phone_number": args[1]}, &resp)
		if err != nil {
			return fmt.Errorf("adding member: %w", err)
		}
		fmt.Fprintf(output.Out, "Added %s (%s)\n", resp.Data.User.Name, resp.Data.User.ID)
		return nil
	},
}

var membersRemoveCmd = &cobra.Command{
	Use:   "remove <group-id> <user-id>",
	Short: "Remove a member, or leave the group by passing your own id",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(); err != nil {
			return err
		}

		var resp client.Response[any]
		if err := apiClient.Delete("/groups/"+args[0]+"/members/"+args[1], &resp); err != nil {
			return fmt.Errorf("removing member: %w", err)
		}
		fmt.Fprintln(output.Out, resp.Message)
		return nil
	},
}

func init() {
	membersCmd.AddCommand(membersListCmd, membersAddCmd, membersRemoveCmd)
	rootCmd.AddCommand(membersCmd)
}
